// Operation descriptors
package llm

import "strings"

// Operation is the dotted path of a client operation, e.g. "beta.messages.batches.list"
type Operation string

const (
	OpMessagesCreate      Operation = "messages.create"
	OpMessagesStream      Operation = "messages.stream"
	OpBatchesCreate       Operation = "messages.batches.create"
	OpBatchesRetrieve     Operation = "messages.batches.retrieve"
	OpBatchesList         Operation = "messages.batches.list"
	OpBatchesCancel       Operation = "messages.batches.cancel"
	OpBatchesResults      Operation = "messages.batches.results"
	OpCompletionsCreate   Operation = "completions.create"
	OpModelsList          Operation = "models.list"
	OpBetaMessagesCreate  Operation = "beta.messages.create"
	OpBetaMessagesStream  Operation = "beta.messages.stream"
	OpBetaBatchesCreate   Operation = "beta.messages.batches.create"
	OpBetaBatchesRetrieve Operation = "beta.messages.batches.retrieve"
	OpBetaBatchesList     Operation = "beta.messages.batches.list"
	OpBetaBatchesCancel   Operation = "beta.messages.batches.cancel"
	OpBetaBatchesResults  Operation = "beta.messages.batches.results"
)

// Verb returns the last segment of the path, e.g. "list"
func (o Operation) Verb() string {
	s := string(o)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Namespace returns the path without its verb, e.g. "beta.messages.batches"
func (o Operation) Namespace() string {
	s := string(o)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

// Join appends a segment to a namespace path
func Join(namespace, name string) Operation {
	if namespace == "" {
		return Operation(name)
	}
	return Operation(namespace + "." + name)
}

func (o Operation) String() string {
	return string(o)
}
