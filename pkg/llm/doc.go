// Package llm defines the Anthropic-shaped data model and the capability-set
// interfaces shared by every backend of this module.
//
// The main components include:
//
//   - Backend interface: the call surface of a conversational-AI client, split into
//     one interface per namespace (messages, batches, completions, models, beta)
//   - Message types: requests (MessageParams) and responses (Message, Completion)
//   - Batch types: MessageBatch, RequestCounts, BatchIndividualResponse
//   - Streams: single-pass pull iterators for message deltas and batch results
//   - Futures: the asynchronous calling convention used by async clients
//   - Configuration and error handling shared by all providers
//
// Backend implementations are located in separate packages under /pkg/providers/
// and the interception layer lives in /pkg/mockwrap.
package llm
