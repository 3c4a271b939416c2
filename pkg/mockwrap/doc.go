// Package mockwrap intercepts the calls made through a conversational-AI client and
// answers them with synthetic responses whenever the client's credential marks a
// test context.
//
// A credential starting with "TEST_" switches a wrapped client into test mode. The
// verdict is taken once, when the wrapper is built, and never re-evaluated: a
// credential changed on the backend afterwards does not flip an existing wrapper.
//
// Two interception strategies are provided:
//
//   - Explicit: New and NewAsync wrap an llm.Backend and expose the same nested
//     namespaces (Messages, Messages.Batches, Completions, Models, Beta.Messages,
//     Beta.Messages.Batches) with typed methods.
//   - Reflective: Reflect walks any client value (for example *anthropic.Client),
//     discovers its exported methods, fields and nested resources, and lets callers
//     invoke operations by dotted path.
//
// In test mode no backend operation is ever invoked. Otherwise arguments, results
// and errors pass through unchanged.
//
// Usage:
//
//	client, err := mockwrap.New(backend)
//	msg, err := client.Messages.Create(ctx, llm.MessageParams{
//	    Model:     "claude-3-opus-20240229",
//	    MaxTokens: 256,
//	    Messages:  []llm.MessageParam{llm.NewTextMessage(llm.RoleUser, "Hello")},
//	})
package mockwrap
