// Package mock provides a scripted llm.Backend for testing code built on top of
// a conversational-AI client.
//
// Every operation is recorded in a call log before it is answered, so tests can
// assert both what was sent and whether the backend was reached at all.
//
// Features:
// - Pre-configured message, completion and stream responses
// - Pre-configured errors, consumed by the next call of any operation
// - In-memory message batches that can be retrieved, listed and canceled
// - Latency and failure rate simulation
// - Call logging and assertions
package mock
