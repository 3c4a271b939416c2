// Package synthetic builds structurally valid placeholder responses for every
// operation of the client surface.
//
// The Generator keeps a dispatch table keyed by operation path
// ("messages.create", "beta.messages.batches.list", ...). Paths that are not in the
// table fall back to their verb ("create", "stream", "retrieve", "list", "cancel",
// "results"), and anything else yields nil so that unanticipated operations never
// block a test.
//
// Responses are filled with lorem ipsum text and identifiers of the form
// "{prefix}_{24 lowercase alphanumeric characters}". Both come from a seedable
// source, so a test can build two generators with the same seed and compare
// identifiers exactly.
package synthetic
