// Package sink defines the contract a Worker publishes batches through,
// plus two implementations: a concrete binding to AWS SNS's PublishBatch
// API (the production default) and an in-memory Client for tests and for
// the CLI's dry-run mode.
//
// # Contract
//
// Client.PublishBatch takes a topic and 1..10 entries (id, message body)
// and returns two disjoint lists: entries that succeeded (with a
// sink-assigned message id) and entries that failed (with an error code
// and message). A whole-call error means the entire batch was rejected
// before the sink could evaluate any entry.
//
// AWS SNS's native PublishBatch operation already has this exact shape —
// PublishBatchRequestEntry{Id, Message} in, PublishBatchResultEntry
// {Id, MessageId} and BatchResultErrorEntry{Id, Code, Message} out — so
// the default implementation is a thin adapter, not a reimplementation.
package sink
