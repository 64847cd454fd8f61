// Package worker drains a Queue[T], coalesces events into batches of up
// to 10, serializes each to JSON, publishes the batch to a sink.Client
// under a resiliency.Policy, and logs partial failures. A Worker[T] is
// the long-lived consumer side of the pipeline; Queue[T] is its only
// synchronization point with producers.
package worker
