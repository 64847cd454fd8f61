// Package eventqueue implements the bounded, single-type FIFO that sits
// between producers and a Worker.
//
// # Overview
//
// A Queue[T] holds events of exactly one concrete type T. Producers call
// Write (or WriteAll) and block when the queue is full rather than being
// dropped or failed fast — backpressure, not shedding, is the point. A
// single consumer obtains a Reader and drains the queue with
// WaitToRead/TryRead/TryPeek.
//
// # Closing
//
// Close marks the queue closed for writes. Writes after Close fail
// immediately. Reads continue to succeed until the buffered items are
// exhausted, at which point WaitToRead reports end-of-stream (ok=false,
// err=nil) rather than blocking forever.
//
// # Concurrency
//
// Queue[T] supports any number of concurrent writers and exactly one
// reader (the owning Worker). All blocking operations accept a
// context.Context as their cancellation signal and return promptly with
// ctx.Err() once it's done.
package eventqueue
