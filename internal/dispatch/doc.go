// Package dispatch implements the Host lifecycle: a Dispatcher is a
// registry of typed worker handles. Start launches each worker in its own
// goroutine; Stop waits for them concurrently via
// golang.org/x/sync/errgroup, so one type's worker starting slowly or
// refusing to stop never delays another's bounded shutdown deadline.
package dispatch
