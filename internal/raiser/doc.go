// Package raiser routes typed events to the queue registered for their
// type. A Raiser holds no knowledge of any concrete event type itself —
// RegisterChannel/RaiseEvent/RaiseEvents are package-level generic
// functions (Go forbids generic methods) operating against the
// non-generic *Raiser directory.
package raiser
