package metrics

// Recorder is the metrics surface Queue[T] and Worker[T] report through.
// eventType is the registered type's name (e.g. "OrderCreated"), used as
// a label so a single Recorder can back every registered channel.
type Recorder interface {
	SetQueueDepth(eventType string, depth int)
	SetQueueBlocked(eventType string, blocked int)
	IncPublished(eventType string, outcome Outcome, n int)
	IncRetryAttempt(eventType string)
}

// Outcome labels a published-event count.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Noop discards every observation. It is the default when no Recorder is
// supplied, and is used throughout the test suite.
type Noop struct{}

func (Noop) SetQueueDepth(string, int)         {}
func (Noop) SetQueueBlocked(string, int)       {}
func (Noop) IncPublished(string, Outcome, int) {}
func (Noop) IncRetryAttempt(string)            {}
