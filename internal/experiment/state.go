package experiment

import "fmt"

// TrainingState is a step of a training trial.
type TrainingState int

const (
	StatePresenting TrainingState = iota
	StateAwaitingInput
	StateValidating
	StateRetry
	StateComplete
)

func (s TrainingState) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateValidating:
		return "validating"
	case StateRetry:
		return "retry"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("training_state(%d)", int(s))
}

// TestState is a step of a test trial.
type TestState int

const (
	TestPresenting TestState = iota
	TestAwaitingResponse
	TestComplete
)

func (s TestState) String() string {
	switch s {
	case TestPresenting:
		return "presenting"
	case TestAwaitingResponse:
		return "awaiting_response"
	case TestComplete:
		return "complete"
	}
	return fmt.Sprintf("test_state(%d)", int(s))
}
