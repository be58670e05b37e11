package domain

import (
	"context"
	"time"
)

// Screen is a block of text shown between trials.
type Screen struct {
	Title    string
	Body     string
	Markdown bool
	// Hold keeps the screen visible for a fixed time. When zero the
	// presenter waits for the continue key instead.
	Hold time.Duration
}

// TypingPrompt asks the participant to reproduce a training word.
type TypingPrompt struct {
	Stimulus string
	// Exposure is how long the word stays visible before it is masked.
	// Zero leaves the word on screen while the participant types.
	Exposure   time.Duration
	Block      int
	TrialIndex int
	TrialCount int
	Attempt    int
}

// TypedResponse is a submitted line. Elapsed runs from the moment the
// input field opened.
type TypedResponse struct {
	Text    string
	Elapsed time.Duration
}

// KeyPrompt asks for a single classification keypress.
type KeyPrompt struct {
	Stimulus   string
	Keys       KeyMap
	Timeout    time.Duration
	TrialIndex int
	TrialCount int
}

// KeyResponse is the first key pressed after stimulus onset.
type KeyResponse struct {
	Key      string
	Elapsed  time.Duration
	TimedOut bool
}

// ChoicePrompt asks the participant to pick one option.
type ChoicePrompt struct {
	Label   string
	Options []string
}

// Presenter is the boundary to the display and input devices.
type Presenter interface {
	// Show displays a screen and returns when it is dismissed or its hold expires.
	Show(ctx context.Context, screen Screen) error
	// AwaitTyped shows a training word and collects one typed submission.
	AwaitTyped(ctx context.Context, prompt TypingPrompt) (TypedResponse, error)
	// AwaitKey shows a test word and collects the first keypress.
	AwaitKey(ctx context.Context, prompt KeyPrompt) (KeyResponse, error)
	// AskText collects a free-text answer.
	AskText(ctx context.Context, label string) (string, error)
	// AskChoice collects one of the given options.
	AskChoice(ctx context.Context, prompt ChoicePrompt) (string, error)
}
