package pipeline

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"graphion/internal/capture"
)

// State is a session lifecycle state.
type State string

const (
	StateCreated          State = "created"
	StateGeneratingMarkup State = "generating_markup"
	StateCapturing        State = "capturing"
	StateEncoding         State = "encoding"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Session is one request's workspace and progress.
type Session struct {
	ID              string
	Prompt          string
	WorkDir         string
	FrameDir        string
	Width           int
	Height          int
	FPS             int
	DurationSeconds int
	State           State
	StartedAt       time.Time
}

func newSession(cfg Config, prompt string) *Session {
	id := uuid.NewString()
	workDir := filepath.Join(cfg.WorkRoot, id)
	return &Session{
		ID:              id,
		Prompt:          prompt,
		WorkDir:         workDir,
		FrameDir:        filepath.Join(workDir, capture.FrameDirName),
		Width:           cfg.Width,
		Height:          cfg.Height,
		FPS:             cfg.FPS,
		DurationSeconds: cfg.DurationSeconds,
		State:           StateCreated,
		StartedAt:       time.Now(),
	}
}

// ExpectedFrames is fps times duration.
func (s *Session) ExpectedFrames() int {
	return s.FPS * s.DurationSeconds
}

// Transition is delivered to observers on every state change.
type Transition struct {
	SessionID string
	From      State
	To        State
	Err       error
}

// Observer receives state transitions. It runs synchronously on the pipeline
// goroutine and must not block.
type Observer func(Transition)
