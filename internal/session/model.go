package session

import "time"

// Step is the wizard position of a session. Absence of a session from the
// repository means the user is idle; there is no explicit idle step.
type Step string

const (
	StepAwaitingText     Step = "awaiting_text"
	StepAwaitingColor    Step = "awaiting_color"
	StepAwaitingPosition Step = "awaiting_position"
	StepAwaitingFont     Step = "awaiting_font"
	StepProcessing       Step = "processing"
)

// SourceRef identifies the originally submitted video at the transport,
// carrying enough information to download it later. It never holds the bytes.
type SourceRef struct {
	FileID    string
	MessageID int
	Size      int64
}

type Session struct {
	UserID       int64
	ChatID       int64
	Step         Step
	Source       SourceRef
	Text         string
	Color        string
	Position     string
	Font         string
	CreatedAt    time.Time
	LastActivity time.Time
}

// WatermarkSpec is the finalized set of user choices handed to the render
// engine. It is assembled exactly once, when the font selection arrives.
type WatermarkSpec struct {
	Text     string
	Color    string
	Position string
	Font     string
}

// Spec assembles the immutable watermark spec from the accumulated choices.
func (s *Session) Spec() WatermarkSpec {
	return WatermarkSpec{
		Text:     s.Text,
		Color:    s.Color,
		Position: s.Position,
		Font:     s.Font,
	}
}

func (s *Session) Touch() {
	s.LastActivity = time.Now()
}
