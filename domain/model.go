package domain

import (
	"fmt"
	"image"
	"time"
)

type Gender string

const (
	MaleGender   Gender = "male"
	FemaleGender Gender = "female"
)

type AnchorSide string

const (
	LeftAnchor  AnchorSide = "left"
	RightAnchor AnchorSide = "right"
)

// TimeRange is a [Start, End) interval in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (t TimeRange) Duration() float64 {
	return t.End - t.Start
}

func (t TimeRange) Validate() error {
	if t.Start < 0 {
		return fmt.Errorf("%w: negative start %.3f", ErrInvalidTimeRange, t.Start)
	}
	if t.End <= t.Start {
		return fmt.Errorf("%w: end %.3f is not after start %.3f", ErrInvalidTimeRange, t.End, t.Start)
	}
	return nil
}

type Character struct {
	Name       string `json:"name"`
	Appearance string `json:"appearance"`
	Gender     Gender `json:"gender"`
}

type Background struct {
	Description string    `json:"description"`
	ImagePath   string    `json:"-"`
	Range       TimeRange `json:"range"`
}

type Dialogue struct {
	Character string    `json:"character"`
	Line      string    `json:"line"`
	Requested TimeRange `json:"requested"`
	Achieved  TimeRange `json:"achieved"`
	AudioPath string    `json:"-"`
}

type Scene struct {
	Background Background  `json:"background"`
	Characters []Character `json:"characters"`
	Dialogues  []Dialogue  `json:"dialogues"`
}

func (s *Scene) CharacterIndex(name string) int {
	for i, c := range s.Characters {
		if c.Name == name {
			return i
		}
	}
	return -1
}

type BubbleStyle struct {
	Name         string
	FontSize     float64
	FontColor    [4]uint8
	FillColor    [4]uint8
	BorderColor  [4]uint8
	BorderWidth  int
	Padding      int
	CornerRadius int
	LineSpacing  int
	TailSize     int
	MaxWidth     int
}

type Bubble struct {
	Image  *image.RGBA
	Anchor AnchorSide
	Range  TimeRange
	Width  int
	Height int
	Lines  []string
}

type PipelineRun struct {
	ID         string      `json:"id"`
	State      Stage       `json:"state"`
	Prompt     string      `json:"prompt,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Err        *StageError `json:"error,omitempty"`
	OutputPath string      `json:"-"`
	Degraded   bool        `json:"degraded"`
}

type EventKind string

const (
	StatusEventKind EventKind = "status"
	DoneEventKind   EventKind = "done"
	ErrorEventKind  EventKind = "error"
)

type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Sequence  int       `json:"sequence"`
	Kind      EventKind `json:"kind"`
	Status    string    `json:"status"`
	Stage     Stage     `json:"stage"`
	VideoID   string    `json:"video_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	Degraded  bool      `json:"degraded,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

func (e ProgressEvent) IsTerminal() bool {
	return e.Kind == DoneEventKind || e.Kind == ErrorEventKind
}

type Overlay struct {
	Path   string
	X      int
	Y      int
	Window TimeRange
	Fade   float64
}

type Sprite struct {
	Path   string
	Anchor AnchorSide
	Height int
	Margin int
}

type AudioClip struct {
	Path     string
	Start    float64
	Duration float64
}

// Timeline is everything an encoder needs to produce one composite video.
type Timeline struct {
	Width      int
	Height     int
	FPS        int
	Duration   float64
	Background string
	Sprites    []Sprite
	Overlays   []Overlay
	Clips      []AudioClip
	Sequential bool
	OutputPath string
}
