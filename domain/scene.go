package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp accepts HH:MM:SS, MM:SS or SS, each optionally with a fractional seconds part.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: empty timestamp", ErrInvalidTimeRange)
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: malformed timestamp %q", ErrInvalidTimeRange, value)
	}

	var seconds float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: malformed timestamp %q", ErrInvalidTimeRange, value)
		}
		seconds = seconds*60 + n
	}

	return seconds, nil
}

// Validate checks the structural rules every generated scene must satisfy before any media is produced.
func (s *Scene) Validate() error {
	if err := s.Background.Range.Validate(); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
	}
	if len(s.Characters) == 0 {
		return fmt.Errorf("%w: no characters", ErrInvalidScene)
	}

	names := make(map[string]struct{}, len(s.Characters))
	for i, c := range s.Characters {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: character %d has no name", ErrInvalidScene, i)
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("%w: duplicate character %q", ErrInvalidScene, c.Name)
		}
		names[c.Name] = struct{}{}
	}

	lastStart := 0.0
	for i, d := range s.Dialogues {
		if _, ok := names[d.Character]; !ok {
			return fmt.Errorf("%w: dialogue %d references unknown character %q", ErrInvalidScene, i, d.Character)
		}
		if strings.TrimSpace(d.Line) == "" {
			return fmt.Errorf("%w: dialogue %d has no text", ErrInvalidScene, i)
		}
		if err := d.Requested.Validate(); err != nil {
			return fmt.Errorf("%w: dialogue %d: %v", ErrInvalidScene, i, err)
		}
		if d.Requested.Start < lastStart {
			return fmt.Errorf("%w: dialogue %d starts before the previous line", ErrInvalidScene, i)
		}
		lastStart = d.Requested.Start
	}

	return nil
}
