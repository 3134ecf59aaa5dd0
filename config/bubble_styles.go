package config

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Shogun05/VoiceFrame/domain"
	"gopkg.in/yaml.v3"
)

//go:embed bubble_styles.yaml
var defaultBubbleStyles []byte

type bubbleStyleEntry struct {
	FontSize     float64 `yaml:"font_size"`
	FontColor    string  `yaml:"font_color"`
	FillColor    string  `yaml:"fill_color"`
	BorderColor  string  `yaml:"border_color"`
	BorderWidth  int     `yaml:"border_width"`
	Padding      int     `yaml:"padding"`
	CornerRadius int     `yaml:"corner_radius"`
	LineSpacing  int     `yaml:"line_spacing"`
	TailSize     int     `yaml:"tail_size"`
	MaxWidth     int     `yaml:"max_width"`
}

type bubbleStylesFile struct {
	Default string                      `yaml:"default"`
	Styles  map[string]bubbleStyleEntry `yaml:"styles"`
}

type BubbleStyles struct {
	Default string
	styles  map[string]domain.BubbleStyle
}

// LoadBubbleStyles reads style presets from path, or from the embedded presets when path is empty.
func LoadBubbleStyles(path string) (*BubbleStyles, error) {
	data := defaultBubbleStyles
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read bubble styles: %w", err)
		}
		data = raw
	}
	return ParseBubbleStyles(data)
}

func ParseBubbleStyles(data []byte) (*BubbleStyles, error) {
	var file bubbleStylesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bubble styles: %w", err)
	}
	if len(file.Styles) == 0 {
		return nil, fmt.Errorf("bubble styles file defines no styles")
	}

	styles := make(map[string]domain.BubbleStyle, len(file.Styles))
	for name, entry := range file.Styles {
		style, err := entry.toDomain(name)
		if err != nil {
			return nil, err
		}
		styles[name] = style
	}

	if _, ok := styles[file.Default]; !ok {
		return nil, fmt.Errorf("default bubble style %q is not defined", file.Default)
	}

	return &BubbleStyles{Default: file.Default, styles: styles}, nil
}

// Get returns the named style, falling back to the default style for an empty name.
func (b *BubbleStyles) Get(name string) (domain.BubbleStyle, error) {
	if name == "" {
		name = b.Default
	}
	style, ok := b.styles[name]
	if !ok {
		return domain.BubbleStyle{}, fmt.Errorf("unknown bubble style %q", name)
	}
	return style, nil
}

func (e bubbleStyleEntry) toDomain(name string) (domain.BubbleStyle, error) {
	if e.FontSize <= 0 {
		return domain.BubbleStyle{}, fmt.Errorf("bubble style %s: font_size must be positive", name)
	}
	if e.Padding < 0 || e.BorderWidth < 0 || e.CornerRadius < 0 || e.TailSize < 0 {
		return domain.BubbleStyle{}, fmt.Errorf("bubble style %s: sizes must not be negative", name)
	}

	colors := make([][4]uint8, 0, 3)
	for _, value := range []string{e.FontColor, e.FillColor, e.BorderColor} {
		c, err := parseHexColor(value)
		if err != nil {
			return domain.BubbleStyle{}, fmt.Errorf("bubble style %s: %w", name, err)
		}
		colors = append(colors, c)
	}

	return domain.BubbleStyle{
		Name:         name,
		FontSize:     e.FontSize,
		FontColor:    colors[0],
		FillColor:    colors[1],
		BorderColor:  colors[2],
		BorderWidth:  e.BorderWidth,
		Padding:      e.Padding,
		CornerRadius: e.CornerRadius,
		LineSpacing:  e.LineSpacing,
		TailSize:     e.TailSize,
		MaxWidth:     e.MaxWidth,
	}, nil
}

// parseHexColor accepts #rrggbb or #rrggbbaa.
func parseHexColor(value string) ([4]uint8, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(raw) == 6 {
		raw += "ff"
	}
	if len(raw) != 8 {
		return [4]uint8{}, fmt.Errorf("invalid color %q", value)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("invalid color %q: %w", value, err)
	}
	return [4]uint8{b[0], b[1], b[2], b[3]}, nil
}
