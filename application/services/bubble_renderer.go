package services

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type bubbleRenderer struct {
	font *opentype.Font
}

// NewBubbleRenderer uses the embedded Go Regular font so text metrics do not depend on the host.
func NewBubbleRenderer() (inbound.BubbleRendererPort, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bubble font: %w", err)
	}
	return &bubbleRenderer{font: f}, nil
}

func (b *bubbleRenderer) Render(params inbound.RenderBubbleParams) (*domain.Bubble, error) {
	text := strings.Join(strings.Fields(params.Text), " ")
	if text == "" {
		return nil, domain.ErrEmptyBubbleText
	}

	style := params.Style
	innerWidth := params.MaxWidth - 2*style.Padding
	if innerWidth <= 0 {
		return nil, fmt.Errorf("%w: max width %d leaves no room inside padding %d", domain.ErrBubbleTooNarrow,
			params.MaxWidth, style.Padding)
	}

	face, err := b.newFace(style.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lines, err := wrapText(face, text, innerWidth)
	if err != nil {
		return nil, err
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil() + style.LineSpacing

	textWidth := 0
	lineWidths := make([]int, len(lines))
	for i, line := range lines {
		lineWidths[i] = font.MeasureString(face, line).Ceil()
		textWidth = max(textWidth, lineWidths[i])
	}

	width := textWidth + 2*style.Padding
	bodyHeight := len(lines)*lineHeight - style.LineSpacing + 2*style.Padding
	height := bodyHeight
	if params.AddTail {
		height += style.TailSize
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	shape := bubbleShape{
		width:      float32(width),
		bodyHeight: float32(bodyHeight),
		radius:     float32(min(style.CornerRadius, min(width, bodyHeight)/2)),
		tail:       0,
		anchor:     params.Anchor,
	}
	if params.AddTail {
		shape.tail = float32(style.TailSize)
	}

	bounds := img.Bounds()
	draw.DrawMask(img, bounds, image.NewUniform(toColor(style.BorderColor)), image.Point{},
		shape.coverage(bounds, 0), image.Point{}, draw.Over)
	// Src through the inset mask: covered pixels take the fill colour, the anti-aliased rim blends into the border.
	draw.DrawMask(img, bounds, image.NewUniform(toColor(style.FillColor)), image.Point{},
		shape.coverage(bounds, float32(style.BorderWidth)), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(toColor(style.FontColor)),
		Face: face,
	}
	for i, line := range lines {
		x := style.Padding
		if params.Anchor == domain.RightAnchor {
			x = width - style.Padding - lineWidths[i]
		}
		y := style.Padding + i*lineHeight + ascent
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}

	return &domain.Bubble{
		Image:  img,
		Anchor: params.Anchor,
		Width:  width,
		Height: height,
		Lines:  lines,
	}, nil
}

func (b *bubbleRenderer) newFace(size float64) (font.Face, error) {
	face, err := opentype.NewFace(b.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create bubble font face: %w", err)
	}
	return face, nil
}

// wrapText breaks text greedily so that no line is wider than maxWidth pixels.
// Words that do not fit on a line of their own are split between characters.
func wrapText(face font.Face, text string, maxWidth int) ([]string, error) {
	limit := fixed.I(maxWidth)
	fits := func(s string) bool {
		return font.MeasureString(face, s) <= limit
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		if current != "" && fits(current+" "+word) {
			current += " " + word
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if fits(word) {
			current = word
			continue
		}

		pieces, err := splitWord(word, fits)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}

	return lines, nil
}

func splitWord(word string, fits func(string) bool) ([]string, error) {
	var pieces []string
	piece := ""
	for len(word) > 0 {
		r, size := utf8.DecodeRuneInString(word)
		word = word[size:]
		candidate := piece + string(r)
		if fits(candidate) {
			piece = candidate
			continue
		}
		if piece == "" {
			return nil, fmt.Errorf("%w: %q", domain.ErrBubbleTooNarrow, string(r))
		}
		pieces = append(pieces, piece)
		piece = string(r)
		if !fits(piece) {
			return nil, fmt.Errorf("%w: %q", domain.ErrBubbleTooNarrow, piece)
		}
	}
	return append(pieces, piece), nil
}

type bubbleShape struct {
	width      float32
	bodyHeight float32
	radius     float32
	tail       float32
	anchor     domain.AnchorSide
}

// coverage rasterizes the rounded body and tail shrunk by inset pixels into an alpha mask.
func (s bubbleShape) coverage(bounds image.Rectangle, inset float32) *image.Alpha {
	mask := image.NewAlpha(bounds)
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.DrawOp = draw.Src

	left, top := inset, inset
	right, bottom := s.width-inset, s.bodyHeight-inset
	radius := max(s.radius-inset, 0)
	if right <= left || bottom <= top {
		return mask
	}

	r.MoveTo(left+radius, top)
	r.LineTo(right-radius, top)
	r.QuadTo(right, top, right, top+radius)
	r.LineTo(right, bottom-radius)
	r.QuadTo(right, bottom, right-radius, bottom)
	r.LineTo(left+radius, bottom)
	r.QuadTo(left, bottom, left, bottom-radius)
	r.LineTo(left, top+radius)
	r.QuadTo(left, top, left+radius, top)
	r.ClosePath()

	if s.tail > 0 {
		// The tail hangs below the body on the anchor side, pointing down at the speaker.
		base := min(max(s.radius, s.tail/2), s.width-s.tail-s.radius)
		base = max(base, 0)
		tipY := s.bodyHeight + s.tail - inset*2
		joinY := bottom - 1
		if s.anchor == domain.RightAnchor {
			x := s.width - base
			r.MoveTo(x-s.tail+inset, joinY)
			r.LineTo(x-inset, joinY)
			r.LineTo(x-inset, tipY)
		} else {
			r.MoveTo(base+inset, joinY)
			r.LineTo(base+s.tail-inset, joinY)
			r.LineTo(base+inset, tipY)
		}
		r.ClosePath()
	}

	r.Draw(mask, bounds, image.Opaque, image.Point{})
	return mask
}

func toColor(c [4]uint8) color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}
