package services

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/domain"
	"golang.org/x/image/font"
)

func testStyle() domain.BubbleStyle {
	return domain.BubbleStyle{
		Name:         "test",
		FontSize:     20,
		FontColor:    [4]uint8{0xff, 0xd7, 0x00, 0xff},
		FillColor:    [4]uint8{0, 0, 0, 200},
		BorderColor:  [4]uint8{218, 165, 32, 255},
		BorderWidth:  2,
		Padding:      20,
		CornerRadius: 12,
		LineSpacing:  8,
		TailSize:     16,
		MaxWidth:     400,
	}
}

func newTestRenderer(t *testing.T) *bubbleRenderer {
	t.Helper()
	renderer, err := NewBubbleRenderer()
	if err != nil {
		t.Fatal("Failed to create bubble renderer:", err)
	}
	return renderer.(*bubbleRenderer)
}

func TestBubbleRenderer_LinesFitInsidePadding(t *testing.T) {
	renderer := newTestRenderer(t)
	style := testStyle()
	face, err := renderer.newFace(style.FontSize)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	texts := []string{
		"Mira: The fire is coming, we have to warn everyone in the valley before nightfall!",
		"Oak: Hmm.",
		"Narrator: Supercalifragilisticexpialidociousandthensomemorelettersthatneverend",
		strings.Repeat("word ", 60),
	}
	for _, maxWidth := range []int{120, 240, 400} {
		for _, text := range texts {
			bubble, err := renderer.Render(inbound.RenderBubbleParams{
				Text:     text,
				MaxWidth: maxWidth,
				Style:    style,
				Anchor:   domain.LeftAnchor,
			})
			if err != nil {
				t.Fatalf("Render(%q, %d): %v", text, maxWidth, err)
			}
			limit := maxWidth - 2*style.Padding
			for _, line := range bubble.Lines {
				if w := font.MeasureString(face, line).Ceil(); w > limit {
					t.Errorf("line %q is %dpx wide, limit %d", line, w, limit)
				}
			}
			if bubble.Width > maxWidth {
				t.Errorf("bubble width %d exceeds max width %d", bubble.Width, maxWidth)
			}
			if got := strings.Join(strings.Fields(strings.Join(bubble.Lines, "")), ""); got != strings.Join(strings.Fields(text), "") {
				t.Errorf("wrapping lost characters: %q", got)
			}
		}
	}
}

func TestBubbleRenderer_Deterministic(t *testing.T) {
	renderer := newTestRenderer(t)
	params := inbound.RenderBubbleParams{
		Text:     "Oak: Then we must hurry, little one.",
		MaxWidth: 300,
		Style:    testStyle(),
		Anchor:   domain.RightAnchor,
		AddTail:  true,
	}

	first, err := renderer.Render(params)
	if err != nil {
		t.Fatal(err)
	}
	second, err := renderer.Render(params)
	if err != nil {
		t.Fatal(err)
	}

	if first.Width != second.Width || first.Height != second.Height || !bytes.Equal(first.Image.Pix, second.Image.Pix) {
		t.Fatal("rendering the same input twice produced different images")
	}
}

func TestBubbleRenderer_TailAddsHeight(t *testing.T) {
	renderer := newTestRenderer(t)
	style := testStyle()
	params := inbound.RenderBubbleParams{Text: "Mira: Hello!", MaxWidth: 300, Style: style, Anchor: domain.LeftAnchor}

	plain, err := renderer.Render(params)
	if err != nil {
		t.Fatal(err)
	}
	params.AddTail = true
	tailed, err := renderer.Render(params)
	if err != nil {
		t.Fatal(err)
	}

	if tailed.Height != plain.Height+style.TailSize {
		t.Errorf("tail height = %d, want %d", tailed.Height-plain.Height, style.TailSize)
	}
	if tailed.Width != plain.Width {
		t.Errorf("tail changed width from %d to %d", plain.Width, tailed.Width)
	}
	if tailed.Image.Bounds().Dx() != tailed.Width || tailed.Image.Bounds().Dy() != tailed.Height {
		t.Errorf("image bounds %v do not match %dx%d", tailed.Image.Bounds(), tailed.Width, tailed.Height)
	}

	// The tail sits on the anchor side: bottom row pixels only on the left half.
	bottom := tailed.Height - 2
	leftAlpha, rightAlpha := 0, 0
	for x := 0; x < tailed.Width; x++ {
		a := int(tailed.Image.RGBAAt(x, bottom).A)
		if x < tailed.Width/2 {
			leftAlpha += a
		} else {
			rightAlpha += a
		}
	}
	if leftAlpha == 0 || rightAlpha != 0 {
		t.Errorf("left anchored tail not on the left: left=%d right=%d", leftAlpha, rightAlpha)
	}
}

func TestBubbleRenderer_Errors(t *testing.T) {
	renderer := newTestRenderer(t)

	_, err := renderer.Render(inbound.RenderBubbleParams{Text: "   ", MaxWidth: 300, Style: testStyle()})
	if !errors.Is(err, domain.ErrEmptyBubbleText) {
		t.Errorf("empty text error = %v", err)
	}

	_, err = renderer.Render(inbound.RenderBubbleParams{Text: "Hello", MaxWidth: 45, Style: testStyle()})
	if !errors.Is(err, domain.ErrBubbleTooNarrow) {
		t.Errorf("narrow bubble error = %v", err)
	}

	_, err = renderer.Render(inbound.RenderBubbleParams{Text: "Hello", MaxWidth: 30, Style: testStyle()})
	if !errors.Is(err, domain.ErrBubbleTooNarrow) {
		t.Errorf("bubble narrower than padding error = %v", err)
	}
}

func TestBubbleRenderer_BorderAndFillColours(t *testing.T) {
	renderer := newTestRenderer(t)
	style := testStyle()

	bubble, err := renderer.Render(inbound.RenderBubbleParams{
		Text:     "Mira: Hello there friend",
		MaxWidth: 400,
		Style:    style,
		Anchor:   domain.LeftAnchor,
	})
	if err != nil {
		t.Fatal(err)
	}

	border := color.RGBAModel.Convert(toColor(style.BorderColor)).(color.RGBA)
	fill := color.RGBAModel.Convert(toColor(style.FillColor)).(color.RGBA)
	midX, midY := bubble.Width/2, bubble.Height/2

	ring := []struct{ x, y int }{
		{0, midY}, {1, midY},
		{bubble.Width - 1, midY}, {bubble.Width - 2, midY},
		{midX, 0}, {midX, 1},
		{midX, bubble.Height - 1}, {midX, bubble.Height - 2},
	}
	for _, p := range ring {
		if got := bubble.Image.RGBAAt(p.x, p.y); got != border {
			t.Errorf("border pixel (%d,%d) = %v, want %v", p.x, p.y, got, border)
		}
	}

	interior := []struct{ x, y int }{
		{style.BorderWidth, midY},
		{style.BorderWidth + 3, midY},
		{bubble.Width - style.BorderWidth - 4, midY},
		{midX, style.BorderWidth + 3},
	}
	for _, p := range interior {
		if got := bubble.Image.RGBAAt(p.x, p.y); got != fill {
			t.Errorf("interior pixel (%d,%d) = %v, want %v", p.x, p.y, got, fill)
		}
	}
}

func TestBubbleRenderer_RightAnchoredTail(t *testing.T) {
	renderer := newTestRenderer(t)
	bubble, err := renderer.Render(inbound.RenderBubbleParams{
		Text:     "Oak: Then we must hurry.",
		MaxWidth: 300,
		Style:    testStyle(),
		Anchor:   domain.RightAnchor,
		AddTail:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	bottom := bubble.Height - 2
	leftAlpha, rightAlpha := 0, 0
	for x := 0; x < bubble.Width; x++ {
		a := int(bubble.Image.RGBAAt(x, bottom).A)
		if x < bubble.Width/2 {
			leftAlpha += a
		} else {
			rightAlpha += a
		}
	}
	if rightAlpha == 0 || leftAlpha != 0 {
		t.Errorf("right anchored tail not on the right: left=%d right=%d", leftAlpha, rightAlpha)
	}
}

// inkSpan returns the horizontal extent of text pixels inside the border between rows top and bottom.
func inkSpan(bubble *domain.Bubble, style domain.BubbleStyle, top int, bottom int) (int, int) {
	minX, maxX := bubble.Width, -1
	for y := top; y < bottom; y++ {
		for x := style.BorderWidth; x < bubble.Width-style.BorderWidth; x++ {
			if bubble.Image.RGBAAt(x, y).G > 0 {
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	return minX, maxX
}

func TestBubbleRenderer_TextAlignsToAnchor(t *testing.T) {
	renderer := newTestRenderer(t)
	style := testStyle()
	face, err := renderer.newFace(style.FontSize)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil() + style.LineSpacing

	params := inbound.RenderBubbleParams{
		Text:     "Oak: Then we must hurry, little one, before the smoke reaches us.",
		MaxWidth: 300,
		Style:    style,
	}

	for _, anchor := range []domain.AnchorSide{domain.LeftAnchor, domain.RightAnchor} {
		params.Anchor = anchor
		bubble, err := renderer.Render(params)
		if err != nil {
			t.Fatal(err)
		}
		n := len(bubble.Lines)
		if n < 2 {
			t.Fatalf("expected wrapped text, got %q", bubble.Lines)
		}
		last := bubble.Lines[n-1]
		if font.MeasureString(face, last).Ceil() >= bubble.Width-2*style.Padding-5 {
			t.Fatalf("last line %q is too wide to show alignment", last)
		}

		// Only the last, shorter line: its position depends on the alignment.
		top := style.Padding + (n-1)*lineHeight
		minX, maxX := inkSpan(bubble, style, top, bubble.Height-style.Padding)
		if anchor == domain.LeftAnchor {
			if minX < style.Padding-1 || minX > style.Padding+4 {
				t.Errorf("left anchored ink starts at %d, want about %d", minX, style.Padding)
			}
			continue
		}
		edge := bubble.Width - style.Padding
		if maxX > edge || maxX < edge-5 {
			t.Errorf("right anchored ink ends at %d, want about %d", maxX, edge)
		}
	}
}
