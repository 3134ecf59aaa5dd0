package config

import "testing"

func TestLoadBubbleStyles_Embedded(t *testing.T) {
	styles, err := LoadBubbleStyles("")
	if err != nil {
		t.Fatal("Failed to load embedded bubble styles:", err)
	}

	for _, name := range []string{"modern_bubbles", "classic_comic", "dark_gold"} {
		style, err := styles.Get(name)
		if err != nil {
			t.Fatalf("style %s missing: %v", name, err)
		}
		if style.Name != name || style.FontSize <= 0 || style.MaxWidth <= 0 {
			t.Errorf("style %s not populated: %+v", name, style)
		}
	}

	def, err := styles.Get("")
	if err != nil || def.Name != "modern_bubbles" {
		t.Errorf("default style = %+v, %v", def, err)
	}

	gold, _ := styles.Get("dark_gold")
	if gold.FontColor != [4]uint8{0xff, 0xd7, 0x00, 0xff} || gold.FillColor[3] != 0xc8 {
		t.Errorf("dark_gold colors not parsed: %+v", gold)
	}
}

func TestParseBubbleStyles_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown default": "default: nope\nstyles:\n  a:\n    font_size: 10\n    font_color: \"#000000\"\n    fill_color: \"#ffffff\"\n    border_color: \"#000000\"\n",
		"bad color":       "default: a\nstyles:\n  a:\n    font_size: 10\n    font_color: \"#zz0000\"\n    fill_color: \"#ffffff\"\n    border_color: \"#000000\"\n",
		"no styles":       "default: a\n",
		"bad font size":   "default: a\nstyles:\n  a:\n    font_size: 0\n    font_color: \"#000000\"\n    fill_color: \"#ffffff\"\n    border_color: \"#000000\"\n",
	}

	for name, doc := range cases {
		if _, err := ParseBubbleStyles([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	styles, err := ParseBubbleStyles([]byte("default: a\nstyles:\n  a:\n    font_size: 10\n    font_color: \"#000000\"\n    fill_color: \"#ffffff\"\n    border_color: \"#000000\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := styles.Get("missing"); err == nil {
		t.Error("expected error for unknown style")
	}
}
