package compose

import "testing"

func TestColorShift(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		delta int
		want  Color
	}{
		{
			name:  "lighten",
			color: Color{R: 100, G: 120, B: 140},
			delta: 65,
			want:  Color{R: 165, G: 185, B: 205},
		},
		{
			name:  "darken",
			color: Color{R: 100, G: 120, B: 140},
			delta: -80,
			want:  Color{R: 20, G: 40, B: 60},
		},
		{
			name:  "clamps at 255",
			color: Color{R: 250, G: 200, B: 255},
			delta: 65,
			want:  Color{R: 255, G: 255, B: 255},
		},
		{
			name:  "clamps at 0",
			color: Color{R: 50, G: 90, B: 10},
			delta: -80,
			want:  Color{R: 0, G: 10, B: 0},
		},
		{
			name:  "zero delta",
			color: Color{R: 1, G: 2, B: 3},
			delta: 0,
			want:  Color{R: 1, G: 2, B: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.color.Shift(tt.delta); got != tt.want {
				t.Errorf("Shift(%d) = %v, want %v", tt.delta, got, tt.want)
			}
		})
	}
}

func TestColorLuminance(t *testing.T) {
	// Grays come out at their own value because the weights sum to 1.
	gray := Color{R: 100, G: 100, B: 100}
	if got := gray.Luminance(); got < 99.9 || got > 100.1 {
		t.Errorf("Luminance(gray 100) = %v, want 100", got)
	}

	red := Color{R: 255}
	if got := red.Luminance(); got < 76.2 || got > 76.3 {
		t.Errorf("Luminance(pure red) = %v, want ~76.245", got)
	}

	white := Color{R: 255, G: 255, B: 255}
	if got := white.Luminance(); got < 254.9 || got > 255.1 {
		t.Errorf("Luminance(white) = %v, want 255", got)
	}
}

func TestColorNRGBA(t *testing.T) {
	c := Color{R: 10, G: 20, B: 30}
	got := c.NRGBA(140)
	if got.R != 10 || got.G != 20 || got.B != 30 || got.A != 140 {
		t.Errorf("NRGBA(140) = %v", got)
	}
}

func TestColorHex(t *testing.T) {
	c := Color{R: 255, G: 215, B: 94}
	if got := c.Hex(); got != "#ffd75e" {
		t.Errorf("Hex() = %q, want %q", got, "#ffd75e")
	}
}

func TestMustHex(t *testing.T) {
	c := mustHex("#3b2500")
	if c.R != 59 || c.G != 37 || c.B != 0 || c.A != 255 {
		t.Errorf("mustHex(#3b2500) = %v", c)
	}

	defer func() {
		if recover() == nil {
			t.Error("mustHex should panic on malformed input")
		}
	}()
	mustHex("not-a-color")
}
