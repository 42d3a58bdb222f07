package fontcatalog

import (
	"testing"

	"golang.org/x/image/font"
)

func TestFaceFallsBackToEmbedded(t *testing.T) {
	c := New()

	// A family that cannot exist on any system still yields a usable
	// face via the embedded fallback.
	face, err := c.Face("No Such Family 9c2f", 700, 56)
	if err != nil {
		t.Fatalf("Face error: %v", err)
	}
	if face == nil {
		t.Fatal("Face returned nil face")
	}

	if adv := font.MeasureString(face, "postframe"); adv <= 0 {
		t.Errorf("MeasureString = %v, want positive advance", adv)
	}
}

func TestFaceSizesDiffer(t *testing.T) {
	c := New()

	small, err := c.Face("No Such Family 9c2f", 400, 20)
	if err != nil {
		t.Fatalf("Face error: %v", err)
	}
	large, err := c.Face("No Such Family 9c2f", 400, 80)
	if err != nil {
		t.Fatalf("Face error: %v", err)
	}

	ws := font.MeasureString(small, "wide text sample")
	wl := font.MeasureString(large, "wide text sample")
	if ws >= wl {
		t.Errorf("larger size should measure wider: %v vs %v", ws, wl)
	}
}

func TestResolveCaches(t *testing.T) {
	c := New()

	f1, err := c.resolve("No Such Family 9c2f", 400)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	f2, err := c.resolve("No Such Family 9c2f", 400)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if f1 != f2 {
		t.Error("repeated resolution should return the cached font")
	}
}

func TestFileCandidates(t *testing.T) {
	tests := []struct {
		name   string
		family string
		weight int
		want   []string
	}{
		{
			name:   "bold",
			family: "Kanit",
			weight: 700,
			want:   []string{"Kanit-Bold.ttf", "Kanit-SemiBold.ttf", "Kanit-Regular.ttf", "Kanit.ttf"},
		},
		{
			name:   "medium",
			family: "Mitr",
			weight: 500,
			want:   []string{"Mitr-Medium.ttf", "Mitr-SemiBold.ttf", "Mitr-Regular.ttf", "Mitr.ttf"},
		},
		{
			name:   "regular",
			family: "Prompt",
			weight: 400,
			want:   []string{"Prompt-Regular.ttf", "Prompt.ttf"},
		},
		{
			name:   "spaced family adds compact form",
			family: "Noto Sans Thai",
			weight: 400,
			want: []string{
				"Noto Sans Thai-Regular.ttf", "Noto Sans Thai.ttf",
				"NotoSansThai-Regular.ttf", "NotoSansThai.ttf",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileCandidates(tt.family, tt.weight)
			if len(got) != len(tt.want) {
				t.Fatalf("fileCandidates = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
