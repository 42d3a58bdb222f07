package compose

import "testing"

func TestSessionCommitTone(t *testing.T) {
	s := NewSession()
	gen := s.NextGeneration()

	tone := ImageTone{Average: Color{R: 40, G: 40, B: 40}, Dark: true}
	derived := DerivedStyle{Fill: Color{R: 105, G: 105, B: 105}, SizePx: 55, LineHeight: 1.2, PaddingY: 80, Family: "Prompt"}

	if !s.CommitTone(gen, tone, derived) {
		t.Fatal("current-generation commit should apply")
	}

	got, ok := s.Tone()
	if !ok {
		t.Fatal("Tone() should report a committed tone")
	}
	if got != tone {
		t.Errorf("Tone() = %+v, want %+v", got, tone)
	}
	if s.Style().Fill != derived.Fill {
		t.Errorf("style fill = %v, want %v", s.Style().Fill, derived.Fill)
	}
}

func TestSessionDiscardsStaleTone(t *testing.T) {
	s := NewSession()
	old := s.NextGeneration()

	// The background changes again before the first analysis lands.
	s.NextGeneration()

	before := s.Style()
	if s.CommitTone(old, ImageTone{Dark: true}, DerivedStyle{Fill: Color{R: 9}}) {
		t.Error("stale commit should be discarded")
	}
	if _, ok := s.Tone(); ok {
		t.Error("stale commit must not record a tone")
	}
	if s.Style() != before {
		t.Error("stale commit must leave the style untouched")
	}
}

func TestSessionNewBackgroundClearsTone(t *testing.T) {
	s := NewSession()
	gen := s.NextGeneration()
	s.CommitTone(gen, ImageTone{Dark: true}, DerivedStyle{})

	s.NextGeneration()
	if _, ok := s.Tone(); ok {
		t.Error("a new background invalidates the previous tone")
	}
}

func TestSessionUpdateStyle(t *testing.T) {
	s := NewSession()
	s.UpdateStyle(func(st *TextStyle) {
		st.Weight = 500
		st.Family = "Itim"
		st.FamilyPinned = true
	})

	st := s.Style()
	if st.Weight != 500 || st.Family != "Itim" || !st.FamilyPinned {
		t.Errorf("UpdateStyle not applied: %+v", st)
	}

	// A later adaptive commit keeps the pinned choices.
	gen := s.NextGeneration()
	s.CommitTone(gen, ImageTone{}, DerivedStyle{Family: "Kanit", SizePx: 52, LineHeight: 1.2, PaddingY: 80})
	st = s.Style()
	if st.Family != "Itim" {
		t.Errorf("Family = %q, want pinned Itim", st.Family)
	}
	if st.Weight != 500 {
		t.Errorf("Weight = %d, want 500", st.Weight)
	}
}

func TestSessionGenerations(t *testing.T) {
	s := NewSession()
	if s.Generation() != 0 {
		t.Errorf("fresh session generation = %d, want 0", s.Generation())
	}
	g1 := s.NextGeneration()
	g2 := s.NextGeneration()
	if g2 <= g1 {
		t.Errorf("generations should increase: %d then %d", g1, g2)
	}
	if s.Generation() != g2 {
		t.Errorf("Generation() = %d, want %d", s.Generation(), g2)
	}
}
