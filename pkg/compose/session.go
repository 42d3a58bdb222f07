package compose

import "sync"

// Session holds the live composition state shared between input
// triggers and asynchronous tone analysis: the current style, the last
// committed tone, and a generation counter for the background image
// reference.
//
// Every background change bumps the generation. Tone analysis records
// the generation it started from and commits with it; a commit whose
// generation is no longer current is silently discarded. That is the
// whole stale-analysis guard: logical cancellation by counter, no
// preemption.
type Session struct {
	mu    sync.Mutex
	gen   uint64
	style TextStyle
	tone  *ImageTone
}

// NewSession creates a session with the default style.
func NewSession() *Session {
	return &Session{style: DefaultStyle()}
}

// NextGeneration records a new background reference and returns its
// generation. Callers pass the value to CommitTone when the analysis
// for that background finishes.
func (s *Session) NextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.tone = nil
	return s.gen
}

// Generation returns the current background generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// CommitTone applies an analysis result computed for generation gen.
// It reports whether the result was applied; a stale generation leaves
// the session untouched.
func (s *Session) CommitTone(gen uint64, tone ImageTone, derived DerivedStyle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	t := tone
	s.tone = &t
	ApplyDerived(&s.style, derived)
	return true
}

// Tone returns the last committed tone, if any.
func (s *Session) Tone() (ImageTone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tone == nil {
		return ImageTone{}, false
	}
	return *s.tone, true
}

// Style returns a copy of the current style.
func (s *Session) Style() TextStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// UpdateStyle applies fn to the style under the session lock.
func (s *Session) UpdateStyle(fn func(*TextStyle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.style)
}
