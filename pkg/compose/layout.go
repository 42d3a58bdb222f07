package compose

import "strings"

// Measure reports the rendered width in pixels of s at the given font
// size. It is a capability so layout is testable without real fonts.
type Measure func(s string, sizePx float64) float64

// FitOptions configure a layout pass.
type FitOptions struct {
	MaxWidth   float64 // pixel budget per line
	SizePx     float64 // starting font size
	LineHeight float64 // ratio of font size
}

// Layout is the result of one fit pass. It is recomputed on every
// render and never cached, since any style input may change between
// calls.
type Layout struct {
	Lines       []string
	FontSize    float64
	LineHeight  float64 // in pixels
	TotalHeight float64
	// Overflow reports that even at the minimum font size some line is
	// wider than MaxWidth. Rendering proceeds anyway; callers may warn.
	Overflow bool
}

// Wrap breaks text into lines no wider than maxWidth.
//
// Text is split into paragraphs on newlines; empty source lines are
// preserved as empty output lines. A paragraph containing a space
// wraps on word boundaries. A paragraph without any space wraps glyph
// by glyph, which handles scripts written without inter-word spacing.
// A single token wider than maxWidth stays whole on its own line; there
// is no mid-token breaking.
func Wrap(text string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var tokens []string
		sep := ""
		if strings.Contains(para, " ") {
			tokens = strings.Fields(para)
			sep = " "
		} else {
			for _, r := range para {
				tokens = append(tokens, string(r))
			}
		}
		if len(tokens) == 0 {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapTokens(tokens, sep, maxWidth, width)...)
	}
	return lines
}

// wrapTokens greedily fills lines: the current line is committed when
// appending the next token would overflow and the line is non-empty.
func wrapTokens(tokens []string, sep string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	cur := ""
	for _, tok := range tokens {
		cand := tok
		if cur != "" {
			cand = cur + sep + tok
		}
		if cur != "" && width(cand) > maxWidth {
			lines = append(lines, cur)
			cur = tok
			continue
		}
		cur = cand
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// FitText wraps text at opts.SizePx and shrinks the font size in steps
// of 2 until every line fits opts.MaxWidth or the size reaches
// MinFontSize. The loop is bounded: it runs at most
// (start-MinFontSize)/2 + 1 passes. At the floor, overflow is accepted
// and reported rather than prevented.
func FitText(text string, opts FitOptions, measure Measure) Layout {
	size := opts.SizePx
	if size < MinFontSize {
		size = MinFontSize
	}

	for {
		width := func(s string) float64 { return measure(s, size) }
		lines := Wrap(text, opts.MaxWidth, width)

		widest := 0.0
		for _, ln := range lines {
			if w := width(ln); w > widest {
				widest = w
			}
		}

		if widest <= opts.MaxWidth || size <= MinFontSize {
			lh := size * opts.LineHeight
			return Layout{
				Lines:       lines,
				FontSize:    size,
				LineHeight:  lh,
				TotalHeight: lh * float64(len(lines)),
				Overflow:    widest > opts.MaxWidth,
			}
		}

		size -= 2
		if size < MinFontSize {
			size = MinFontSize
		}
	}
}
