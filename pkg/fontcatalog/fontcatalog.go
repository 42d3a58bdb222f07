// Package fontcatalog resolves font families to concrete faces.
//
// Display families are looked up among installed system fonts by file
// name, walking the family itself, then a shared Thai-capable fallback
// stack, then an embedded last-resort face. A missing family therefore
// degrades gracefully instead of failing the composition; the embedded
// face guarantees that text always renders, even on a bare system.
//
// Parsed fonts are cached, so faces at different sizes (the layout fit
// loop requests many) share one parse and one filesystem walk.
package fontcatalog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackFamilies are tried, in order, after the requested family.
var FallbackFamilies = []string{
	"Noto Sans Thai",
	"Noto Sans",
	"Loma",
	"Garuda",
	"DejaVu Sans",
}

// Catalog caches resolved and parsed fonts. It is safe for concurrent
// use.
type Catalog struct {
	mu       sync.Mutex
	byPath   map[string]*truetype.Font // parsed files; "" is the embedded face
	resolved map[string]*truetype.Font // family|weight -> font
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byPath:   make(map[string]*truetype.Font),
		resolved: make(map[string]*truetype.Font),
	}
}

// Face returns a font face for the family at the given pixel size.
// DPI 72 makes point size equal pixel size. The error path is only
// reachable if the embedded face fails to parse.
func (c *Catalog) Face(family string, weight int, sizePx float64) (font.Face, error) {
	f, err := c.resolve(family, weight)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func (c *Catalog) resolve(family string, weight int) (*truetype.Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fmt.Sprintf("%s|%d", family, weight)
	if f, ok := c.resolved[key]; ok {
		return f, nil
	}

	stack := append([]string{family}, FallbackFamilies...)
	for _, fam := range stack {
		for _, name := range fileCandidates(fam, weight) {
			path, err := findfont.Find(name)
			if err != nil {
				continue
			}
			f, err := c.parseFile(path)
			if err != nil {
				continue
			}
			c.resolved[key] = f
			return f, nil
		}
	}

	f, err := c.embedded()
	if err != nil {
		return nil, err
	}
	c.resolved[key] = f
	return f, nil
}

func (c *Catalog) parseFile(path string) (*truetype.Font, error) {
	if f, ok := c.byPath[path]; ok {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.byPath[path] = f
	return f, nil
}

func (c *Catalog) embedded() (*truetype.Font, error) {
	if f, ok := c.byPath[""]; ok {
		return f, nil
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	c.byPath[""] = f
	return f, nil
}

// fileCandidates lists font file names to probe for a family at a
// weight, most specific first. Lookups are case-insensitive substring
// matches on the file name, so "Kanit-Bold.ttf" also finds
// KANIT-BOLD.TTF.
func fileCandidates(family string, weight int) []string {
	bases := []string{family}
	if compact := strings.ReplaceAll(family, " ", ""); compact != family {
		bases = append(bases, compact)
	}

	var suffixes []string
	switch {
	case weight >= 700:
		suffixes = []string{"-Bold", "-SemiBold"}
	case weight >= 500:
		suffixes = []string{"-Medium", "-SemiBold"}
	}
	suffixes = append(suffixes, "-Regular", "")

	var names []string
	for _, b := range bases {
		for _, s := range suffixes {
			names = append(names, b+s+".ttf")
		}
	}
	return names
}
