package tessera

import (
	"maps"
	"slices"

	"github.com/gardar/tessera/pkg/engine"
)

// Level is the granularity of recognized blocks.
type Level = engine.Level

const (
	LevelBlock     = engine.LevelBlock
	LevelParagraph = engine.LevelParagraph
	LevelLine      = engine.LevelLine
	LevelWord      = engine.LevelWord
	LevelSymbol    = engine.LevelSymbol
)

// ParseLevel parses a level name such as "word" or "line".
func ParseLevel(s string) (Level, error) { return engine.ParseLevel(s) }

// Mode selects the OCR engine at session construction.
type Mode = engine.Mode

const (
	ModeDefault       = engine.ModeDefault
	ModeTesseractOnly = engine.ModeTesseractOnly
	ModeLSTMOnly      = engine.ModeLSTMOnly
	ModeCombined      = engine.ModeCombined
)

// PageSegMode is the layout analysis mode.
type PageSegMode = engine.PageSegMode

// Config holds the recognition settings applied before every pass.
type Config struct {
	Whitelist               string            `yaml:"whitelist"`                 // only these characters are recognized
	Blacklist               string            `yaml:"blacklist"`                 // these characters are never recognized
	PageSegMode             PageSegMode       `yaml:"page_seg_mode"`             // zero value is automatic segmentation
	MinCharHeight           int               `yaml:"min_char_height"`           // minimum x-height in pixels, 0 for 10
	PreserveInterwordSpaces bool              `yaml:"preserve_interword_spaces"` // keep runs of spaces
	Levels                  []Level           `yaml:"levels"`                    // block granularities collected per pass
	Variables               map[string]string `yaml:"variables"`                 // raw Tesseract variables
}

// DefaultConfig collects blocks at every level with engine defaults otherwise.
func DefaultConfig() Config {
	return Config{Levels: slices.Clone(engine.AllLevels)}
}

func (c Config) clone() Config {
	c.Levels = slices.Clone(c.Levels)
	c.Variables = maps.Clone(c.Variables)
	return c
}

func (c Config) params() engine.Params {
	return engine.Params{
		Whitelist:               c.Whitelist,
		Blacklist:               c.Blacklist,
		PageSegMode:             c.PageSegMode,
		MinCharHeight:           c.MinCharHeight,
		PreserveInterwordSpaces: c.PreserveInterwordSpaces,
		Extra:                   maps.Clone(c.Variables),
	}
}

// levels returns the requested levels once each, coarsest first.
func (c Config) levels() []Level {
	var out []Level
	for _, l := range engine.AllLevels {
		if slices.Contains(c.Levels, l) {
			out = append(out, l)
		}
	}
	return out
}
