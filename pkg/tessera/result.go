package tessera

import (
	"image"
	"slices"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
)

// Block is a recognized element with its bounding box in source pixels.
type Block struct {
	Level      Level
	Text       string
	BBox       image.Rectangle
	Confidence float64 // 0-100
}

// Result is the outcome of one recognition pass.
type Result struct {
	Text   string      // text exactly as the engine produced it
	Size   image.Point // source image size
	Page   *hocr.Page  // parsed hOCR, set by the PDF and hOCR paths
	blocks map[Level][]Block
}

// Blocks returns the blocks at level in reading order, or nil when the level
// was not collected.
func (r *Result) Blocks(level Level) []Block {
	if r == nil {
		return nil
	}
	return slices.Clone(r.blocks[level])
}

// Levels lists the levels collected in this result, coarsest first.
func (r *Result) Levels() []Level {
	if r == nil {
		return nil
	}
	var out []Level
	for _, l := range engine.AllLevels {
		if _, ok := r.blocks[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

func blocksFrom(boxes []engine.Box) []Block {
	out := make([]Block, len(boxes))
	for i, b := range boxes {
		out[i] = Block{Level: b.Level, Text: b.Text, BBox: b.BBox, Confidence: b.Confidence}
	}
	return out
}
