package main

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/gardar/tessera/pkg/hocr"
	"github.com/gardar/tessera/pkg/tessera"
)

var (
	textOut   outputFlags
	blocksOut outputFlags
	hocrOut   outputFlags

	blocksLevel string
)

var textCmd = &cobra.Command{
	Use:   "text <image|pdf>...",
	Short: "Print the recognized text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := recognizeFiles(cmd.Context(), &textOut, args)
		if err != nil {
			return err
		}
		texts := make([]string, len(results))
		for i, res := range results {
			texts[i] = res.Text
		}
		return textOut.write(cmd.OutOrStdout(), []byte(strings.Join(texts, "\f")))
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks <image|pdf>...",
	Short: "Print recognized blocks with bounding boxes as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := tessera.ParseLevel(blocksLevel)
		if err != nil {
			return err
		}
		results, err := recognizeFiles(cmd.Context(), &blocksOut, args)
		if err != nil {
			return err
		}
		pages := make([]pageBlocks, len(results))
		for i, res := range results {
			pages[i] = toPageBlocks(i+1, level, res)
		}
		out, err := json.MarshalIndent(pages, "", "  ")
		if err != nil {
			return err
		}
		return blocksOut.write(cmd.OutOrStdout(), append(out, '\n'))
	},
}

var hocrCmd = &cobra.Command{
	Use:   "hocr <image|pdf>...",
	Short: "Print a multi-page hOCR document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hocrOut.check(); err != nil {
			return err
		}
		images, err := loadImages(args, cfg.DPI)
		if err != nil {
			return err
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		doc, err := s.HOCR(images)
		if err != nil {
			return err
		}
		out, err := hocr.GenerateHOCRDocument(doc)
		if err != nil {
			return err
		}
		return hocrOut.write(cmd.OutOrStdout(), []byte(out))
	},
}

func init() {
	textOut.register(textCmd)
	blocksOut.register(blocksCmd)
	hocrOut.register(hocrCmd)
	blocksCmd.Flags().StringVar(&blocksLevel, "level", "word", "block level: block, paragraph, line, word or symbol")
}

// recognizeFiles runs every page of the input files through a pool.
func recognizeFiles(ctx context.Context, out *outputFlags, paths []string) ([]*tessera.Result, error) {
	if err := out.check(); err != nil {
		return nil, err
	}
	images, err := loadImages(paths, cfg.DPI)
	if err != nil {
		return nil, err
	}
	p, err := openPool()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	logger.Debug().Int("pages", len(images)).Int("workers", p.Size()).Msg("Recognizing")
	return p.PerformOCRBatch(ctx, images)
}

type pageBlocks struct {
	Page   int         `json:"page"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Level  string      `json:"level"`
	Blocks []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Text       string  `json:"text"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float64 `json:"confidence"`
}

func toPageBlocks(page int, level tessera.Level, res *tessera.Result) pageBlocks {
	pb := pageBlocks{
		Page:   page,
		Width:  res.Size.X,
		Height: res.Size.Y,
		Level:  level.String(),
		Blocks: []jsonBlock{},
	}
	for _, b := range res.Blocks(level) {
		pb.Blocks = append(pb.Blocks, jsonBlock{
			Text:       b.Text,
			X1:         b.BBox.Min.X,
			Y1:         b.BBox.Min.Y,
			X2:         b.BBox.Max.X,
			Y2:         b.BBox.Max.Y,
			Confidence: b.Confidence,
		})
	}
	return pb
}
