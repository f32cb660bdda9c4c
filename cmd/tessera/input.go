package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/gardar/tessera/pkg/tessera"
)

// outputFlags are shared by the subcommands that write a file.
type outputFlags struct {
	path      string
	overwrite bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.path, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "overwrite the output file if it exists")
}

// check fails early, before any recognition, when the output would clobber a file.
func (o *outputFlags) check() error {
	if o.path == "" || o.path == "-" || o.overwrite {
		return nil
	}
	if _, err := os.Stat(o.path); err == nil {
		return fmt.Errorf("output file %s already exists, use --overwrite to replace it", o.path)
	}
	return nil
}

func (o *outputFlags) write(stdout io.Writer, data []byte) error {
	if o.path == "" || o.path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(o.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info().Str("file", o.path).Int("bytes", len(data)).Msg("Output written")
	return nil
}

// loadImages reads every path as an image, or as a PDF whose pages are
// rasterized at dpi. Pages keep the order of the arguments.
func loadImages(paths []string, dpi float64) ([]image.Image, error) {
	var images []image.Image
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if mimetype.Detect(data).Is("application/pdf") {
			pages, err := tessera.RasterizePDF(data, dpi)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug().Str("file", path).Int("pages", len(pages)).Float64("dpi", dpi).Msg("Rasterized PDF")
			images = append(images, pages...)
			continue
		}
		img, err := tessera.DecodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// imageFiles lists the images in dir in name order.
func imageFiles(dir string) ([]string, [][]byte, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list image directory: %w", err)
	}
	sort.Strings(paths)

	var names []string
	var images [][]byte
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		if !tessera.IsImage(data) {
			logger.Debug().Str("file", path).Msg("Skipping non-image file")
			continue
		}
		names = append(names, path)
		images = append(images, data)
	}
	return names, images, nil
}
