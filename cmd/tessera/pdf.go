package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/gardar/tessera/pkg/pdfocr"
)

var (
	pdfOut      outputFlags
	ocrpdfOut   outputFlags
	assembleOut outputFlags

	assembleHOCR     string
	assembleImageDir string
	assemblePDF      string
	assembleStart    int
	assembleDPI      float64
	assembleDumpPDF  bool

	inspectJSON bool
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <image|pdf>...",
	Short: "Recognize images into a new searchable PDF",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pdfOut.check(); err != nil {
			return err
		}
		images, err := loadImages(args, cfg.DPI)
		if err != nil {
			return err
		}
		p, err := openPool()
		if err != nil {
			return err
		}
		defer p.Close()

		out, err := p.CreatePDF(cmd.Context(), images)
		if err != nil {
			return err
		}
		return pdfOut.write(cmd.OutOrStdout(), out)
	},
}

var ocrpdfCmd = &cobra.Command{
	Use:   "ocrpdf <pdf>",
	Short: "Add an OCR text layer to an existing PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ocrpdfOut.check(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input PDF: %w", err)
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		out, err := s.ApplyToPDF(data, cfg.DPI)
		if err != nil {
			return err
		}
		return ocrpdfOut.write(cmd.OutOrStdout(), out)
	},
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build a searchable PDF from an existing hOCR file",
	Long: `assemble places the hOCR text of each page as an invisible layer over
either a directory of page images (one new page per image, in name order) or
the pages of an existing PDF. No recognition is run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if assembleHOCR == "" {
			return fmt.Errorf("--hocr is required")
		}
		if (assembleImageDir == "") == (assemblePDF == "") {
			return fmt.Errorf("exactly one of --image-dir or --pdf is required")
		}
		if err := assembleOut.check(); err != nil {
			return err
		}
		raw, err := os.ReadFile(assembleHOCR)
		if err != nil {
			return fmt.Errorf("failed to read hOCR file: %w", err)
		}

		config := cfg.PDF()
		config.StartPage = assembleStart
		config.DPI = assembleDPI
		config.DumpPDF = assembleDumpPDF
		config.Logger = logger

		var out []byte
		if assembleImageDir != "" {
			if cfg.Force {
				logger.Warn().Msg("force only applies with --pdf, ignoring it")
			}
			names, images, err := imageFiles(assembleImageDir)
			if err != nil {
				return err
			}
			logger.Info().Int("images", len(names)).Str("dir", assembleImageDir).Msg("Found page images")
			out, err = pdfocr.AssembleWithOCR(raw, images, config)
			if err != nil {
				return fmt.Errorf("failed to create PDF from images: %w", err)
			}
		} else {
			data, err := os.ReadFile(assemblePDF)
			if err != nil {
				return fmt.Errorf("failed to read input PDF: %w", err)
			}
			out, err = pdfocr.ApplyOCR(data, raw, config)
			if err != nil {
				return fmt.Errorf("failed to apply OCR to PDF: %w", err)
			}
		}
		return assembleOut.write(cmd.OutOrStdout(), out)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Report OCR layers and extractable text in a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read PDF: %w", err)
		}
		report, err := inspectPDF(data)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if inspectJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprintf(w, "Pages:        %d\n", report.Pages)
		fmt.Fprintf(w, "OCR layer:    %t\n", report.HasOCRLayer)
		fmt.Fprintf(w, "Has text:     %t\n", report.HasText)
		if len(report.Layers) > 0 {
			fmt.Fprintf(w, "Layers:       %s\n", strings.Join(report.Layers, ", "))
		}
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "Warning:      %s\n", warning)
		}
		return nil
	},
}

func init() {
	pdfOut.register(pdfCmd)
	ocrpdfOut.register(ocrpdfCmd)
	assembleOut.register(assembleCmd)

	f := assembleCmd.Flags()
	f.StringVar(&assembleHOCR, "hocr", "", "multi-page hOCR file")
	f.StringVar(&assembleImageDir, "image-dir", "", "directory of page images for a new PDF")
	f.StringVar(&assemblePDF, "pdf", "", "existing PDF to add the OCR layer to")
	f.IntVar(&assembleStart, "start-page", 1, "first PDF page to receive OCR (1-based)")
	f.Float64Var(&assembleDPI, "hocr-dpi", 0, "resolution of the hOCR coordinates, 0 for one pixel per point")
	f.BoolVar(&assembleDumpPDF, "dump-pdf", false, "log the input PDF structure")

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the report as JSON")
}

type inspectReport struct {
	Pages       int      `json:"pages"`
	HasOCRLayer bool     `json:"has_ocr_layer"`
	HasText     bool     `json:"has_text"`
	Layers      []string `json:"layers"`
	Warnings    []string `json:"warnings,omitempty"`
}

func inspectPDF(data []byte) (inspectReport, error) {
	info, err := pdfocr.Inspect(data)
	if err != nil {
		return inspectReport{}, err
	}
	config := cfg.PDF()
	config.Logger = logger
	detection, err := pdfocr.DetectOCR(data, config)
	if err != nil {
		return inspectReport{}, err
	}
	layers := detection.LayerInfo.Layers
	if layers == nil {
		layers = []string{}
	}
	return inspectReport{
		Pages:       info.Pages,
		HasOCRLayer: detection.HasLayerOCR,
		HasText:     detection.HasText,
		Layers:      layers,
		Warnings:    detection.Warnings,
	}, nil
}
