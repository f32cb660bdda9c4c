package tessera

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
	"github.com/gardar/tessera/pkg/pdfocr"
)

// recognizedPage is one page ready for PDF assembly.
type recognizedPage struct {
	png  []byte
	page hocr.Page
}

// recognizePage runs a pass with hOCR output for page index i.
func (s *Session) recognizePage(ctx context.Context, img image.Image, i int) (recognizedPage, error) {
	data, size, err := encodeImage(img)
	if err != nil {
		return recognizedPage{}, onPage(err, "create pdf", i+1)
	}
	res, err := s.performEncoded(ctx, data, size, s.Config(), true)
	if err != nil {
		return recognizedPage{}, onPage(err, "create pdf", i+1)
	}
	page := *res.Page
	page.ID = fmt.Sprintf("page_%d", i+1)
	page.PageNumber = i
	return recognizedPage{png: data, page: page}, nil
}

// CreatePDF recognizes every image and assembles a searchable PDF with one
// page per image, in order. Any failing page fails the whole call.
func (s *Session) CreatePDF(images []image.Image) ([]byte, error) {
	pages, err := s.recognizeAll(context.Background(), images)
	if err != nil {
		return nil, err
	}
	return assemblePDF(pages, s.pdf, s.langs)
}

// HOCR recognizes every image into one multi-page hOCR document.
func (s *Session) HOCR(images []image.Image) (*hocr.HOCR, error) {
	pages, err := s.recognizeAll(context.Background(), images)
	if err != nil {
		return nil, err
	}
	return document(pages, s.langs), nil
}

func (s *Session) recognizeAll(ctx context.Context, images []image.Image) ([]recognizedPage, error) {
	if len(images) == 0 {
		return nil, newError(ImageConversionError, "create pdf", fmt.Errorf("no images"))
	}
	pages := make([]recognizedPage, len(images))
	for i, img := range images {
		p, err := s.recognizePage(ctx, img, i)
		if err != nil {
			return nil, err
		}
		pages[i] = p
	}
	return pages, nil
}

// document collects recognized pages into an hOCR document.
func document(pages []recognizedPage, langs []Language) *hocr.HOCR {
	doc := &hocr.HOCR{
		Language: string(langs[0]),
		Metadata: map[string]string{
			"ocr-system":          "tesseract",
			"ocr-capabilities":    "ocr_page ocr_carea ocr_par ocr_line ocrx_word ocrp_wconf",
			"ocr-langs":           engine.JoinLanguages(codes(langs)),
			"ocr-number-of-pages": strconv.Itoa(len(pages)),
		},
	}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, p.page)
	}
	return doc
}

func assemblePDF(pages []recognizedPage, config pdfocr.OCRConfig, langs []Language) ([]byte, error) {
	images := make([][]byte, len(pages))
	for i, p := range pages {
		images[i] = p.png
	}
	config.StartPage = 1
	out, err := pdfocr.AssembleWithOCR(document(pages, langs), images, config)
	if err != nil {
		return nil, newError(EngineRecognitionError, "assemble pdf", err)
	}
	return out, nil
}
