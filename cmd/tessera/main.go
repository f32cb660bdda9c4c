// tessera is a command-line front end to the tessera OCR session facade.
//
// It recognizes images (or rasterized PDF pages) with Tesseract and writes
// plain text, JSON blocks, hOCR, or searchable PDFs. It also assembles
// searchable PDFs from existing hOCR and inspects PDFs for OCR layers.
//
// Usage:
//
//	tessera text scan.png
//	tessera blocks --level word scan.png
//	tessera hocr -o scans.hocr page1.png page2.png
//	tessera pdf -o scans.pdf page1.png page2.png
//	tessera ocrpdf -o searchable.pdf scanned.pdf
//	tessera assemble --hocr scans.hocr --image-dir ./pages -o scans.pdf
//	tessera inspect searchable.pdf
//	tessera langs
//
// Configuration is read from a YAML file (--config or $TESSERA_CONFIG),
// then TESSERA_* environment variables, then flags:
//
//	languages: eng+isl
//	data_dir: /usr/share/tessdata
//	mode: lstm_only
//	page_seg_mode: single_block
//	workers: 4
//	dpi: 300
//	variables:
//	  user_defined_dpi: "300"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
