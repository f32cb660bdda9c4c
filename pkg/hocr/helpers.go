package hocr

import (
	"strings"
)

// ExtractHOCRText extracts all text from an HOCR document
// Lines are separated by newlines and pages by a blank line.
func ExtractHOCRText(hocrDoc *HOCR) string {
	var builder strings.Builder
	for _, page := range hocrDoc.Pages {
		builder.WriteString(page.Text())
		builder.WriteString("\n")
	}
	return builder.String()
}

// Text joins the words of every line, one line per row.
func (p Page) Text() string {
	var builder strings.Builder
	p.walk(visitor{
		line: func(l Line) {
			for i, w := range l.Words {
				if i > 0 {
					builder.WriteString(" ")
				}
				builder.WriteString(w.Text)
			}
			builder.WriteString("\n")
		},
		looseWords: func(words []Word) {
			for i, w := range words {
				if i > 0 {
					builder.WriteString(" ")
				}
				builder.WriteString(w.Text)
			}
			builder.WriteString("\n")
		},
	})
	return builder.String()
}

// Words returns every word on the page in reading order.
func (p Page) Words() []Word {
	var words []Word
	p.walk(visitor{
		line:       func(l Line) { words = append(words, l.Words...) },
		looseWords: func(ws []Word) { words = append(words, ws...) },
	})
	return words
}

// Elements flattens the page at the level of class, which is one of
// ClassArea, ClassParagraph, ClassLine, ClassWord or ClassSymbol. Every
// Tesseract line class counts as ClassLine.
func (p Page) Elements(class string) []Element {
	var out []Element
	join := func(words []Word) string {
		parts := make([]string, 0, len(words))
		for _, w := range words {
			parts = append(parts, w.Text)
		}
		return strings.Join(parts, " ")
	}

	v := visitor{}
	switch canonicalClass(class) {
	case ClassArea:
		v.area = func(a Area) {
			out = append(out, Element{Class: ClassArea, ID: a.ID, BBox: a.BBox, Text: strings.TrimSpace(areaText(a))})
		}
	case ClassParagraph:
		v.paragraph = func(para Paragraph) {
			out = append(out, Element{Class: ClassParagraph, ID: para.ID, BBox: para.BBox, Text: strings.TrimSpace(paragraphText(para))})
		}
	case ClassLine:
		v.line = func(l Line) {
			out = append(out, Element{Class: l.Class(), ID: l.ID, BBox: l.BBox, Text: join(l.Words), Confidence: meanConfidence(l.Words)})
		}
	case ClassWord:
		emit := func(ws []Word) {
			for _, w := range ws {
				out = append(out, Element{Class: ClassWord, ID: w.ID, BBox: w.BBox, Text: w.Text, Confidence: w.Confidence})
			}
		}
		v.line = func(l Line) { emit(l.Words) }
		v.looseWords = emit
	case ClassSymbol:
		emit := func(ws []Word) {
			for _, w := range ws {
				for _, s := range w.Symbols {
					out = append(out, Element{Class: ClassSymbol, BBox: s.BBox, Text: s.Text, Confidence: s.Confidence})
				}
			}
		}
		v.line = func(l Line) { emit(l.Words) }
		v.looseWords = emit
	}
	p.walk(v)
	return out
}

// Scale returns a copy of the page with every coordinate multiplied by f.
func (p Page) Scale(f float64) Page {
	scaleWords := func(ws []Word) []Word {
		out := make([]Word, len(ws))
		for i, w := range ws {
			w.BBox = w.BBox.Scale(f)
			syms := make([]Symbol, len(w.Symbols))
			for j, s := range w.Symbols {
				s.BBox = s.BBox.Scale(f)
				syms[j] = s
			}
			w.Symbols = syms
			out[i] = w
		}
		return out
	}
	scaleLines := func(ls []Line) []Line {
		out := make([]Line, len(ls))
		for i, l := range ls {
			l.BBox = l.BBox.Scale(f)
			l.Size *= f
			l.Words = scaleWords(l.Words)
			out[i] = l
		}
		return out
	}
	scaleParagraphs := func(ps []Paragraph) []Paragraph {
		out := make([]Paragraph, len(ps))
		for i, para := range ps {
			para.BBox = para.BBox.Scale(f)
			para.Lines = scaleLines(para.Lines)
			para.Words = scaleWords(para.Words)
			out[i] = para
		}
		return out
	}

	scaled := p
	scaled.BBox = p.BBox.Scale(f)
	scaled.Areas = make([]Area, len(p.Areas))
	for i, a := range p.Areas {
		a.BBox = a.BBox.Scale(f)
		a.Paragraphs = scaleParagraphs(a.Paragraphs)
		a.Lines = scaleLines(a.Lines)
		a.Words = scaleWords(a.Words)
		scaled.Areas[i] = a
	}
	scaled.Paragraphs = scaleParagraphs(p.Paragraphs)
	scaled.Lines = scaleLines(p.Lines)
	return scaled
}

// visitor receives the page hierarchy in reading order. Nil callbacks are skipped.
type visitor struct {
	area       func(Area)
	paragraph  func(Paragraph)
	line       func(Line)
	looseWords func([]Word) // words without a parent line
}

func (p Page) walk(v visitor) {
	// lines are keyed by ID so one nested under several parents is visited once
	seen := make(map[string]bool)
	line := func(l Line) {
		if l.ID != "" {
			if seen[l.ID] {
				return
			}
			seen[l.ID] = true
		}
		if v.line != nil {
			v.line(l)
		}
	}
	words := func(ws []Word) {
		if len(ws) > 0 && v.looseWords != nil {
			v.looseWords(ws)
		}
	}
	paragraph := func(para Paragraph) {
		if v.paragraph != nil {
			v.paragraph(para)
		}
		for _, l := range para.Lines {
			line(l)
		}
		words(para.Words)
	}

	for _, a := range p.Areas {
		if v.area != nil {
			v.area(a)
		}
		for _, para := range a.Paragraphs {
			paragraph(para)
		}
		for _, l := range a.Lines {
			line(l)
		}
		words(a.Words)
	}
	for _, para := range p.Paragraphs {
		paragraph(para)
	}
	for _, l := range p.Lines {
		line(l)
	}
}

func areaText(a Area) string {
	return Page{Areas: []Area{a}}.Text()
}

func paragraphText(para Paragraph) string {
	return Page{Paragraphs: []Paragraph{para}}.Text()
}

func meanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
