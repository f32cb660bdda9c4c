package hocr

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var charsetPattern = regexp.MustCompile(`(?i)charset=["']?([a-z0-9_-]+)`)

// ParseHOCR converts raw hOCR data into a structured HOCR object.
func ParseHOCR(data []byte) (HOCR, error) {
	var result HOCR
	result.Metadata = make(map[string]string)

	decoded, err := decodeCharset(data)
	if err != nil {
		return result, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR markup: %w", err)
	}

	extractDocumentMeta(&result, doc)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, ClassPage) {
			result.Pages = append(result.Pages, processPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(result.Pages) == 0 {
		return result, fmt.Errorf("no ocr_page elements found in HOCR data")
	}
	return result, nil
}

// decodeCharset converts single byte encoded documents to UTF-8. Tesseract
// always writes UTF-8, other producers sometimes do not.
func decodeCharset(data []byte) ([]byte, error) {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	m := charsetPattern.FindSubmatch(head)
	if m == nil {
		return data, nil
	}

	var enc encoding.Encoding
	switch strings.ToLower(string(m[1])) {
	case "utf-8", "utf8":
		return data, nil
	case "iso-8859-1", "latin1", "latin-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return data, nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", m[1], err)
	}
	return decoded, nil
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
// Quoted values such as image "scan 1.png" are returned unquoted as one value.
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, rest, _ := strings.Cut(part, " ")
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, `"`) && strings.HasSuffix(rest, `"`) && len(rest) >= 2 {
			result[key] = []string{rest[1 : len(rest)-1]}
			continue
		}
		result[key] = strings.Fields(rest)
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string
// Returns a structured BoundingBox object or nil if extraction fails
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	return boxFromProps(ParseTitle(title), "bbox")
}

func boxFromProps(props map[string][]string, key string) *BoundingBox {
	v, ok := props[key]
	if !ok || len(v) < 4 {
		return nil
	}
	var c [4]float64
	for i := range c {
		f, err := strconv.ParseFloat(v[i], 64)
		if err != nil {
			return nil
		}
		c[i] = f
	}
	b := NewBoundingBox(c[0], c[1], c[2], c[3])
	return &b
}

func firstFloat(props map[string][]string, key string) float64 {
	if v, ok := props[key]; ok && len(v) > 0 {
		f, _ := strconv.ParseFloat(v[0], 64)
		return f
	}
	return 0
}

// extractDocumentMeta extracts document-level metadata from the html and head elements
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := getAttrVal(n, "lang"); lang != "" {
					result.Language = lang
				} else if lang := getAttrVal(n, "xml:lang"); lang != "" {
					result.Language = lang
				}
			case "title":
				result.Title = strings.TrimSpace(extractTextContent(n))
			case "meta":
				name, content := getAttrVal(n, "name"), getAttrVal(n, "content")
				switch {
				case name == "" || content == "":
				case strings.HasPrefix(name, "ocr-"):
					result.Metadata[name] = content
				case name == "description":
					result.Description = content
				case name == "dc.language":
					result.Language = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// collect gathers the nearest descendants of n carrying one of classes.
// A matched node is not descended into. Every Tesseract line class is filed
// under ClassLine so lines keep their document order.
func collect(n *html.Node, classes ...string) map[string][]*html.Node {
	found := make(map[string][]*html.Node)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, class := range classes {
				if hasClass(node, class) {
					found[canonicalClass(class)] = append(found[canonicalClass(class)], node)
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

func canonicalClass(class string) string {
	for _, lc := range lineClasses {
		if class == lc {
			return ClassLine
		}
	}
	return class
}

// commonAttrs reads id, lang and the title properties of an element.
func commonAttrs(n *html.Node) (id, lang string, props map[string][]string) {
	return getAttrVal(n, "id"), getAttrVal(n, "lang"), ParseTitle(getAttrVal(n, "title"))
}

// metadataFrom copies the title properties not listed in skip.
func metadataFrom(props map[string][]string, skip ...string) map[string]string {
	md := make(map[string]string)
outer:
	for k, v := range props {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		md[k] = strings.Join(v, " ")
	}
	return md
}

// processPage extracts page information and its children (areas, paragraphs, lines)
func processPage(n *html.Node) Page {
	id, lang, props := commonAttrs(n)
	page := Page{
		ID:       id,
		Lang:     lang,
		Title:    getAttrVal(n, "title"),
		Metadata: metadataFrom(props, "bbox", "image", "ppageno"),
	}
	if bbox := boxFromProps(props, "bbox"); bbox != nil {
		page.BBox = *bbox
	}
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Join(image, " ")
	}
	if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
		page.PageNumber, _ = strconv.Atoi(ppageno[0])
	}

	found := collect(n, append([]string{ClassArea, ClassParagraph}, lineClasses...)...)
	for _, a := range found[ClassArea] {
		page.Areas = append(page.Areas, processArea(a))
	}
	for _, p := range found[ClassParagraph] {
		page.Paragraphs = append(page.Paragraphs, processParagraph(p))
	}
	for _, l := range found[ClassLine] {
		page.Lines = append(page.Lines, processLine(l))
	}
	return page
}

// processArea extracts area information and its children (paragraphs, lines, words)
func processArea(n *html.Node) Area {
	id, lang, props := commonAttrs(n)
	area := Area{ID: id, Lang: lang, Metadata: metadataFrom(props, "bbox")}
	if bbox := boxFromProps(props, "bbox"); bbox != nil {
		area.BBox = *bbox
	}

	found := collect(n, append([]string{ClassParagraph, ClassWord}, lineClasses...)...)
	for _, p := range found[ClassParagraph] {
		area.Paragraphs = append(area.Paragraphs, processParagraph(p))
	}
	for _, l := range found[ClassLine] {
		area.Lines = append(area.Lines, processLine(l))
	}
	for _, w := range found[ClassWord] {
		area.Words = append(area.Words, processWord(w))
	}
	return area
}

// processParagraph extracts paragraph information and its children (lines, words)
func processParagraph(n *html.Node) Paragraph {
	id, lang, props := commonAttrs(n)
	paragraph := Paragraph{ID: id, Lang: lang, Metadata: metadataFrom(props, "bbox")}
	if bbox := boxFromProps(props, "bbox"); bbox != nil {
		paragraph.BBox = *bbox
	}

	found := collect(n, append([]string{ClassWord}, lineClasses...)...)
	for _, l := range found[ClassLine] {
		paragraph.Lines = append(paragraph.Lines, processLine(l))
	}
	for _, w := range found[ClassWord] {
		paragraph.Words = append(paragraph.Words, processWord(w))
	}
	return paragraph
}

// processLine extracts line information and its words
func processLine(n *html.Node) Line {
	id, lang, props := commonAttrs(n)
	line := Line{
		ID:       id,
		Lang:     lang,
		Size:     firstFloat(props, "x_size"),
		Metadata: metadataFrom(props, "bbox", "baseline", "x_size"),
	}
	for _, class := range lineClasses {
		if hasClass(n, class) {
			line.Kind = class
			break
		}
	}
	if bbox := boxFromProps(props, "bbox"); bbox != nil {
		line.BBox = *bbox
	}
	if baseline, ok := props["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}

	for _, w := range collect(n, ClassWord)[ClassWord] {
		line.Words = append(line.Words, processWord(w))
	}
	return line
}

// processWord extracts a word's text, properties and character boxes
func processWord(n *html.Node) Word {
	id, lang, props := commonAttrs(n)
	word := Word{
		ID:         id,
		Lang:       lang,
		Confidence: firstFloat(props, "x_wconf"),
		Metadata:   metadataFrom(props, "bbox", "x_wconf", "lang"),
		Text:       extractTextContent(n),
	}
	if bbox := boxFromProps(props, "bbox"); bbox != nil {
		word.BBox = *bbox
	}
	if l, ok := props["lang"]; ok && len(l) > 0 {
		word.Lang = l[0]
	}

	for _, c := range collect(n, ClassSymbol)[ClassSymbol] {
		cprops := ParseTitle(getAttrVal(c, "title"))
		sym := Symbol{
			Text:       extractTextContent(c),
			Confidence: firstFloat(cprops, "x_conf"),
		}
		if bbox := boxFromProps(cprops, "x_bboxes"); bbox != nil {
			sym.BBox = *bbox
		}
		word.Symbols = append(word.Symbols, sym)
	}
	return word
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractTextContent(c))
	}
	return strings.TrimSpace(b.String())
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
