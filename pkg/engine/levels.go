package engine

import (
	"fmt"
	"strings"
)

// Level is the granularity of recognition output. The order matches
// Tesseract's page iterator levels (RIL_BLOCK .. RIL_SYMBOL).
type Level int

const (
	LevelBlock Level = iota
	LevelParagraph
	LevelLine
	LevelWord
	LevelSymbol
)

// AllLevels lists every level from coarsest to finest.
var AllLevels = []Level{LevelBlock, LevelParagraph, LevelLine, LevelWord, LevelSymbol}

var levelNames = map[Level]string{
	LevelBlock:     "block",
	LevelParagraph: "paragraph",
	LevelLine:      "line",
	LevelWord:      "word",
	LevelSymbol:    "symbol",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts the level names plus the aliases "para", "textline" and "char".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return LevelBlock, nil
	case "paragraph", "para":
		return LevelParagraph, nil
	case "line", "textline":
		return LevelLine, nil
	case "word":
		return LevelWord, nil
	case "symbol", "char":
		return LevelSymbol, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Mode selects the OCR engine. The zero value leaves the choice to Tesseract.
type Mode int

const (
	ModeDefault       Mode = iota
	ModeTesseractOnly      // legacy engine, needs legacy trained data
	ModeLSTMOnly           // neural engine
	ModeCombined           // legacy and neural
)

var modeNames = map[Mode]string{
	ModeDefault:       "default",
	ModeTesseractOnly: "tesseract_only",
	ModeLSTMOnly:      "lstm_only",
	ModeCombined:      "combined",
}

// Native is the tessedit_ocr_engine_mode value.
func (m Mode) Native() int {
	switch m {
	case ModeTesseractOnly:
		return 0
	case ModeLSTMOnly:
		return 1
	case ModeCombined:
		return 2
	}
	return 3
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, name := range modeNames {
		if s == name {
			*m = mode
			return nil
		}
	}
	// native OEM numbers
	for _, mode := range []Mode{ModeTesseractOnly, ModeLSTMOnly, ModeCombined, ModeDefault} {
		if s == fmt.Sprint(mode.Native()) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown engine mode %q", text)
}

// PageSegMode is Tesseract's page segmentation mode. The zero value is fully
// automatic segmentation, Tesseract's own default.
type PageSegMode int

const (
	PSMAuto PageSegMode = iota
	PSMOSDOnly
	PSMAutoOSD
	PSMAutoOnly
	PSMSingleColumn
	PSMSingleBlockVertText
	PSMSingleBlock
	PSMSingleLine
	PSMSingleWord
	PSMCircleWord
	PSMSingleChar
	PSMSparseText
	PSMSparseTextOSD
	PSMRawLine
)

var psmTable = []struct {
	mode   PageSegMode
	native int
	name   string
}{
	{PSMAuto, 3, "auto"},
	{PSMOSDOnly, 0, "osd_only"},
	{PSMAutoOSD, 1, "auto_osd"},
	{PSMAutoOnly, 2, "auto_only"},
	{PSMSingleColumn, 4, "single_column"},
	{PSMSingleBlockVertText, 5, "single_block_vert_text"},
	{PSMSingleBlock, 6, "single_block"},
	{PSMSingleLine, 7, "single_line"},
	{PSMSingleWord, 8, "single_word"},
	{PSMCircleWord, 9, "circle_word"},
	{PSMSingleChar, 10, "single_char"},
	{PSMSparseText, 11, "sparse_text"},
	{PSMSparseTextOSD, 12, "sparse_text_osd"},
	{PSMRawLine, 13, "raw_line"},
}

// Native is the tessedit_pageseg_mode value.
func (p PageSegMode) Native() int {
	for _, e := range psmTable {
		if e.mode == p {
			return e.native
		}
	}
	return 3
}

func (p PageSegMode) String() string {
	for _, e := range psmTable {
		if e.mode == p {
			return e.name
		}
	}
	return fmt.Sprintf("psm(%d)", int(p))
}

func (p PageSegMode) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText accepts names such as "single_line" or native numbers such as "7".
func (p *PageSegMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for _, e := range psmTable {
		if s == e.name || s == fmt.Sprint(e.native) {
			*p = e.mode
			return nil
		}
	}
	return fmt.Errorf("unknown page segmentation mode %q", text)
}
