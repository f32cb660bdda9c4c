package engine

import (
	"strconv"
)

// Tesseract variables managed through Params.
const (
	VarWhitelist      = "tessedit_char_whitelist"
	VarBlacklist      = "tessedit_char_blacklist"
	VarPreserveSpaces = "preserve_interword_spaces"
	VarMinXHeight     = "textord_min_xheight"
	VarPageSegMode    = "tessedit_pageseg_mode"
	VarEngineMode     = "tessedit_ocr_engine_mode"
	VarHOCRCharBoxes  = "hocr_char_boxes"
)

const (
	defaultMinXHeight  = 10
	defaultPreserveOff = "0"
)

// Params are the per-pass recognition settings.
type Params struct {
	Whitelist               string            // only these characters may be output
	Blacklist               string            // these characters are never output
	PageSegMode             PageSegMode       // layout analysis mode
	MinCharHeight           int               // minimum x-height in pixels, 0 for the engine default
	PreserveInterwordSpaces bool              // keep runs of spaces between words
	Extra                   map[string]string // further Tesseract variables, applied last
}

// Variables renders the params as Tesseract variables. Every managed
// variable is present, holding the engine default when unset, so that a
// handle reused across passes never keeps a value from an earlier pass.
func (p Params) Variables() map[string]string {
	vars := map[string]string{
		VarWhitelist:      p.Whitelist,
		VarBlacklist:      p.Blacklist,
		VarPreserveSpaces: defaultPreserveOff,
		VarMinXHeight:     strconv.Itoa(defaultMinXHeight),
	}
	if p.PreserveInterwordSpaces {
		vars[VarPreserveSpaces] = "1"
	}
	if p.MinCharHeight > 0 {
		vars[VarMinXHeight] = strconv.Itoa(p.MinCharHeight)
	}
	for k, v := range p.Extra {
		vars[k] = v
	}
	return vars
}
