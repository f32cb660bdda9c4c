//go:build !tesseract_cli

package tessera

import (
	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/engine/tesslib"
)

// DefaultBackend links libtesseract. Build with -tags tesseract_cli to run
// the tesseract executable instead.
func DefaultBackend() engine.Backend { return tesslib.Backend{} }
