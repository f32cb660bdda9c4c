//go:build tesseract_cli

package tessera

import (
	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/engine/tesscli"
)

// DefaultBackend runs the tesseract executable found in PATH.
func DefaultBackend() engine.Backend { return tesscli.Backend{} }
