package decomp

import (
	"github.com/sirupsen/logrus"

	"github.com/scry-re/scry/internal/engine"
	"github.com/scry-re/scry/sdk"
)

// PdcPlugin bundles the engine's own pseudo-C decompiler as a plugin,
// so the capability is present even with every plugin directory empty.
// It decompiles through the pdcj command.
type PdcPlugin struct {
	*CmdDecompiler
}

// NewPdcPlugin builds the bundled pdc decompiler plugin on runner.
func NewPdcPlugin(runner engine.Runner, log *logrus.Logger) *PdcPlugin {
	return &PdcPlugin{
		CmdDecompiler: NewCmdDecompiler("pdc", "pdc", "pdcj", runner, log),
	}
}

// Info describes the bundled plugin.
func (p *PdcPlugin) Info() sdk.Info {
	return sdk.Info{
		Name:        "pdc",
		Description: "Pseudo-C decompiler built into the engine",
		Version:     "1.0.0",
		Author:      "scry",
	}
}

// Setup implements sdk.Plugin. The engine connection is handed in at
// construction, so there is nothing left to do.
func (p *PdcPlugin) Setup() {}

// Terminate implements sdk.Plugin.
func (p *PdcPlugin) Terminate() {}
