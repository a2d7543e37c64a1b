package cmd

import (
	"io"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/seismoutils/quakecsv/internal/config"
	"github.com/seismoutils/quakecsv/internal/ui"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Clock      clockwork.Clock
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}
