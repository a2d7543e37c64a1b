package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output; disables colors."`
	Plain   bool   `help:"TSV output; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Fetch   FetchCmd   `cmd:"" default:"withargs" help:"Fetch earthquake records into a CSV file (default command)."`
	Regions RegionsCmd `cmd:"" help:"List region presets."`
}

func NewCLI() *CLI {
	return &CLI{}
}
