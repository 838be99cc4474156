package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Check   CheckCmd   `cmd:"" help:"Run one poll cycle now."`
	Watch   WatchCmd   `cmd:"" help:"Poll continuously until interrupted."`
	Recent  RecentCmd  `cmd:"" help:"Show the recent jobs cache."`
	Track   TrackCmd   `cmd:"" help:"Follow individual projects for changes."`
	Draft   DraftCmd   `cmd:"" help:"Render a proposal draft for a project."`
	History HistoryCmd `cmd:"" help:"Seen history utilities."`
	Proxies ProxiesCmd `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
