package cmd

import (
	"context"
	"fmt"

	"github.com/frelancia/frelwatch/internal/notify"
	"github.com/frelancia/frelwatch/internal/poller"
	"github.com/frelancia/frelwatch/internal/tracker"
)

type CheckCmd struct {
	Proxies   string `help:"Comma-separated proxy URLs." env:"FRELWATCH_PROXIES"`
	NoNotify  bool   `help:"Skip desktop notifications, print results only."`
	NoTracked bool   `help:"Skip the tracked-projects pass."`
}

func (c *CheckCmd) Run(ctx *Context) error {
	result, changes, err := runCycle(context.Background(), ctx, cycleOptions{
		proxies:   c.Proxies,
		noNotify:  c.NoNotify,
		noTracked: c.NoTracked,
	})
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("new=%d notified=%d suppressed=%d total_seen=%d tracked_changes=%d",
		result.NewCount, result.Notified, result.Suppressed, result.TotalSeen, len(changes))
	if result.NewCount > 0 {
		ctx.UI.Successf("%s", summary)
	} else {
		ctx.UI.Infof("%s", summary)
	}

	for _, change := range changes {
		ctx.UI.Warnf("%s (#%s)", change.Project.Title, change.Project.ID)
		for _, line := range change.Lines {
			ctx.UI.Warnf("  %s", line)
		}
	}
	return nil
}

type cycleOptions struct {
	proxies   string
	noNotify  bool
	noTracked bool
}

// runCycle runs one poll over the category feeds followed by one pass over
// the tracked projects. Both watch and check go through here.
func runCycle(ctx context.Context, c *Context, opts cycleOptions) (poller.Result, []tracker.Change, error) {
	st, err := c.openStore(ctx)
	if err != nil {
		return poller.Result{}, nil, err
	}
	source, err := c.newSource(opts.proxies)
	if err != nil {
		return poller.Result{}, nil, err
	}

	var desktop *notify.Desktop
	if !opts.noNotify {
		desktop = notify.NewDesktop(c.Logger)
	}

	var pollNotifier poller.Notifier
	var trackNotifier tracker.Notifier
	if desktop != nil {
		pollNotifier = desktop
		trackNotifier = desktop
	}

	result := poller.New(st, source, pollNotifier, c.Settings, c.Logger).Run(ctx)
	if result.Err != nil {
		return result, nil, result.Err
	}

	if opts.noTracked {
		return result, nil, nil
	}
	changes, err := tracker.New(st, source, trackNotifier, c.Settings.Sound, c.Logger).Run(ctx)
	if err != nil {
		return result, nil, err
	}
	return result, changes, nil
}
