package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
)

type WatchCmd struct {
	Interval int    `help:"Minutes between polls (overrides config)." env:"FRELWATCH_INTERVAL"`
	Proxies  string `help:"Comma-separated proxy URLs." env:"FRELWATCH_PROXIES"`
	NoNotify bool   `help:"Skip desktop notifications, log results only."`
}

func (w *WatchCmd) Run(ctx *Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = ctx.Settings.Interval
	}
	if interval <= 0 {
		interval = 1
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Single-flight guard: when enrichment stretches a cycle past the next
	// tick, the overlapping tick is dropped rather than queued.
	var busy sync.Mutex
	tick := func() {
		if !busy.TryLock() {
			ctx.Logger.Warn().Msg("previous cycle still running, tick dropped")
			return
		}
		defer busy.Unlock()

		result, changes, err := runCycle(runCtx, ctx, cycleOptions{
			proxies:  w.Proxies,
			noNotify: w.NoNotify,
		})
		if err != nil {
			ctx.Logger.Error().Err(err).Msg("poll cycle failed")
			return
		}
		ctx.Logger.Info().
			Int("new", result.NewCount).
			Int("notified", result.Notified).
			Int("suppressed", result.Suppressed).
			Int("total_seen", result.TotalSeen).
			Int("tracked_changes", len(changes)).
			Msg("poll cycle complete")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %dm", interval), tick); err != nil {
		return err
	}

	ctx.UI.Infof("watching every %dm, Ctrl-C to stop", interval)
	tick()
	scheduler.Start()

	<-runCtx.Done()
	<-scheduler.Stop().Done()
	ctx.UI.Infof("stopped")
	return nil
}
