package cmd

import (
	"context"
	"fmt"

	"github.com/frelancia/frelwatch/internal/models"
)

type HistoryCmd struct {
	Clear HistoryClearCmd `cmd:"" help:"Forget all seen jobs, the recent cache and the daily counters."`
}

type HistoryClearCmd struct {
	Yes bool `help:"Confirm: the next poll will treat every listed job as new."`
}

func (h *HistoryClearCmd) Run(ctx *Context) error {
	if !h.Yes {
		return fmt.Errorf("refusing to clear history without --yes")
	}

	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}

	if err := st.SetSeen(runCtx, nil); err != nil {
		return err
	}
	if err := st.SetRecent(runCtx, nil); err != nil {
		return err
	}
	if err := st.SetStats(runCtx, models.Stats{}); err != nil {
		return err
	}

	ctx.UI.Successf("history cleared")
	return nil
}
