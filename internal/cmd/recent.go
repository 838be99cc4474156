package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/frelancia/frelwatch/internal/export"
)

type RecentCmd struct {
	Format string `help:"Output format: csv, json, md, tsv." enum:",csv,json,md,tsv,table" default:""`
	Limit  int    `help:"Maximum entries to show."`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
}

func (r *RecentCmd) Run(ctx *Context) error {
	st, err := ctx.openStore(context.Background())
	if err != nil {
		return err
	}
	jobs, err := st.Recent(context.Background())
	if err != nil {
		return err
	}
	if r.Limit > 0 && len(jobs) > r.Limit {
		jobs = jobs[:r.Limit]
	}

	writer := ctx.Out
	if r.Output != "" {
		file, err := os.Create(r.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	format, err := resolveFormat(ctx, r.Format, r.Output)
	if err != nil {
		return err
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && r.Output == ""
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleFull
	if strings.EqualFold(r.Links, string(export.LinkStyleShort)) {
		linkStyle = export.LinkStyleShort
	}
	return export.WriteJobs(writer, jobs, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	})
}

func resolveFormat(ctx *Context, flagValue string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if flagValue != "" {
		return export.ParseFormat(flagValue)
	}
	if outputPath != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
