package cmd

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/config"
	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/network"
	"github.com/frelancia/frelwatch/internal/scraper"
	"github.com/frelancia/frelwatch/internal/store"
	"github.com/frelancia/frelwatch/internal/ui"
)

// Source is the marketplace access the commands need. Satisfied by
// scraper.Mostaql; tests substitute fakes through Context.Source.
type Source interface {
	Listing(ctx context.Context, category scraper.Category) ([]models.Job, error)
	Detail(ctx context.Context, url string) (models.Detail, error)
}

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Settings   config.Settings
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode

	// Store and Source, when set, override the backends built from settings.
	Store  store.Store
	Source Source
}

// openStore builds the state backend the settings select: per-key JSON files
// under the config dir by default, Redis when configured.
func (c *Context) openStore(ctx context.Context) (store.Store, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	if c.Settings.StateBackend == "redis" {
		return store.NewRedisStore(ctx, c.Settings.RedisURL)
	}
	return store.NewFileStore(filepath.Join(c.ConfigDir, "state"))
}

func (c *Context) newSource(proxiesFlag string) (Source, error) {
	if c.Source != nil {
		return c.Source, nil
	}

	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}

	client, err := network.NewClient(rotator)
	if err != nil {
		return nil, err
	}
	return scraper.New(client), nil
}
