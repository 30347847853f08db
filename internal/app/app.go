// Package app wires the songbot domain onto the reusable telegram core:
// commands, dialog routing, callbacks, and storage selection.
package app

import (
	"context"
	"fmt"

	"github.com/m3rciful/songbot/core/bootstrap"
	coreconfig "github.com/m3rciful/songbot/core/config"
	coretelegram "github.com/m3rciful/songbot/core/telegram"
	"github.com/m3rciful/songbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/songbot/core/telegram/helpers"
	"github.com/m3rciful/songbot/core/telegram/middleware"
	"github.com/m3rciful/songbot/core/telegram/router"
	"github.com/m3rciful/songbot/internal/catalog"
	"github.com/m3rciful/songbot/internal/media"
	"github.com/m3rciful/songbot/internal/submission"

	tele "gopkg.in/telebot.v4"
)

// App aggregates the bot's services and implements the runner's TelegramApp.
type App struct {
	cfg      *Config
	store    catalog.Store
	media    *media.Store
	opener   *media.TelegramOpener
	sessions *submission.Manager
}

// Bootstrap initializes logging and storage and assembles the application.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	wantDB := cfg.Core.Catalog.Backend == coreconfig.CatalogBackendPostgres
	res, err := bootstrap.Run(bootstrap.Options{
		Config:       &cfg.Core,
		Database:     cfg.Database,
		WantDatabase: wantDB,
	})
	if err != nil {
		return nil, err
	}

	var store catalog.Store
	if wantDB {
		store = catalog.NewPostgresStore(res.DB)
	} else {
		store = catalog.NewFileStore(cfg.Core.Catalog.Path)
	}

	// The opener is bound to the live bot in the OnStart hook; no update
	// reaches a handler before that.
	opener := &media.TelegramOpener{}
	mediaStore, err := media.NewStore(cfg.Core.Media.Dir, opener)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		store:    store,
		media:    mediaStore,
		opener:   opener,
		sessions: submission.NewManager(mediaStore, store),
	}, nil
}

// TelegramRunOptions builds the registry, routes, and middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Kategoriyalar ro'yxati",
	})
	reg.RegisterCommand("/addsong", commands.Command{
		Handler:     a.handleAddSong,
		Description: "Yangi qo'shiq qo'shish",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(cbSong, a.handleSongSelect); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(cbLyrics, a.handleLyrics); err != nil {
		return coretelegram.RunOptions{}, err
	}

	// Plain text outside a dialog is a category selection.
	reg.SetTextFallback(a.handleCategory)

	adminOpts := middleware.AdminOptions{
		AdminIDs: a.cfg.Core.AdminIDs(),
		OnReject: func(c tele.Context) error {
			return tghelpers.SendText(c, msgNoPermission)
		},
	}

	routes := router.CommandRoutes(reg, adminOpts)
	routes = append(routes, router.TextRoutes(dialogFSM{app: a}, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.opener.Bot = rt.Bot
			return nil
		},
	}, nil
}
