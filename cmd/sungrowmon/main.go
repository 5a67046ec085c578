package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jameshartig/sungrowmon/pkg/isolarcloud"
	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/server"
	"github.com/jameshartig/sungrowmon/pkg/session"
	"github.com/jameshartig/sungrowmon/pkg/storage"
	"github.com/jameshartig/sungrowmon/pkg/tray"
	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
)

func main() {
	showTray := lflag.Bool("tray", true, "Show the battery status in the system tray")

	// init packages
	store := storage.Configured()
	client := isolarcloud.Configured(store)
	status := tray.NewStatus(1)
	sess := session.Configured(client, status)

	// init server
	srv := server.Configured(sess)

	// parse flags
	lflag.Configure()

	// lflag automatically sets llog's level, but we need to set the slog level
	level, err := log.LevelFromLLog(llog.GetLevel())
	if err != nil {
		panic(fmt.Errorf("failed to map log level: %w", err))
	}
	log.SetDefaultLogLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log.Ctx(ctx).DebugContext(ctx, "logger configured", "level", level.String())

	run := func() int {
		defer func() {
			if err := store.Close(); err != nil {
				log.Ctx(ctx).ErrorContext(ctx, "failed to close credential store", "error", err)
			}
		}()
		defer sess.Close()

		sess.CheckAuth(ctx)

		// Run will block until context is canceled or error happens
		if err := srv.Run(ctx); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
			return 1
		}
		log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
		return 0
	}

	if !*showTray {
		os.Exit(run())
	}

	// the tray owns the main thread on every platform
	code := make(chan int, 1)
	go func() {
		defer quitTray()
		code <- run()
	}()
	runTray(ctx, cancel, status, srv.URL())
	cancel()
	os.Exit(<-code)
}
