package main

import (
	"context"
	"log/slog"

	"fyne.io/systray"
	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/tray"
	"github.com/pkg/browser"
)

const trayTooltip = "Sungrow iSolarCloud"

// runTray renders status in the system tray until the Quit item is clicked or
// ctx is done. It must be called from the main goroutine.
func runTray(ctx context.Context, quit context.CancelFunc, status *tray.Status, url string) {
	systray.Run(func() {
		if icon, err := tray.BadgeIcon(0); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to render tray icon", slog.Any("error", err))
		} else {
			systray.SetIcon(icon)
		}
		systray.SetTooltip(trayTooltip)

		open := systray.AddMenuItem("Open", "Open the monitor in a browser")
		systray.AddSeparator()
		exit := systray.AddMenuItem("Quit", "Quit the monitor")

		go func() {
			for {
				select {
				case title := <-status.Titles():
					systray.SetTooltip(title)
					systray.SetTitle(title)
				case icon := <-status.Icons():
					systray.SetIcon(icon)
				case <-open.ClickedCh:
					if err := browser.OpenURL(url); err != nil {
						log.Ctx(ctx).WarnContext(ctx, "failed to open browser", slog.Any("error", err))
					}
				case <-exit.ClickedCh:
					quit()
					return
				case <-ctx.Done():
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		log.Ctx(ctx).DebugContext(ctx, "tray exited")
	})
}

func quitTray() {
	systray.Quit()
}
