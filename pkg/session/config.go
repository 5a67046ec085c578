package session

import (
	"github.com/jameshartig/sungrowmon/pkg/tray"
	"github.com/jameshartig/sungrowmon/pkg/views"
	"github.com/levenlabs/go-lflag"
)

// Configured returns a Controller configured from flags.
func Configured(api API, updater tray.Updater) *Controller {
	pollInterval := lflag.Duration("battery-poll-interval", views.DefaultBatteryPollInterval, "How often the battery state of charge is refreshed")

	c := New(api, updater, views.DefaultBatteryPollInterval)

	lflag.Do(func() {
		if *pollInterval <= 0 {
			panic("battery-poll-interval must be positive")
		}
		c.pollInterval = *pollInterval
	})

	return c
}
