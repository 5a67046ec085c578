package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/schedule"
	"github.com/jameshartig/sungrowmon/pkg/tray"
	"github.com/jameshartig/sungrowmon/pkg/types"
)

// DefaultBatteryPollInterval is how often a mounted battery card refreshes its
// state of charge.
const DefaultBatteryPollInterval = 5 * time.Minute

const socLoading = "Loading..."

// PointFetcher fetches real time telemetry points of a device.
type PointFetcher interface {
	GetDevicePointData(ctx context.Context, deviceType int, psKey string, pointIDs []int) ([]types.DevicePoint, error)
}

// ParseSOC converts a raw state-of-charge fraction ("0.4523") into a percentage
// with one decimal (45.2).
func ParseSOC(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid soc value %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid soc value %q", raw)
	}
	// round half up to one decimal
	return math.Floor(v*1000+0.5) / 10, nil
}

// SOCPercent rounds a percentage to the whole percent sent to the tray.
func SOCPercent(soc float64) int {
	return int(math.Floor(soc + 0.5))
}

// TrayLabel is the tray title for a whole percent.
func TrayLabel(percent int) string {
	return fmt.Sprintf("Battery: %d%%", percent)
}

// BatteryView is the battery card: the generic card plus the latest state of
// charge.
type BatteryView struct {
	DeviceView
	SOC     *float64 `json:"soc"`
	Display string   `json:"display"`
	Loading bool     `json:"loading"`
}

// Battery polls the state of charge of one battery device while mounted and
// forwards it to the tray.
type Battery struct {
	device   types.PlantDevice
	points   PointFetcher
	tray     tray.Updater
	interval time.Duration

	mu   sync.Mutex
	soc  *float64
	task *schedule.Task
}

// NewBattery returns an unmounted battery card for device.
func NewBattery(device types.PlantDevice, points PointFetcher, updater tray.Updater, interval time.Duration) *Battery {
	if interval <= 0 {
		interval = DefaultBatteryPollInterval
	}
	return &Battery{
		device:   device,
		points:   points,
		tray:     updater,
		interval: interval,
	}
}

// Mount starts polling immediately and then every interval. Mounting an
// already mounted battery does nothing. A battery can be mounted again after
// Unmount.
func (b *Battery) Mount(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.task != nil {
		return
	}
	ctx = log.WithAttrs(ctx, slog.String("psKey", b.device.PsKey))
	b.task = schedule.Every(ctx, b.interval, func(ctx context.Context) {
		if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to fetch battery soc", slog.Any("error", err))
		}
	})
}

// Unmount stops polling and waits for an in-flight poll to finish.
func (b *Battery) Unmount() {
	b.mu.Lock()
	task := b.task
	b.task = nil
	b.mu.Unlock()
	if task == nil {
		return
	}
	task.Stop()
	batterySOC.DeleteLabelValues(b.device.PsKey)
}

// Refresh fetches the state of charge once. On failure the previous value is
// kept.
func (b *Battery) Refresh(ctx context.Context) error {
	data, err := b.points.GetDevicePointData(ctx, b.device.DeviceType, b.device.PsKey, []int{types.PointBatterySOC})
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("no point data returned")
	}
	raw, ok := data[0].Value(types.PointBatterySOC)
	if !ok {
		return fmt.Errorf("point %s missing", types.PointKey(types.PointBatterySOC))
	}
	soc, err := ParseSOC(raw)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.soc = &soc
	b.mu.Unlock()

	batterySOC.WithLabelValues(b.device.PsKey).Set(soc)
	percent := SOCPercent(soc)
	log.Ctx(ctx).DebugContext(ctx, "battery soc", slog.Float64("soc", soc))
	if b.tray != nil {
		b.tray.UpdateStatus(ctx, percent, TrayLabel(percent))
	}
	return nil
}

// View renders the card.
func (b *Battery) View() BatteryView {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := BatteryView{
		DeviceView: NewDeviceView(b.device),
		Display:    socLoading,
		Loading:    b.soc == nil,
	}
	if b.soc != nil {
		soc := *b.soc
		v.SOC = &soc
		v.Display = strconv.FormatFloat(soc, 'f', -1, 64) + "%"
	}
	return v
}
