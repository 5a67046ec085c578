package views

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/types"
)

const (
	// NoDevicesMessage is shown when a plant has no devices.
	NoDevicesMessage = "No devices found for this plant."

	defaultDeviceError = "Failed to load devices"
)

// DeviceLister fetches the devices of a plant.
type DeviceLister interface {
	GetDeviceList(ctx context.Context, psID int) ([]types.PlantDevice, error)
}

// DeviceListState is the state of a device list. Exactly one applies at a
// time.
type DeviceListState string

const (
	DeviceListLoading DeviceListState = "loading"
	DeviceListError   DeviceListState = "error"
	DeviceListEmpty   DeviceListState = "empty"
	DeviceListLoaded  DeviceListState = "loaded"
)

// CardKind says how a device card is rendered.
type CardKind string

const (
	CardDevice  CardKind = "device"
	CardBattery CardKind = "battery"
)

// DeviceCard is one entry of the device list.
type DeviceCard struct {
	Key     string       `json:"key"`
	Kind    CardKind     `json:"kind"`
	Device  DeviceView   `json:"device"`
	Battery *BatteryView `json:"battery,omitempty"`
}

// DeviceListView is the rendered device list.
type DeviceListView struct {
	PsID    int             `json:"psId"`
	State   DeviceListState `json:"state"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Count   int             `json:"count"`
	Cards   []DeviceCard    `json:"cards"`
}

// DeviceList fetches and renders the devices of one plant. Battery devices get
// a mounted Battery card.
//
// Every Load is tagged with a generation. A response that arrives after a newer
// Load or an Unmount is discarded.
type DeviceList struct {
	lister     DeviceLister
	newBattery func(types.PlantDevice) *Battery

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	psID      int
	state     DeviceListState
	err       string
	devices   []types.PlantDevice
	batteries map[string]*Battery

	wg sync.WaitGroup
}

// NewDeviceList returns an idle device list. newBattery builds the card for
// every battery device; it may be nil to render batteries as plain cards.
func NewDeviceList(lister DeviceLister, newBattery func(types.PlantDevice) *Battery) *DeviceList {
	return &DeviceList{
		lister:     lister,
		newBattery: newBattery,
		state:      DeviceListLoading,
	}
}

// Load starts fetching the devices of psID in the background, replacing
// whatever was shown before. ctx only provides values; the fetch lives until
// the next Load or Unmount.
func (l *DeviceList) Load(ctx context.Context, psID int) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ctx = log.WithAttrs(ctx, slog.Int("psID", psID))

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	old := l.batteries
	l.batteries = nil
	l.psID = psID
	l.state = DeviceListLoading
	l.err = ""
	l.devices = nil
	l.mu.Unlock()

	unmountAll(old)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		devices, err := l.lister.GetDeviceList(ctx, psID)
		l.finish(ctx, gen, devices, err)
	}()
}

func (l *DeviceList) finish(ctx context.Context, gen uint64, devices []types.PlantDevice, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		log.Ctx(ctx).DebugContext(ctx, "discarding stale device list response")
		return
	}
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load devices", slog.Any("error", err))
		l.state = DeviceListError
		l.err = err.Error()
		if l.err == "" {
			l.err = defaultDeviceError
		}
		return
	}
	if len(devices) == 0 {
		l.state = DeviceListEmpty
		return
	}

	l.state = DeviceListLoaded
	l.devices = devices
	if l.newBattery == nil {
		return
	}
	l.batteries = make(map[string]*Battery)
	for _, d := range devices {
		if !d.IsBattery() {
			continue
		}
		if _, ok := l.batteries[d.Key()]; ok {
			continue
		}
		b := l.newBattery(d)
		b.Mount(ctx)
		l.batteries[d.Key()] = b
	}
}

// Wait blocks until every started fetch has returned.
func (l *DeviceList) Wait() {
	l.wg.Wait()
}

// Unmount discards any in-flight fetch and stops all battery polling.
func (l *DeviceList) Unmount() {
	l.mu.Lock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	old := l.batteries
	l.batteries = nil
	l.mu.Unlock()

	unmountAll(old)
}

func unmountAll(batteries map[string]*Battery) {
	for _, b := range batteries {
		b.Unmount()
	}
}

// View renders the list. Cards keep the order the API returned.
func (l *DeviceList) View() DeviceListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := DeviceListView{
		PsID:  l.psID,
		State: l.state,
		Count: len(l.devices),
		Cards: make([]DeviceCard, 0, len(l.devices)),
	}
	switch l.state {
	case DeviceListError:
		v.Error = l.err
	case DeviceListEmpty:
		v.Message = NoDevicesMessage
	}
	for _, d := range l.devices {
		card := DeviceCard{
			Key:    d.Key(),
			Kind:   CardDevice,
			Device: NewDeviceView(d),
		}
		if d.IsBattery() {
			card.Kind = CardBattery
			if b, ok := l.batteries[d.Key()]; ok {
				bv := b.View()
				card.Battery = &bv
			}
		}
		v.Cards = append(v.Cards, card)
	}
	return v
}
