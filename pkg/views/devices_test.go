package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type listResult struct {
	devices []types.PlantDevice
	err     error
}

// gatedLister blocks every GetDeviceList until a result for its plant is sent.
type gatedLister struct {
	mu    sync.Mutex
	gates map[int]chan listResult
}

func newGatedLister() *gatedLister {
	return &gatedLister{gates: map[int]chan listResult{}}
}

func (g *gatedLister) gate(psID int) chan listResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[psID]
	if !ok {
		ch = make(chan listResult, 1)
		g.gates[psID] = ch
	}
	return ch
}

func (g *gatedLister) GetDeviceList(ctx context.Context, psID int) ([]types.PlantDevice, error) {
	select {
	case r := <-g.gate(psID):
		return r.devices, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type staticLister listResult

func (s staticLister) GetDeviceList(ctx context.Context, psID int) ([]types.PlantDevice, error) {
	return s.devices, s.err
}

func TestDeviceListStates(t *testing.T) {
	ctx := context.Background()

	t.Run("loading", func(t *testing.T) {
		g := newGatedLister()
		l := NewDeviceList(g, nil)
		l.Load(ctx, 1)

		v := l.View()
		assert.Equal(t, DeviceListLoading, v.State)
		assert.Empty(t, v.Error)
		assert.Empty(t, v.Message)
		assert.Empty(t, v.Cards)

		g.gate(1) <- listResult{}
		l.Wait()
		assert.Equal(t, DeviceListEmpty, l.View().State)
	})

	t.Run("empty", func(t *testing.T) {
		for name, devices := range map[string][]types.PlantDevice{"nil": nil, "empty": {}} {
			l := NewDeviceList(staticLister{devices: devices}, nil)
			l.Load(ctx, 1)
			l.Wait()
			v := l.View()
			assert.Equal(t, DeviceListEmpty, v.State, name)
			assert.Equal(t, "No devices found for this plant.", v.Message, name)
			assert.Empty(t, v.Error, name)
			assert.Equal(t, 0, v.Count, name)
		}
	})

	t.Run("error", func(t *testing.T) {
		l := NewDeviceList(staticLister{err: errors.New("getDeviceListByPsId failed: boom")}, nil)
		l.Load(ctx, 1)
		l.Wait()
		v := l.View()
		assert.Equal(t, DeviceListError, v.State)
		assert.Equal(t, "getDeviceListByPsId failed: boom", v.Error)
		assert.Empty(t, v.Message)
		assert.Empty(t, v.Cards)
	})

	t.Run("error without message", func(t *testing.T) {
		l := NewDeviceList(staticLister{err: errors.New("")}, nil)
		l.Load(ctx, 1)
		l.Wait()
		assert.Equal(t, "Failed to load devices", l.View().Error)
	})
}

func TestDeviceListDispatch(t *testing.T) {
	points := &mockPoints{}
	points.On("GetDevicePointData", mock.Anything, 43, "1001_43_1_1", []int{58604}).
		Return([]types.DevicePoint{{"p58604": "0.4523"}}, nil)
	tray := &recordingTray{}

	devices := []types.PlantDevice{
		batteryDevice(),
		{UUID: 0, DeviceSN: "INV1", PsKey: "1001_1_1_1", DeviceType: 1, DeviceName: "Inverter", DevFaultStatus: 4},
	}
	l := NewDeviceList(staticLister{devices: devices}, func(d types.PlantDevice) *Battery {
		return NewBattery(d, points, tray, time.Hour)
	})
	l.Load(context.Background(), 1001)
	l.Wait()
	defer l.Unmount()

	require.Eventually(t, func() bool { return len(tray.Updates()) == 1 }, time.Second, time.Millisecond)

	v := l.View()
	assert.Equal(t, DeviceListLoaded, v.State)
	assert.Equal(t, 1001, v.PsID)
	assert.Equal(t, 2, v.Count)
	require.Len(t, v.Cards, 2)

	assert.Equal(t, CardBattery, v.Cards[0].Kind)
	assert.Equal(t, "7", v.Cards[0].Key)
	require.NotNil(t, v.Cards[0].Battery)
	assert.Equal(t, "45.2%", v.Cards[0].Battery.Display)

	assert.Equal(t, CardDevice, v.Cards[1].Kind)
	assert.Equal(t, "INV1", v.Cards[1].Key)
	assert.Nil(t, v.Cards[1].Battery)
	assert.Equal(t, "zap", v.Cards[1].Device.Icon)

	assert.Equal(t, []trayUpdate{{45, "Battery: 45%"}}, tray.Updates())
}

func TestDeviceListStaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("newer load wins", func(t *testing.T) {
		l := NewDeviceList(&slowFirstLister{release: make(chan struct{})}, nil)
		lister := l.lister.(*slowFirstLister)

		l.Load(ctx, 1)
		l.Load(ctx, 2)
		// let the first fetch answer after the second one was started
		close(lister.release)
		l.Wait()

		v := l.View()
		assert.Equal(t, 2, v.PsID)
		assert.Equal(t, DeviceListLoaded, v.State)
		require.Len(t, v.Cards, 1)
		assert.Equal(t, "plant-2", v.Cards[0].Key)
	})

	t.Run("unmount discards in-flight fetch", func(t *testing.T) {
		g := newGatedLister()
		l := NewDeviceList(g, nil)
		l.Load(ctx, 1)
		l.Unmount()
		l.Wait()

		v := l.View()
		assert.Equal(t, DeviceListLoading, v.State)
		assert.Empty(t, v.Error, "a canceled fetch must not surface as an error")
	})

	t.Run("reload unmounts old batteries", func(t *testing.T) {
		points := &mockPoints{}
		points.On("GetDevicePointData", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]types.DevicePoint{{"p58604": "0.5"}}, nil)
		tray := &recordingTray{}
		var batteries []*Battery

		l := NewDeviceList(staticLister{devices: []types.PlantDevice{batteryDevice()}}, func(d types.PlantDevice) *Battery {
			b := NewBattery(d, points, tray, 5*time.Millisecond)
			batteries = append(batteries, b)
			return b
		})
		l.Load(ctx, 1)
		l.Wait()
		l.Load(ctx, 1)
		l.Wait()
		l.Unmount()

		require.Len(t, batteries, 2)
		for _, b := range batteries {
			assert.False(t, b.mounted(), "battery still polling")
		}
	})
}

// slowFirstLister answers plant 1 only after release is closed and every
// other plant right away.
type slowFirstLister struct {
	release chan struct{}
}

func (s *slowFirstLister) GetDeviceList(ctx context.Context, psID int) ([]types.PlantDevice, error) {
	if psID == 1 {
		<-s.release
	}
	return []types.PlantDevice{{DeviceSN: "plant-" + string(rune('0'+psID)), DeviceType: 1}}, nil
}
