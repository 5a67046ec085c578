package views

import (
	"testing"

	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := DefaultLoginForm()
		assert.Equal(t, types.DefaultAuthURL, f.AuthURL)
		assert.Equal(t, types.GatewayAustralia, f.Gateway)
		assert.ErrorIs(t, f.Validate(), ErrInvalidForm)
	})

	t.Run("required fields", func(t *testing.T) {
		f := DefaultLoginForm()
		f.AppKey = "app"
		err := f.Validate()
		assert.ErrorIs(t, err, ErrInvalidForm)
		assert.ErrorContains(t, err, "secretKey is required")

		f.SecretKey = "secret"
		f.AuthURL = "  "
		assert.ErrorContains(t, f.Validate(), "authUrl is required")
	})

	t.Run("unknown gateway", func(t *testing.T) {
		f := LoginForm{AppKey: "app", SecretKey: "secret", AuthURL: types.DefaultAuthURL, Gateway: "Mars"}
		err := f.Validate()
		assert.ErrorIs(t, err, ErrInvalidForm)
		assert.ErrorContains(t, err, "unknown gateway")
	})

	t.Run("credentials", func(t *testing.T) {
		f := LoginForm{AppKey: " app ", SecretKey: "secret", AuthURL: types.DefaultAuthURL, Gateway: types.GatewayEurope}
		creds, err := f.Credentials()
		require.NoError(t, err)
		assert.Equal(t, types.Credentials{
			AppKey:     "app",
			SecretKey:  "secret",
			AuthURL:    types.DefaultAuthURL,
			GatewayURL: "https://gateway.isolarcloud.eu",
		}, creds)
	})
}

func TestLoginView(t *testing.T) {
	v := NewLoginView(DefaultLoginForm(), false)
	assert.Equal(t, "Authenticate", v.SubmitLabel)
	assert.False(t, v.Loading)
	assert.Len(t, v.Gateways, 4)

	v = NewLoginView(DefaultLoginForm(), true)
	assert.Equal(t, "Authenticating...", v.SubmitLabel)
	assert.True(t, v.Loading)
}

func TestPlantCard(t *testing.T) {
	c := NewPlantCard(types.Plant{PsID: 1, PsName: "Home", PsLocation: "Sydney", PsFaultStatus: 3, TodayEnergy: "12.5"})
	assert.Equal(t, PlantCard{ID: 1, Name: "Home", Location: "Sydney", Status: "Normal", DailyYield: "12.5 kWh"}, c)

	c = NewPlantCard(types.Plant{PsID: 2, PsFaultStatus: 1})
	assert.Equal(t, "Attention", c.Status)
	assert.Equal(t, "0 kWh", c.DailyYield)
}

func TestPlantList(t *testing.T) {
	for name, plants := range map[string][]types.Plant{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			l := NewPlantList(plants)
			assert.True(t, l.Empty)
			assert.Equal(t, "No plants found.", l.EmptyMessage)
			assert.NotNil(t, l.Cards)
			assert.Empty(t, l.Cards)
		})
	}

	l := NewPlantList([]types.Plant{{PsID: 2}, {PsID: 1}})
	assert.False(t, l.Empty)
	assert.Empty(t, l.EmptyMessage)
	require.Len(t, l.Cards, 2)
	assert.Equal(t, 2, l.Cards[0].ID)
	assert.Equal(t, 1, l.Cards[1].ID)
}

func TestPlantDetails(t *testing.T) {
	rows := func(d PlantDetails) map[string]string {
		m := map[string]string{}
		for _, r := range d.Rows {
			m[r.Label] = r.Value
		}
		return m
	}

	t.Run("normal", func(t *testing.T) {
		d := NewPlantDetails(types.Plant{
			PsID:          1001,
			PsName:        "Home",
			PsLocation:    "Sydney",
			PsType:        5,
			PsFaultStatus: 3,
			OnlineStatus:  1,
			InstallDate:   "2021-03-04 10:11:12",
		}, DeviceListView{PsID: 1001})
		assert.Equal(t, map[string]string{
			"ID":        "1001",
			"Name":      "Home",
			"Location":  "Sydney",
			"Type":      "Residential Storage",
			"Status":    "Normal",
			"Online":    "Online",
			"Installed": "2021-03-04",
		}, rows(d))
		assert.Equal(t, "ID", d.Rows[0].Label)
		assert.Equal(t, "Installed", d.Rows[6].Label)
		assert.Equal(t, 1001, d.Devices.PsID)
	})

	t.Run("fault", func(t *testing.T) {
		d := NewPlantDetails(types.Plant{PsType: 99, PsFaultStatus: 2, OnlineStatus: 0}, DeviceListView{})
		r := rows(d)
		assert.Equal(t, "Unknown", r["Type"])
		assert.Equal(t, "Fault", r["Status"])
		assert.Equal(t, "Offline", r["Online"])
		assert.Equal(t, "-", r["Installed"])
	})
}

func TestInstalledDate(t *testing.T) {
	assert.Equal(t, "2021-03-04", InstalledDate("2021-03-04 00:00:00"))
	assert.Equal(t, "2021-03-04", InstalledDate("2021-03-04"))
	assert.Equal(t, "-", InstalledDate(""))
	assert.Equal(t, "-", InstalledDate(" 12:00"))
}

func TestDeviceView(t *testing.T) {
	v := NewDeviceView(types.PlantDevice{DeviceName: "Inverter 1", TypeName: "Inverter", DeviceType: 1, DevFaultStatus: 4, PsKey: "k"})
	assert.Equal(t, DeviceView{Name: "Inverter 1", TypeName: "Inverter", DeviceType: 1, PsKey: "k", Icon: "zap", Status: "Normal"}, v)

	v = NewDeviceView(types.PlantDevice{DeviceType: 2, DevFaultStatus: 1})
	assert.Equal(t, "box", v.Icon)
	assert.Equal(t, "Fault", v.Status)
}
