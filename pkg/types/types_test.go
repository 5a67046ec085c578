package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCredentialsResumable(t *testing.T) {
	now := time.Now()

	t.Run("expired token", func(t *testing.T) {
		c := &Credentials{AccessToken: "tok", TokenExpiry: now.UnixMilli() - 1}
		assert.False(t, c.Resumable(now))
	})

	t.Run("expiry equal to now", func(t *testing.T) {
		c := &Credentials{AccessToken: "tok", TokenExpiry: now.UnixMilli()}
		assert.False(t, c.Resumable(now))
	})

	t.Run("valid token", func(t *testing.T) {
		c := &Credentials{AccessToken: "tok", TokenExpiry: now.UnixMilli() + 3600000}
		assert.True(t, c.Resumable(now))
	})

	t.Run("missing access token", func(t *testing.T) {
		c := &Credentials{TokenExpiry: now.UnixMilli() + 3600000}
		assert.False(t, c.Resumable(now))
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := &Credentials{AccessToken: "tok"}
		assert.False(t, c.Resumable(now))
	})

	t.Run("nil", func(t *testing.T) {
		var c *Credentials
		assert.False(t, c.Resumable(now))
	})
}

func TestCredentialsJSON(t *testing.T) {
	c := Credentials{AppKey: "k", SecretKey: "s", AuthURL: DefaultAuthURL}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appKey":"k","secretKey":"s","authUrl":"`+DefaultAuthURL+`"}`, string(b))
}

func TestCredentialsToken(t *testing.T) {
	expiry := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	c := Credentials{AccessToken: "a", RefreshToken: "r", TokenExpiry: expiry.UnixMilli()}

	tok := c.Token()
	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))
	assert.True(t, tok.Valid())

	updated := c.WithToken(&oauth2.Token{AccessToken: "b", Expiry: expiry.Add(time.Hour)})
	assert.Equal(t, "b", updated.AccessToken)
	assert.Equal(t, "r", updated.RefreshToken, "refresh token should be kept when not rotated")
	assert.Equal(t, expiry.Add(time.Hour).UnixMilli(), updated.TokenExpiry)
}

func TestCredentialsGateway(t *testing.T) {
	assert.Equal(t, DefaultGatewayURL, Credentials{}.Gateway())
	assert.Equal(t, "https://gateway.isolarcloud.eu", Credentials{GatewayURL: "https://gateway.isolarcloud.eu"}.Gateway())
}

func TestPlantType(t *testing.T) {
	cases := map[int]string{
		1:  "Utility Plant",
		3:  "Distributed PV",
		4:  "Residential PV",
		5:  "Residential Storage",
		6:  "Village Plant",
		7:  "Dist. Storage",
		8:  "Poverty Alleviation",
		9:  "Wind Power",
		12: "C&I Storage",
		0:  "Unknown",
		2:  "Unknown",
		99: "Unknown",
	}
	for code, want := range cases {
		assert.Equal(t, want, PlantType(code).String(), "ps_type %d", code)
	}
}

func TestDeviceType(t *testing.T) {
	assert.Equal(t, "battery", DeviceTypeBattery.Icon())
	assert.Equal(t, "zap", DeviceTypeInverter.Icon())
	assert.Equal(t, "sun", DeviceTypeMicroinverter.Icon())
	assert.Equal(t, DeviceIconDefault, DeviceType(2).Icon())
	assert.Equal(t, DeviceIconDefault, DeviceType(1000).Icon())
	assert.Equal(t, "Battery", DeviceTypeBattery.String())
}

func TestPlantDeviceKey(t *testing.T) {
	assert.Equal(t, "123", PlantDevice{UUID: 123, DeviceSN: "SN"}.Key())
	assert.Equal(t, "SN", PlantDevice{DeviceSN: "SN"}.Key())
	assert.True(t, PlantDevice{DeviceType: 43}.IsBattery())
	assert.False(t, PlantDevice{DeviceType: 1}.IsBattery())
}

func TestDevicePoint(t *testing.T) {
	assert.Equal(t, "p58604", PointKey(PointBatterySOC))
	p := DevicePoint{"p58604": "0.4523"}
	v, ok := p.Value(PointBatterySOC)
	assert.True(t, ok)
	assert.Equal(t, "0.4523", v)
	_, ok = p.Value(1)
	assert.False(t, ok)
}

func TestGateways(t *testing.T) {
	opts := GatewayOptions()
	require.Len(t, opts, 4)
	assert.Equal(t, GatewayOption{Name: GatewayAustralia, URL: "https://augateway.isolarcloud.com"}, opts[0])
	assert.Equal(t, GatewayOption{Name: GatewayChina, URL: "https://gateway.isolarcloud.com"}, opts[1])
	assert.Equal(t, GatewayOption{Name: GatewayInternational, URL: "https://gateway.isolarcloud.com.hk"}, opts[2])
	assert.Equal(t, GatewayOption{Name: GatewayEurope, URL: "https://gateway.isolarcloud.eu"}, opts[3])

	_, err := Gateway("Mars").URL()
	assert.Error(t, err)

	g, ok := GatewayForURL("https://gateway.isolarcloud.eu")
	assert.True(t, ok)
	assert.Equal(t, GatewayEurope, g)
}
