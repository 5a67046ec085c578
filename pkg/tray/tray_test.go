package tray

import (
	"bytes"
	"context"
	"encoding/binary"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdateStatus", func(t *testing.T) {
		s := NewStatus(1)
		s.goos = "linux"
		s.UpdateStatus(ctx, 45, "Battery: 45%")

		assert.Equal(t, "Battery: 45%", <-s.Titles())
		icon := <-s.Icons()
		_, err := png.Decode(bytes.NewReader(icon))
		require.NoError(t, err)
	})

	t.Run("full channels drop updates", func(t *testing.T) {
		s := NewStatus(1)
		s.UpdateStatus(ctx, 10, "Battery: 10%")
		s.UpdateStatus(ctx, 90, "Battery: 90%")

		assert.Equal(t, "Battery: 10%", <-s.Titles())
		assert.Len(t, s.Titles(), 0)
		<-s.Icons()
		assert.Len(t, s.Icons(), 0)
	})

	t.Run("unbuffered never blocks", func(t *testing.T) {
		s := NewStatus(0)
		s.UpdateStatus(ctx, 50, "Battery: 50%")
		s.UpdateTitle(ctx, "Sungrow iSolarCloud")
	})
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, iconRed, badgeColor(0))
	assert.Equal(t, iconRed, badgeColor(20))
	assert.Equal(t, iconYellow, badgeColor(21))
	assert.Equal(t, iconYellow, badgeColor(50))
	assert.Equal(t, iconGreen, badgeColor(51))
	assert.Equal(t, iconGreen, badgeColor(100))
}

func TestBadgeImage(t *testing.T) {
	rgba := func(c color.Color) color.RGBA {
		return color.RGBAModel.Convert(c).(color.RGBA)
	}

	t.Run("empty", func(t *testing.T) {
		img := badgeImage(0)
		assert.Equal(t, iconBackground, rgba(img.At(16, 16)))
		assert.Equal(t, iconBackground, rgba(img.At(16, 2)))
	})

	t.Run("full", func(t *testing.T) {
		img := badgeImage(100)
		assert.Equal(t, iconGreen, rgba(img.At(16, 16)))
		assert.Equal(t, iconGreen, rgba(img.At(3, 16)))
		assert.Equal(t, iconGreen, rgba(img.At(16, 29)))
	})

	t.Run("half fills the right side", func(t *testing.T) {
		img := badgeImage(50)
		// right of center, upper and lower quadrants
		assert.Equal(t, iconYellow, rgba(img.At(24, 8)))
		assert.Equal(t, iconYellow, rgba(img.At(24, 24)))
		// left half stays grey
		assert.Equal(t, iconBackground, rgba(img.At(8, 8)))
		assert.Equal(t, iconBackground, rgba(img.At(8, 24)))
	})

	t.Run("corners are transparent", func(t *testing.T) {
		img := badgeImage(100)
		assert.Equal(t, color.RGBA{}, rgba(img.At(0, 0)))
		assert.Equal(t, color.RGBA{}, rgba(img.At(31, 31)))
	})
}

func TestBadgeIconICO(t *testing.T) {
	icon, err := badgeIcon(75, "windows")
	require.NoError(t, err)
	require.Greater(t, len(icon), 22)

	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(icon[0:2]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(icon[2:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(icon[4:6]))
	assert.Equal(t, byte(32), icon[6])
	assert.Equal(t, byte(32), icon[7])
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16(icon[12:14]))
	assert.Equal(t, uint32(len(icon)-22), binary.LittleEndian.Uint32(icon[14:18]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(icon[18:22]))

	_, err = png.Decode(bytes.NewReader(icon[22:]))
	require.NoError(t, err)

	plain, err := badgeIcon(75, "darwin")
	require.NoError(t, err)
	assert.Equal(t, plain, icon[22:])
}
