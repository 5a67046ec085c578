package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
)

const iconSize = 32

var (
	iconBackground = color.RGBA{80, 80, 80, 255}
	iconRed        = color.RGBA{220, 38, 38, 255}
	iconYellow     = color.RGBA{234, 179, 8, 255}
	iconGreen      = color.RGBA{22, 163, 74, 255}
)

// BadgeIcon renders a round battery gauge for percent in the icon format the
// current OS tray expects.
func BadgeIcon(percent int) ([]byte, error) {
	return badgeIcon(percent, runtime.GOOS)
}

func badgeIcon(percent int, goos string) ([]byte, error) {
	pngData, err := badgePNG(percent)
	if err != nil {
		return nil, err
	}
	// Windows trays only take ICO
	if goos == "windows" {
		return pngToICO(pngData, iconSize), nil
	}
	return pngData, nil
}

func badgeColor(percent int) color.RGBA {
	switch {
	case percent <= 20:
		return iconRed
	case percent <= 50:
		return iconYellow
	default:
		return iconGreen
	}
}

// badgeImage fills a circle clockwise from 12 o'clock in proportion to
// percent; the rest of the circle is grey and the corners are transparent.
func badgeImage(percent int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	fg := badgeColor(percent)

	c := float64(iconSize) / 2
	const radius = 15.0
	limit := float64(percent) / 100 * 2 * math.Pi

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) - c + 0.5
			dy := float64(y) - c + 0.5
			if math.Sqrt(dx*dx+dy*dy) > radius {
				continue
			}
			// atan2 is 0 at 3 o'clock; rotate so 12 o'clock is 0
			angle := math.Atan2(dy, dx) + math.Pi/2
			if angle < 0 {
				angle += 2 * math.Pi
			}
			if angle <= limit {
				img.Set(x, y, fg)
			} else {
				img.Set(x, y, iconBackground)
			}
		}
	}
	return img
}

func badgePNG(percent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, badgeImage(percent)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngToICO wraps PNG data in a single-image ICO container.
func pngToICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer

	// ICONDIR: reserved, type 1 (icon), one image
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})

	// ICONDIRENTRY
	buf.Write([]byte{byte(size), byte(size), 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))

	buf.Write(pngData)
	return buf.Bytes()
}
