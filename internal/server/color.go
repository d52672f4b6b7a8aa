package server

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a pixel value in several representations.
//
// Gray is set only for single channel images and holds the raw sample,
// which may exceed 255 for 16-bit images.
type ColorResult struct {
	Hex  string   `json:"hex"`            // Hex format "#RRGGBB"
	RGB  RGBColor `json:"rgb"`            // RGB components
	HSL  HSLColor `json:"hsl"`            // HSL representation
	Gray *uint32  `json:"gray,omitempty"` // Raw sample of gray images
}

// describeColor converts a pixel color to a ColorResult. Alpha is ignored;
// image pixels are always opaque.
func describeColor(c color.Color) ColorResult {
	cf, _ := colorful.MakeColor(c)
	r, g, b := cf.RGB255()
	h, s, l := cf.Hsl()

	result := ColorResult{
		Hex: strings.ToUpper(cf.Hex()),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
	switch v := c.(type) {
	case color.Gray:
		y := uint32(v.Y)
		result.Gray = &y
	case color.Gray16:
		y := uint32(v.Y)
		result.Gray = &y
	}
	return result
}

// parseHexColor parses a hex color string like "#FF0000" or "#F00".
// The leading '#' is optional.
func parseHexColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c, nil
}
