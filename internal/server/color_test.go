package server

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		r, g, b uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, false},
		{"00ff00", 0, 255, 0, false},
		{"#00F", 0, 0, 255, false},
		{"#336699", 0x33, 0x66, 0x99, false},
		{"", 0, 0, 0, true},
		{"#GG0000", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := parseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseHexColor(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHexColor(%q) failed: %v", tt.input, err)
			}
			r, g, b := c.RGB255()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("parseHexColor(%q): got (%d,%d,%d), want (%d,%d,%d)", tt.input, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestDescribeColor(t *testing.T) {
	tests := []struct {
		name    string
		c       color.Color
		hex     string
		h, s, l int
	}{
		{"red", color.RGBA{255, 0, 0, 255}, "#FF0000", 0, 100, 50},
		{"green", color.RGBA{0, 255, 0, 255}, "#00FF00", 120, 100, 50},
		{"white", color.RGBA{255, 255, 255, 255}, "#FFFFFF", 0, 0, 100},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeColor(tt.c)
			if got.Hex != tt.hex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.hex)
			}
			if got.HSL.H != tt.h || got.HSL.S != tt.s || got.HSL.L != tt.l {
				t.Errorf("HSL: got %+v, want (%d,%d,%d)", got.HSL, tt.h, tt.s, tt.l)
			}
			if got.Gray != nil {
				t.Error("Gray should be unset for color pixels")
			}
		})
	}
}

func TestDescribeColor_Gray(t *testing.T) {
	got := describeColor(color.Gray{Y: 0x80})
	if got.Gray == nil || *got.Gray != 0x80 {
		t.Errorf("Gray: got %v, want 128", got.Gray)
	}
	if got.RGB != (RGBColor{0x80, 0x80, 0x80}) {
		t.Errorf("RGB: got %+v", got.RGB)
	}

	got = describeColor(color.Gray16{Y: 0x1234})
	if got.Gray == nil || *got.Gray != 0x1234 {
		t.Errorf("Gray16: got %v, want %d", got.Gray, 0x1234)
	}
}
