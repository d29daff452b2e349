package docx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	emuPerInch = 914400
	emuPerPt   = 12700
	emuPerTwip = 635
)

// Length is a distance in English Metric Units, the unit DrawingML uses.
// WordprocessingML stores most lengths in twips; conversion happens at the
// XML boundary.
type Length int64

func Inches(v float64) Length { return Length(math.Round(v * emuPerInch)) }
func Pt(v float64) Length     { return Length(math.Round(v * emuPerPt)) }
func Twips(v int64) Length    { return Length(v * emuPerTwip) }

func (l Length) Inches() float64 { return float64(l) / emuPerInch }
func (l Length) Pt() float64     { return float64(l) / emuPerPt }
func (l Length) Twips() int64    { return int64(math.Round(float64(l) / emuPerTwip)) }

// HalfPoints is the unit of w:sz.
func (l Length) HalfPoints() int64 { return int64(math.Round(float64(l) / (emuPerPt / 2))) }

func parseTwips(s string) (Length, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Length(math.Round(n * emuPerTwip)), true
}

func formatTwips(l Length) string {
	return strconv.FormatInt(l.Twips(), 10)
}

// RGBColor is a 24-bit color as stored in w:color/@w:val.
type RGBColor [3]uint8

func (c RGBColor) String() string {
	return fmt.Sprintf("%02X%02X%02X", c[0], c[1], c[2])
}

// ParseHexColor parses "RRGGBB", with or without a leading '#'.
func ParseHexColor(s string) (RGBColor, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGBColor{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q", s)
	}
	return RGBColor{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
