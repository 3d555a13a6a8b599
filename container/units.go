package container

import (
	"strconv"
	"strings"
)

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as pixels
	UnitPX
	UnitPT
	UnitMM
	UnitCM
	UnitIN
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) IsZero() bool { return l.Value == 0 }

// String formats the length with its original unit, e.g. "12pt".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// Px converts the length to device pixels at the density of win.
// 点数换算与 PtToPx 保持一致，其它物理单位先换算为英寸。
func (l Length) Px(win Window) int {
	switch l.Unit {
	case UnitPT:
		return PtToPx(int(l.Value+0.5), win)
	case UnitIN:
		return int(l.Value*windowDPI(win) + 0.5)
	case UnitMM:
		return int(l.Value/25.4*windowDPI(win) + 0.5)
	case UnitCM:
		return int(l.Value/2.54*windowDPI(win) + 0.5)
	default:
		return int(l.Value + 0.5)
	}
}

// ParseLength parses a length such as "12pt" or "16px" preserving its unit.
// Invalid input yields a zero length.
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}
