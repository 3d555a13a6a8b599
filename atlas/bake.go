package atlas

import (
	"math"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// BakedFont 保存字体在某一字号下的度量（像素）。
// Descent 沿用即时模式 GUI 的约定，为基线以下的负值。
type BakedFont struct {
	Size    float64
	Ascent  float64
	Descent float64
	LineGap float64
	XHeight float64 // 'x' 字形高度
	ChWidth float64 // '0' 的前进宽度
}

// bake 通过 HarfBuzz 整形提取行度量与 x/0 字形度量。字号非正时无法烘焙。
func (a *Atlas) bake(f *Font) *BakedFont {
	size := f.cfg.SizePixels
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil
	}
	zero := a.shape(f, []rune("0"), size)
	b := &BakedFont{
		Size:    size,
		Ascent:  math.Abs(fixedToFloat(zero.LineBounds.Ascent)),
		Descent: -math.Abs(fixedToFloat(zero.LineBounds.Descent)),
		LineGap: fixedToFloat(zero.LineBounds.Gap),
		ChWidth: fixedToFloat(zero.Advance),
	}
	x := a.shape(f, []rune("x"), size)
	if len(x.Glyphs) > 0 {
		b.XHeight = math.Abs(fixedToFloat(x.Glyphs[0].YBearing))
	}
	return b
}

// measure returns the shaped advance of a single line at the baked size.
func (a *Atlas) measure(f *Font, text string) float64 {
	if text == "" || f.baked == nil {
		return 0
	}
	out := a.shape(f, []rune(text), f.baked.Size)
	w := fixedToFloat(out.Advance)
	if w < 0 {
		// RTL 结果为负
		w = -w
	}
	return w
}

func (a *Atlas) shape(f *Font, runes []rune, size float64) shaping.Output {
	// font.Face 不是并发安全的，每次整形创建一个轻量实例
	face := font.NewFace(f.face)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      floatToFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	return a.shaper.Shape(input)
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64.0 }
