package container

import (
	"fmt"
	"strings"
)

// FontHandle identifies a font created through CreateFont. The layout engine
// keeps it and passes it back on every text callback.
type FontHandle uint64

// InvalidFont 表示没有可用字体，文本既无法测量也无法绘制。
const InvalidFont FontHandle = 0

// FontStyle is the CSS font-style.
type FontStyle int

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

func (s FontStyle) String() string {
	switch s {
	case FontStyleItalic:
		return "italic"
	case FontStyleOblique:
		return "oblique"
	default:
		return "normal"
	}
}

// TextDecoration is a bit set of CSS text-decoration-line values.
type TextDecoration uint8

const (
	DecorationUnderline TextDecoration = 1 << iota
	DecorationOverline
	DecorationLineThrough
)

// FontDescription 是布局引擎请求的字体。
type FontDescription struct {
	Family          string // 逗号分隔的字体族列表，可为字体文件路径
	Size            int    // 像素
	Style           FontStyle
	Weight          int // 100..900，0 视为 400
	DecorationLine  TextDecoration
	DecorationColor WebColor
}

// Hash returns a key that identifies equivalent descriptions.
func (d FontDescription) Hash() string {
	weight := d.Weight
	if weight == 0 {
		weight = 400
	}
	return fmt.Sprintf("%s:%d:%s:%d:%d", d.Family, d.Size, d.Style, weight, d.DecorationLine)
}

// FontMetrics is filled once when the font is created and never updated.
type FontMetrics struct {
	FontSize   int
	Height     int
	Ascent     int
	Descent    int // 基线以下的距离，正值
	XHeight    int
	ChWidth    int
	SubShift   int
	SuperShift int
	DrawSpaces bool
}

// WebColor 为 8 位 RGBA。
type WebColor struct {
	Red, Green, Blue, Alpha uint8
}

// ParseWebColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseWebColor(s string) (WebColor, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	nibble := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}
	var vals []uint8
	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			v, ok := nibble(hex[i])
			if !ok {
				return WebColor{}, fmt.Errorf("颜色格式错误: %s", s)
			}
			vals = append(vals, v<<4|v)
		}
		vals = append(vals, 0xff)
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := nibble(hex[i])
			lo, ok2 := nibble(hex[i+1])
			if !ok1 || !ok2 {
				return WebColor{}, fmt.Errorf("颜色格式错误: %s", s)
			}
			vals = append(vals, hi<<4|lo)
		}
		if len(vals) == 3 {
			vals = append(vals, 0xff)
		}
	default:
		return WebColor{}, fmt.Errorf("颜色格式错误: %s", s)
	}
	return WebColor{Red: vals[0], Green: vals[1], Blue: vals[2], Alpha: vals[3]}, nil
}

// Position is a device-pixel rectangle supplied per call.
type Position struct {
	X, Y, Width, Height int
}

// Size is a device-pixel size.
type Size struct {
	Width, Height int
}

// ListStyleType is the CSS list-style-type of a marker.
type ListStyleType int

const (
	ListStyleNone ListStyleType = iota
	ListStyleCircle
	ListStyleDisc
	ListStyleSquare
	ListStyleArmenian
	ListStyleCJKIdeographic
	ListStyleDecimal
	ListStyleDecimalLeadingZero
	ListStyleGeorgian
	ListStyleHebrew
	ListStyleHiragana
	ListStyleHiraganaIroha
	ListStyleKatakana
	ListStyleKatakanaIroha
	ListStyleLowerAlpha
	ListStyleLowerGreek
	ListStyleLowerLatin
	ListStyleLowerRoman
	ListStyleUpperAlpha
	ListStyleUpperLatin
	ListStyleUpperRoman
)

var listStyleNames = []string{
	"none", "circle", "disc", "square", "armenian", "cjk-ideographic", "decimal",
	"decimal-leading-zero", "georgian", "hebrew", "hiragana", "hiragana-iroha", "katakana",
	"katakana-iroha", "lower-alpha", "lower-greek", "lower-latin", "lower-roman",
	"upper-alpha", "upper-latin", "upper-roman",
}

func (t ListStyleType) String() string {
	if t < 0 || int(t) >= len(listStyleNames) {
		return fmt.Sprintf("list-style-type(%d)", int(t))
	}
	return listStyleNames[t]
}

// ParseListStyleType maps a CSS keyword to a ListStyleType.
func ParseListStyleType(s string) (ListStyleType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range listStyleNames {
		if name == s {
			return ListStyleType(i), true
		}
	}
	return ListStyleNone, false
}

// ListMarker describes one list item marker.
type ListMarker struct {
	Image      string
	BaseURL    string
	MarkerType ListStyleType
	Color      WebColor
	Pos        Position
	Index      int
	Font       FontHandle
}

// BackgroundLayer is one CSS background layer.
type BackgroundLayer struct {
	BorderBox    Position
	BorderRadius BorderRadiuses
	ClipBox      Position
	OriginBox    Position
	Attachment   string
	Repeat       string
	IsRoot       bool
}

// ColorPoint is a gradient color stop; Offset is in [0, 1].
type ColorPoint struct {
	Offset float64
	Color  WebColor
}

// LinearGradient is a CSS linear-gradient.
type LinearGradient struct {
	StartX, StartY float64
	EndX, EndY     float64
	ColorPoints    []ColorPoint
}

// RadialGradient is a CSS radial-gradient.
type RadialGradient struct {
	CenterX, CenterY float64
	RadiusX, RadiusY float64
	ColorPoints      []ColorPoint
}

// ConicGradient is a CSS conic-gradient.
type ConicGradient struct {
	CenterX, CenterY float64
	Angle            float64
	ColorPoints      []ColorPoint
}

// Border is one side of a CSS border.
type Border struct {
	Width int
	Style string
	Color WebColor
}

// BorderRadiuses holds the corner radii of a box.
type BorderRadiuses struct {
	TopLeftX, TopLeftY         int
	TopRightX, TopRightY       int
	BottomRightX, BottomRightY int
	BottomLeftX, BottomLeftY   int
}

// Borders describes the four borders and radii of a box.
type Borders struct {
	Left, Top, Right, Bottom Border
	Radius                   BorderRadiuses
}

// MediaType is the CSS media type reported to the layout engine.
type MediaType int

const (
	MediaNone MediaType = iota
	MediaAll
	MediaScreen
	MediaPrint
)

// MediaFeatures 用于媒体查询求值。
type MediaFeatures struct {
	Type         MediaType
	Width        int
	Height       int
	DeviceWidth  int
	DeviceHeight int
	Color        int
	ColorIndex   int
	Monochrome   int
	Resolution   int // dpi
}

// MouseEvent is the kind of pointer event delivered to an element.
type MouseEvent int

const (
	MouseEventEnter MouseEvent = iota
	MouseEventLeave
)

// TextTransform is the CSS text-transform.
type TextTransform int

const (
	TextTransformNone TextTransform = iota
	TextTransformCapitalize
	TextTransformUppercase
	TextTransformLowercase
)

func (t TextTransform) String() string {
	switch t {
	case TextTransformCapitalize:
		return "capitalize"
	case TextTransformUppercase:
		return "uppercase"
	case TextTransformLowercase:
		return "lowercase"
	default:
		return "none"
	}
}

// Element is an element of the layout engine's document tree. The container
// never inspects it.
type Element interface {
	TagName() string
}

// Document is the layout engine's document. The container never inspects it.
type Document interface{}
