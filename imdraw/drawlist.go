// Package imdraw records immediate-mode draw commands for one frame.
package imdraw

import (
	"math"

	"github.com/ByLCY/imweb/atlas"
)

// Color 是打包后的 32 位颜色，布局为 0xAABBGGRR。
type Color uint32

// ColorRGBA packs 8-bit channels into a Color.
func ColorRGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r))
}

func (c Color) R() uint8 { return uint8(c) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c >> 16) }
func (c Color) A() uint8 { return uint8(c >> 24) }

// Vec2 是绘制坐标（像素）。
type Vec2 struct {
	X, Y float64
}

// CmdKind identifies a recorded command.
type CmdKind int

const (
	CmdText CmdKind = iota
	CmdCircleFilled
	CmdRectFilled
)

func (k CmdKind) String() string {
	switch k {
	case CmdText:
		return "text"
	case CmdCircleFilled:
		return "circle-filled"
	case CmdRectFilled:
		return "rect-filled"
	default:
		return "unknown"
	}
}

// Cmd is one recorded draw command. Only the fields relevant to Kind are set.
type Cmd struct {
	Kind  CmdKind
	Color Color

	// text
	Font     *atlas.Font
	FontSize float64
	Pos      Vec2
	Text     string

	// circle
	Center Vec2
	Radius float64

	// rect
	Min, Max Vec2
}

// DrawList collects the commands of the current frame in submission order.
// A DrawList is not safe for concurrent use.
type DrawList struct {
	cmds []Cmd
}

// NewDrawList returns an empty draw list.
func NewDrawList() *DrawList { return &DrawList{} }

// AddText 追加文本命令；pos 为文本框左上角。
// 字体开启 PixelSnapH 时 x 坐标对齐到整像素。
func (dl *DrawList) AddText(font *atlas.Font, size float64, pos Vec2, col Color, text string) {
	if text == "" || col.A() == 0 {
		return
	}
	if font != nil && font.Config().PixelSnapH {
		pos.X = math.Floor(pos.X)
	}
	dl.cmds = append(dl.cmds, Cmd{
		Kind:     CmdText,
		Color:    col,
		Font:     font,
		FontSize: size,
		Pos:      pos,
		Text:     text,
	})
}

// AddCircleFilled 追加实心圆命令。半径非正或完全透明时忽略。
func (dl *DrawList) AddCircleFilled(center Vec2, radius float64, col Color) {
	if radius <= 0 || col.A() == 0 {
		return
	}
	dl.cmds = append(dl.cmds, Cmd{Kind: CmdCircleFilled, Color: col, Center: center, Radius: radius})
}

// AddRectFilled 追加实心矩形命令。
func (dl *DrawList) AddRectFilled(min, max Vec2, col Color) {
	if col.A() == 0 {
		return
	}
	dl.cmds = append(dl.cmds, Cmd{Kind: CmdRectFilled, Color: col, Min: min, Max: max})
}

// Len returns the number of recorded commands.
func (dl *DrawList) Len() int { return len(dl.cmds) }

// Commands returns the recorded commands. The slice must not be modified.
func (dl *DrawList) Commands() []Cmd { return dl.cmds }

// Reset clears the list for the next frame, keeping its capacity.
func (dl *DrawList) Reset() { dl.cmds = dl.cmds[:0] }
