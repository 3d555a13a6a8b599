package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/imweb/atlas"
	"github.com/ByLCY/imweb/fonts"
	"github.com/ByLCY/imweb/imdraw"
	"github.com/ByLCY/imweb/renderer"
)

// 单位换算：绘制命令以 96dpi 像素为单位，canvas 以毫米为单位，字体以点为单位。
const (
	mmPerPx = 25.4 / 96.0
	ptToMm  = 0.352777
	mmToPt  = 1.0 / ptToMm
)

// Format selects the output file type.
type Format int

const (
	FormatPDF Format = iota
	FormatPNG
)

// ParseFormat maps "pdf" / "png" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	default:
		return FormatPDF, fmt.Errorf("不支持的输出格式 %q", s)
	}
}

// Options configures the canvas renderer.
type Options struct {
	Format     Format
	Scale      float64     // PNG 输出时每个像素放大的倍数，<=0 时为 1
	Background color.Color // nil 表示透明背景
}

// Renderer draws frames via github.com/tdewolff/canvas.
type Renderer struct {
	format     Format
	scale      float64
	background color.Color

	fontMu         sync.Mutex
	fontFamilies   map[uint64]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{
		format:       opts.Format,
		scale:        scale,
		background:   opts.Background,
		fontFamilies: map[uint64]*canvas.FontFamily{},
	}
}

// Render draws the frame's commands in order and encodes the result.
func (r *Renderer) Render(frame renderer.Frame) ([]byte, error) {
	if frame.List == nil {
		return nil, fmt.Errorf("渲染帧为空")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("帧尺寸无效: %gx%g", frame.Width, frame.Height)
	}

	width, height := frame.Width*mmPerPx, frame.Height*mmPerPx
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与绘制命令保持左上角为原点

	if r.background != nil {
		ctx.SetFillColor(r.background)
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	}
	if err := r.drawList(ctx, frame.List); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.format {
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(r.scale/mmPerPx), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		writer := pdf.New(&buf, width, height, nil)
		writer.SetInfo(frame.Title, "", "", "", "imweb")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawList(ctx *canvas.Context, dl *imdraw.DrawList) error {
	for i, cmd := range dl.Commands() {
		col := colorFromPacked(cmd.Color)
		switch cmd.Kind {
		case imdraw.CmdText:
			if err := r.drawText(ctx, cmd, col); err != nil {
				return fmt.Errorf("绘制命令 %d: %w", i, err)
			}
		case imdraw.CmdCircleFilled:
			ctx.SetFillColor(col)
			ctx.SetStrokeColor(canvas.Transparent)
			ctx.DrawPath(cmd.Center.X*mmPerPx, cmd.Center.Y*mmPerPx, canvas.Circle(cmd.Radius*mmPerPx))
		case imdraw.CmdRectFilled:
			ctx.SetFillColor(col)
			ctx.SetStrokeColor(canvas.Transparent)
			w := (cmd.Max.X - cmd.Min.X) * mmPerPx
			h := (cmd.Max.Y - cmd.Min.Y) * mmPerPx
			ctx.DrawPath(cmd.Min.X*mmPerPx, cmd.Min.Y*mmPerPx, canvas.Rectangle(w, h))
		default:
			return fmt.Errorf("未知绘制命令 %s", cmd.Kind)
		}
	}
	return nil
}

// drawText 绘制一行文本；命令坐标为文本框左上角，基线 = 顶部 + Ascent。
func (r *Renderer) drawText(ctx *canvas.Context, cmd imdraw.Cmd, col color.Color) error {
	family, err := r.ensureFontFamily(cmd.Font)
	if err != nil {
		return err
	}
	face := family.Face(cmd.FontSize*mmPerPx*mmToPt, col, canvas.FontRegular, canvas.FontNormal)
	x := cmd.Pos.X * mmPerPx
	top := cmd.Pos.Y * mmPerPx
	ascent := face.Metrics().Ascent
	for i, line := range strings.Split(cmd.Text, "\n") {
		baseline := top + ascent + float64(i)*cmd.FontSize*mmPerPx
		ctx.DrawText(x, baseline, canvas.NewTextLine(face, line, canvas.Left))
	}
	return nil
}

func (r *Renderer) ensureFontFamily(f *atlas.Font) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if f == nil {
		return r.fallback()
	}
	if family, ok := r.fontFamilies[f.ID()]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(f.DebugName())
	if err := family.LoadFont(f.Data(), 0, canvas.FontRegular); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", f.DebugName(), err)
		}
		r.fontFamilies[f.ID()] = fallback
		return fallback, nil
	}
	r.fontFamilies[f.ID()] = family
	return family, nil
}

// fallback 需在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("imweb-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func colorFromPacked(c imdraw.Color) color.Color {
	return canvas.RGBA(float64(c.R())/255.0, float64(c.G())/255.0, float64(c.B())/255.0, float64(c.A())/255.0)
}
