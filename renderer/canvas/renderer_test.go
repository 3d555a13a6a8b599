package canvasrenderer

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/imweb/atlas"
	"github.com/ByLCY/imweb/imdraw"
	"github.com/ByLCY/imweb/renderer"
)

func testFrame(t *testing.T) renderer.Frame {
	t.Helper()
	a, err := atlas.New(atlas.Options{})
	if err != nil {
		t.Fatalf("atlas.New: %v", err)
	}
	f, err := a.AddFontFromBytes(goregular.TTF, atlas.DefaultConfig(16))
	if err != nil {
		t.Fatalf("AddFontFromBytes: %v", err)
	}
	dl := imdraw.NewDrawList()
	dl.AddRectFilled(imdraw.Vec2{X: 0, Y: 0}, imdraw.Vec2{X: 40, Y: 20}, imdraw.ColorRGBA(255, 0, 0, 255))
	dl.AddCircleFilled(imdraw.Vec2{X: 60, Y: 30}, 10, imdraw.ColorRGBA(0, 0, 255, 255))
	dl.AddText(f, 16, imdraw.Vec2{X: 5, Y: 40}, imdraw.ColorRGBA(0, 0, 0, 255), "hello\nworld")
	return renderer.Frame{Width: 120, Height: 80, Title: "test", List: dl}
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer(Options{Format: FormatPDF})
	data, err := r.Render(testFrame(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewRenderer(Options{Format: FormatPNG, Scale: 2, Background: color.White})
	data, err := r.Render(testFrame(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() < 230 || b.Dx() > 250 || b.Dy() < 150 || b.Dy() > 170 {
		t.Fatalf("unexpected image size %dx%d for 120x80 at scale 2", b.Dx(), b.Dy())
	}
	// 左上角位于红色矩形内
	r8, g8, b8, _ := img.At(10, 10).RGBA()
	if r8>>8 < 200 || g8>>8 > 50 || b8>>8 > 50 {
		t.Fatalf("expected red pixel at (10,10), got %d,%d,%d", r8>>8, g8>>8, b8>>8)
	}
}

func TestRenderRejectsEmptyFrame(t *testing.T) {
	r := NewRenderer(Options{})
	if _, err := r.Render(renderer.Frame{Width: 10, Height: 10}); err == nil {
		t.Fatalf("expected error for nil draw list")
	}
	if _, err := r.Render(renderer.Frame{List: imdraw.NewDrawList()}); err == nil {
		t.Fatalf("expected error for zero-size frame")
	}
}

func TestFontFamilyCache(t *testing.T) {
	frame := testFrame(t)
	r := NewRenderer(Options{})
	if _, err := r.Render(frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := r.Render(frame); err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if len(r.fontFamilies) != 1 {
		t.Fatalf("expected one cached family, got %d", len(r.fontFamilies))
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PNG"); err != nil || f != FormatPNG {
		t.Fatalf("ParseFormat(PNG) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatPDF {
		t.Fatalf("empty format should default to pdf")
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
}
