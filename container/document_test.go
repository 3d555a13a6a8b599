package container

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"github.com/ByLCY/imweb/atlas"
	"github.com/ByLCY/imweb/imdraw"
)

// recordingLogger 记录每个级别的日志，便于断言。
type recordingLogger struct {
	errs, logs, warns []string
}

func (r *recordingLogger) Err(msg string)  { r.errs = append(r.errs, msg) }
func (r *recordingLogger) Log(msg string)  { r.logs = append(r.logs, msg) }
func (r *recordingLogger) Warn(msg string) { r.warns = append(r.warns, msg) }

func newTestContainer(t *testing.T, opts ...Option) (*DocumentContainer, *atlas.Atlas, *recordingLogger) {
	t.Helper()
	a, err := atlas.New(atlas.Options{Fonts: map[string]atlas.Resource{"Body": {Bytes: goregular.TTF}}})
	if err != nil {
		t.Fatalf("atlas.New: %v", err)
	}
	logger := &recordingLogger{}
	opts = append([]Option{WithLogger(logger), WithFontSources(map[string]string{"Body": "built-in:Body"})}, opts...)
	return New(a, opts...), a, logger
}

func TestCreateFontPopulatesMetrics(t *testing.T) {
	c, a, logger := newTestContainer(t)
	h, fm := c.CreateFont(FontDescription{Family: "Body", Size: 16, Weight: 400}, nil)
	if h == InvalidFont {
		t.Fatalf("expected a valid handle, errors: %v", logger.errs)
	}
	if fm.FontSize != 16 {
		t.Fatalf("font size = %d, want 16", fm.FontSize)
	}
	f, ok := a.Font(uint64(h))
	if !ok {
		t.Fatalf("handle not registered in atlas")
	}
	baked := f.LastBaked()
	if want := int(math.Round(baked.Ascent - baked.Descent)); fm.Height != want {
		t.Fatalf("height = %d, want ascent-descent = %d", fm.Height, want)
	}
	if fm.Ascent <= 0 || fm.Descent <= 0 {
		t.Fatalf("ascent/descent must be positive: %d/%d", fm.Ascent, fm.Descent)
	}
	if abs(fm.Height-(fm.Ascent+fm.Descent)) > 1 {
		t.Fatalf("height %d inconsistent with ascent %d + descent %d", fm.Height, fm.Ascent, fm.Descent)
	}
	if fm.XHeight <= 0 || fm.XHeight >= fm.Ascent {
		t.Fatalf("x-height out of range: %d", fm.XHeight)
	}
	if fm.ChWidth <= 0 || !fm.DrawSpaces {
		t.Fatalf("unexpected metrics: %+v", fm)
	}
	if f.Config().OversampleH != 2 || f.Config().OversampleV != 2 || f.Config().PixelSnapH {
		t.Fatalf("unexpected font config: %+v", f.Config())
	}
	if len(logger.errs) != 0 {
		t.Fatalf("unexpected errors: %v", logger.errs)
	}
}

func TestCreateFontGenericFamilies(t *testing.T) {
	c, _, _ := newTestContainer(t)
	for _, family := range []string{"sans-serif", `"Nope", serif`, "monospace"} {
		h, _ := c.CreateFont(FontDescription{Family: family, Size: 14, Weight: 700, Style: FontStyleItalic}, nil)
		if h == InvalidFont {
			t.Fatalf("family %q should resolve to a built-in font", family)
		}
	}
}

func TestCreateFontMissingFile(t *testing.T) {
	c, a, logger := newTestContainer(t)
	missing := filepath.Join(t.TempDir(), "missing.ttf")
	h, fm := c.CreateFont(FontDescription{Family: missing, Size: 12}, nil)
	if h != InvalidFont {
		t.Fatalf("expected InvalidFont, got %d", h)
	}
	if fm != (FontMetrics{}) {
		t.Fatalf("metrics must stay zero on failure: %+v", fm)
	}
	if len(logger.errs) != 1 {
		t.Fatalf("expected exactly one error log, got %d: %v", len(logger.errs), logger.errs)
	}
	if len(a.Fonts()) != 0 {
		t.Fatalf("failed font must not stay registered")
	}
}

func TestCreateFontUnbakedReturnsInvalid(t *testing.T) {
	c, a, logger := newTestContainer(t)
	h, _ := c.CreateFont(FontDescription{Family: "Body", Size: 0}, nil)
	if h != InvalidFont {
		t.Fatalf("expected InvalidFont for an unbaked font, got %d", h)
	}
	if len(logger.errs) != 1 {
		t.Fatalf("expected one error log, got %v", logger.errs)
	}
	if len(a.Fonts()) != 0 {
		t.Fatalf("unbaked font must be removed from the atlas")
	}
}

func TestCreateFontFallback(t *testing.T) {
	c, _, logger := newTestContainer(t, WithFallbackFont("embed:go-regular"))
	if h, _ := c.CreateFont(FontDescription{Family: "Unknown Family", Size: 12}, nil); h == InvalidFont {
		t.Fatalf("fallback font should be used, errors: %v", logger.errs)
	}
}

func TestDeleteFont(t *testing.T) {
	c, a, _ := newTestContainer(t)
	h, _ := c.CreateFont(FontDescription{Family: "Body", Size: 12}, nil)
	c.DeleteFont(InvalidFont)
	c.DeleteFont(FontHandle(9999))
	if len(a.Fonts()) != 1 {
		t.Fatalf("invalid handles must be ignored")
	}
	c.DeleteFont(h)
	if len(a.Fonts()) != 0 {
		t.Fatalf("font not removed")
	}
	if w := c.TextWidth("abc", h); w != 0 {
		t.Fatalf("deleted font must measure 0, got %d", w)
	}
}

func TestTextWidth(t *testing.T) {
	c, a, _ := newTestContainer(t)
	h, fm := c.CreateFont(FontDescription{Family: "Body", Size: 16}, nil)

	if w := c.TextWidth("", h); w != 0 {
		t.Fatalf("empty text width = %d, want 0", w)
	}
	w := c.TextWidth("0000", h)
	if w <= 0 {
		t.Fatalf("expected positive width")
	}
	if abs(w-4*fm.ChWidth) > 4 {
		t.Fatalf("width %d inconsistent with four '0' advances (%d each)", w, fm.ChWidth)
	}
	if a.StackDepth() != 0 {
		t.Fatalf("font stack not restored, depth %d", a.StackDepth())
	}

	// 已经是当前字体时不再压栈
	release := a.PushFont(mustFont(t, a, h))
	if got := c.TextWidth("0000", h); got != w {
		t.Fatalf("width changed with active font: %d vs %d", got, w)
	}
	if a.StackDepth() != 1 {
		t.Fatalf("active font must not be pushed again")
	}
	release()
}

func TestDrawTextAppendsOneCommand(t *testing.T) {
	c, a, _ := newTestContainer(t)
	h, _ := c.CreateFont(FontDescription{Family: "Body", Size: 18}, nil)
	dl := imdraw.NewDrawList()
	c.DrawText(dl, "hello", h, WebColor{Red: 10, Green: 20, Blue: 30, Alpha: 255}, Position{X: 5, Y: 7})
	if dl.Len() != 1 {
		t.Fatalf("expected one command, got %d", dl.Len())
	}
	cmd := dl.Commands()[0]
	if cmd.Kind != imdraw.CmdText || cmd.Text != "hello" || cmd.FontSize != 18 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if cmd.Pos != (imdraw.Vec2{X: 5, Y: 7}) {
		t.Fatalf("unexpected position: %+v", cmd.Pos)
	}
	if cmd.Color != imdraw.ColorRGBA(10, 20, 30, 255) {
		t.Fatalf("unexpected color: %#x", uint32(cmd.Color))
	}
	if a.StackDepth() != 0 {
		t.Fatalf("font stack not restored")
	}

	c.DrawText(dl, "ignored", InvalidFont, WebColor{Alpha: 255}, Position{})
	if dl.Len() != 1 {
		t.Fatalf("invalid font must not draw")
	}
}

func TestPtToPxFallback(t *testing.T) {
	c, _, _ := newTestContainer(t)
	for pt := 0; pt <= 200; pt++ {
		want := int(math.Round(float64(pt) * 1.333))
		if got := c.PtToPx(pt); got != want {
			t.Fatalf("PtToPx(%d) = %d, want %d", pt, got, want)
		}
	}
}

func TestPtToPxWindowDensity(t *testing.T) {
	c, _, _ := newTestContainer(t, WithWindow(FixedDPI(144)))
	if got := c.PtToPx(12); got != 24 {
		t.Fatalf("PtToPx(12) at 144dpi = %d, want 24", got)
	}
	c, _, _ = newTestContainer(t, WithWindow(FixedDPI(0)))
	if got := c.PtToPx(3); got != 4 {
		t.Fatalf("window without density must use fallback, got %d", got)
	}
}

func TestDefaultFont(t *testing.T) {
	c, _, _ := newTestContainer(t)
	c.CreateFont(FontDescription{Family: "Body, sans-serif", Size: 15}, nil)
	c.CreateFont(FontDescription{Family: "monospace", Size: 30}, nil)
	if got := c.DefaultFontSize(); got != 15 {
		t.Fatalf("DefaultFontSize = %d, want 15", got)
	}
	if got := c.DefaultFontName(); got != "Body" {
		t.Fatalf("DefaultFontName = %q, want Body", got)
	}
}

func TestDrawListMarker(t *testing.T) {
	c, a, _ := newTestContainer(t)
	h, _ := c.CreateFont(FontDescription{Family: "Body", Size: 12}, nil)
	red := WebColor{Red: 255, Alpha: 255}

	cases := []struct {
		name       string
		typ        ListStyleType
		pos        Position
		wantKind   imdraw.CmdKind
		wantCenter imdraw.Vec2
		wantSize   float64
	}{
		{"disc small box", ListStyleDisc, Position{X: 10, Y: 10, Width: 8, Height: 9}, imdraw.CmdCircleFilled, imdraw.Vec2{X: 14, Y: 14}, 8},
		{"circle with margin", ListStyleCircle, Position{X: 0, Y: 0, Width: 10, Height: 12}, imdraw.CmdCircleFilled, imdraw.Vec2{X: 5, Y: 6}, 4},
		{"square", ListStyleSquare, Position{X: 0, Y: 0, Width: 6, Height: 6}, imdraw.CmdRectFilled, imdraw.Vec2{X: 3, Y: 3}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dl := imdraw.NewDrawList()
			c.DrawListMarker(dl, ListMarker{MarkerType: tc.typ, Pos: tc.pos, Color: red, Font: h})
			if dl.Len() != 1 {
				t.Fatalf("expected exactly one command, got %d", dl.Len())
			}
			cmd := dl.Commands()[0]
			if cmd.Kind != tc.wantKind {
				t.Fatalf("kind = %s, want %s", cmd.Kind, tc.wantKind)
			}
			switch cmd.Kind {
			case imdraw.CmdCircleFilled:
				if cmd.Center != tc.wantCenter || cmd.Radius != tc.wantSize/2 {
					t.Fatalf("circle center=%+v radius=%g", cmd.Center, cmd.Radius)
				}
			case imdraw.CmdRectFilled:
				if cmd.Max.X-cmd.Min.X != tc.wantSize || cmd.Max.Y-cmd.Min.Y != tc.wantSize {
					t.Fatalf("square %+v-%+v, want side %g", cmd.Min, cmd.Max, tc.wantSize)
				}
			}
			if a.StackDepth() != 0 {
				t.Fatalf("marker font not released")
			}
		})
	}
}

func TestDrawListMarkerUnsupportedPanics(t *testing.T) {
	c, a, logger := newTestContainer(t)
	h, _ := c.CreateFont(FontDescription{Family: "Body", Size: 12}, nil)
	dl := imdraw.NewDrawList()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrMarkerOutOfRange) {
			t.Fatalf("expected panic with ErrMarkerOutOfRange, got %v", r)
		}
		if dl.Len() != 0 {
			t.Fatalf("aborted marker must not draw")
		}
		if a.StackDepth() != 0 {
			t.Fatalf("font guard must be released on the panic path")
		}
		if len(logger.errs) != 1 {
			t.Fatalf("expected one error log, got %v", logger.errs)
		}
	}()
	c.DrawListMarker(dl, ListMarker{MarkerType: ListStyleDecimal, Pos: Position{Width: 8, Height: 8}, Font: h, Color: WebColor{Alpha: 255}})
}

func TestInertHooksTraceWithoutDrawing(t *testing.T) {
	c, _, logger := newTestContainer(t)
	dl := imdraw.NewDrawList()
	layer := BackgroundLayer{BorderBox: Position{Width: 100, Height: 100}}

	before := len(logger.logs)
	c.DrawImage(dl, layer, "a.png", "http://example.com/")
	c.DrawSolidFill(dl, layer, WebColor{Red: 1, Alpha: 255})
	c.DrawLinearGradient(dl, layer, LinearGradient{})
	c.DrawRadialGradient(dl, layer, RadialGradient{})
	c.DrawConicGradient(dl, layer, ConicGradient{})
	c.DrawBorders(dl, Borders{Top: Border{Width: 2, Style: "solid", Color: WebColor{Alpha: 255}}}, Position{Width: 10, Height: 10}, false)

	if dl.Len() != 0 {
		t.Fatalf("inert hooks must not touch the draw list, got %d commands", dl.Len())
	}
	if got := len(logger.logs) - before; got != 6 {
		t.Fatalf("expected 6 trace logs, got %d", got)
	}
	if !strings.Contains(logger.logs[before], "a.png") || !strings.Contains(logger.logs[before], "http://example.com/") {
		t.Fatalf("DrawImage trace must carry url and base url: %q", logger.logs[before])
	}
}

func TestInertHookDefaults(t *testing.T) {
	c, _, _ := newTestContainer(t)
	if c.OnElementClick(nil) {
		t.Fatalf("element click must not be handled")
	}
	if el := c.CreateElement("div", nil, nil); el != nil {
		t.Fatalf("CreateElement must return nil")
	}
	if vp := c.Viewport(); vp != (Position{}) {
		t.Fatalf("viewport must be zero, got %+v", vp)
	}
	if mf := c.MediaFeatures(); mf != (MediaFeatures{}) {
		t.Fatalf("media features must be zero")
	}
	if lang, culture := c.Language(); lang != "" || culture != "" {
		t.Fatalf("language must be empty")
	}
	if got := c.TransformText("Hello", TextTransformUppercase); got != "Hello" {
		t.Fatalf("text must be unchanged, got %q", got)
	}
	if css, base := c.ImportCSS("a.css", "http://x/"); css != "" || base != "http://x/" {
		t.Fatalf("unexpected import result %q %q", css, base)
	}
	if sz := c.ImageSize("a.png", ""); sz != (Size{}) {
		t.Fatalf("image size must be zero")
	}
	if names := c.Hooks().Installed(); len(names) != 0 {
		t.Fatalf("no hooks expected, got %v", names)
	}
}

type recordingTextures struct{ loaded []string }

func (r *recordingTextures) Load(src, baseURL string) { r.loaded = append(r.loaded, baseURL+src) }

func TestInstalledHooks(t *testing.T) {
	tex := &recordingTextures{}
	vp := Position{Width: 800, Height: 600}
	c, _, _ := newTestContainer(t,
		WithHooks(Hooks{
			TransformText: TextTransformer(language.English),
			Viewport:      StaticViewport(vp),
			MediaFeatures: WindowMedia(FixedDPI(120), vp),
			Language:      StaticLanguage(language.MustParse("en-GB")),
		}),
		WithTextureHandler(tex),
	)

	if got := c.TransformText("hello world", TextTransformUppercase); got != "HELLO WORLD" {
		t.Fatalf("uppercase = %q", got)
	}
	if got := c.TransformText("HeLLo", TextTransformLowercase); got != "hello" {
		t.Fatalf("lowercase = %q", got)
	}
	if got := c.TransformText("hello wORLD", TextTransformCapitalize); got != "Hello WORLD" {
		t.Fatalf("capitalize = %q", got)
	}
	if got := c.Viewport(); got != vp {
		t.Fatalf("viewport = %+v", got)
	}
	mf := c.MediaFeatures()
	if mf.Type != MediaScreen || mf.Width != 800 || mf.Resolution != 120 {
		t.Fatalf("media features = %+v", mf)
	}
	if lang, culture := c.Language(); lang != "en" || culture != "en-GB" {
		t.Fatalf("language = %q %q", lang, culture)
	}
	c.LoadImage("logo.png", "http://x/", true)
	if len(tex.loaded) != 1 || tex.loaded[0] != "http://x/logo.png" {
		t.Fatalf("texture handler not called: %v", tex.loaded)
	}
	want := []string{"LoadImage", "TransformText", "Viewport", "MediaFeatures", "Language"}
	if got := c.Hooks().Installed(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("installed = %v, want %v", got, want)
	}
}

func TestParseWebColor(t *testing.T) {
	cases := map[string]WebColor{
		"#fff":      {255, 255, 255, 255},
		"#0F62FE":   {0x0f, 0x62, 0xfe, 255},
		"#11223344": {0x11, 0x22, 0x33, 0x44},
	}
	for in, want := range cases {
		got, err := ParseWebColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseWebColor(%q) = %+v, %v; want %+v", in, got, err, want)
		}
	}
	if _, err := ParseWebColor("#12"); err == nil {
		t.Fatalf("expected error for short color")
	}
}

func TestLengthPx(t *testing.T) {
	if got := ParseLength("12pt").Px(FixedDPI(96)); got != 16 {
		t.Fatalf("12pt at 96dpi = %d, want 16", got)
	}
	if got := ParseLength("1in").Px(FixedDPI(150)); got != 150 {
		t.Fatalf("1in at 150dpi = %d", got)
	}
	if got := ParseLength("14").Px(nil); got != 14 {
		t.Fatalf("unit-less length = %d", got)
	}
	if l := ParseLength("abc"); !l.IsZero() {
		t.Fatalf("invalid length must be zero")
	}
}

func mustFont(t *testing.T, a *atlas.Atlas, h FontHandle) *atlas.Font {
	t.Helper()
	f, ok := a.Font(uint64(h))
	if !ok {
		t.Fatalf("font %d not found", h)
	}
	return f
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestStaticLanguageOnlyReportsExplicitRegion(t *testing.T) {
	cases := []struct {
		tag           string
		lang, culture string
	}{
		{"en", "en", ""},
		{"de", "de", ""},
		{"en-GB", "en", "en-GB"},
		{"zh-Hans-CN", "zh", "zh-CN"},
	}
	for _, tc := range cases {
		lang, culture := StaticLanguage(language.MustParse(tc.tag))()
		if lang != tc.lang || culture != tc.culture {
			t.Fatalf("%s: got %q %q, want %q %q", tc.tag, lang, culture, tc.lang, tc.culture)
		}
	}
}

func TestLengthString(t *testing.T) {
	cases := map[string]string{"12pt": "12pt", "1.5in": "1.5in", "16": "16", "2.54CM": "2.54cm"}
	for in, want := range cases {
		if got := ParseLength(in).String(); got != want {
			t.Fatalf("ParseLength(%q).String() = %q, want %q", in, got, want)
		}
	}
}
