package container

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/imweb/atlas"
	"github.com/ByLCY/imweb/fonts"
	"github.com/ByLCY/imweb/imdraw"
)

// ErrMarkerOutOfRange is the panic value (wrapped) raised by DrawListMarker for
// marker types it cannot draw.
var ErrMarkerOutOfRange = errors.New("list-style-type out of range")

// DocumentContainer implements Container on top of an atlas.Atlas.
// It borrows the atlas and the window and holds no per-document state.
type DocumentContainer struct {
	atlas    *atlas.Atlas
	logger   Logger
	window   Window
	sources  map[string]string
	fallback string
	hooks    Hooks
}

var _ Container = (*DocumentContainer)(nil)

// Option configures a DocumentContainer.
type Option func(*DocumentContainer)

// WithLogger sets the diagnostics sink.
func WithLogger(l Logger) Option {
	return func(d *DocumentContainer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithWindow sets the window used for pixel density queries.
func WithWindow(w Window) Option {
	return func(d *DocumentContainer) { d.window = w }
}

// WithFontSources maps font family names to atlas sources
// (built-in:<name>, embed:<name> or a file path).
func WithFontSources(sources map[string]string) Option {
	return func(d *DocumentContainer) {
		for family, src := range sources {
			d.sources[strings.ToLower(strings.TrimSpace(family))] = src
		}
	}
}

// WithFallbackFont sets the source used when no requested family resolves.
func WithFallbackFont(src string) Option {
	return func(d *DocumentContainer) { d.fallback = src }
}

// WithHooks installs the capability table for the optional callbacks.
func WithHooks(h Hooks) Option {
	return func(d *DocumentContainer) { d.hooks = h }
}

// WithTextureHandler routes LoadImage to th.
func WithTextureHandler(th TextureHandler) Option {
	return func(d *DocumentContainer) {
		if th != nil {
			d.hooks.LoadImage = TextureLoader(th)
		}
	}
}

// New creates a container drawing with the fonts of a.
func New(a *atlas.Atlas, opts ...Option) *DocumentContainer {
	d := &DocumentContainer{
		atlas:   a,
		logger:  NopLogger{},
		sources: map[string]string{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Hooks returns the installed capability table.
func (d *DocumentContainer) Hooks() Hooks { return d.hooks }

func (d *DocumentContainer) trace(format string, args ...any) {
	d.logger.Log("DocumentContainer." + fmt.Sprintf(format, args...))
}

func (d *DocumentContainer) font(h FontHandle) (*atlas.Font, bool) {
	if h == InvalidFont {
		return nil, false
	}
	return d.atlas.Font(uint64(h))
}

// CreateFont loads and bakes the font described by descr. On failure it logs
// one error and returns InvalidFont with zero metrics.
func (d *DocumentContainer) CreateFont(descr FontDescription, _ Document) (FontHandle, FontMetrics) {
	d.trace("CreateFont(%s)", descr.Hash())

	src := d.resolveFontSource(descr)
	cfg := atlas.FontConfig{
		Name:        primaryFamily(descr.Family),
		SizePixels:  float64(descr.Size),
		OversampleH: 2,
		OversampleV: 2,
		PixelSnapH:  false,
	}
	f, err := d.atlas.AddFont(src, cfg)
	if err != nil {
		d.logger.Err(fmt.Sprintf("加载字体 %q 失败: %v", src, err))
		return InvalidFont, FontMetrics{}
	}
	baked := f.LastBaked()
	if baked == nil {
		d.atlas.RemoveFont(f.ID())
		d.logger.Err(fmt.Sprintf("字体 %q 尚未烘焙 (size %d)", src, descr.Size))
		return InvalidFont, FontMetrics{}
	}

	fm := FontMetrics{
		FontSize: descr.Size,
		Ascent:   roundPx(baked.Ascent),
		Descent:  roundPx(-baked.Descent),
		// 请求字号按上升/下降部的实际跨度修正后的行高
		Height:     roundPx(baked.Ascent - baked.Descent),
		XHeight:    roundPx(baked.XHeight),
		ChWidth:    roundPx(baked.ChWidth),
		SubShift:   roundPx(float64(descr.Size) / 5),
		SuperShift: roundPx(float64(descr.Size) / 3),
		DrawSpaces: true,
	}
	return FontHandle(f.ID()), fm
}

// DeleteFont releases the font. Unknown handles are ignored.
func (d *DocumentContainer) DeleteFont(h FontHandle) {
	d.trace("DeleteFont(%d)", h)
	if h == InvalidFont {
		return
	}
	d.atlas.RemoveFont(uint64(h))
}

// TextWidth returns the rendered width of text in whole pixels.
func (d *DocumentContainer) TextWidth(text string, h FontHandle) int {
	d.trace("TextWidth(%d)", h)
	f, ok := d.font(h)
	if !ok || text == "" {
		return 0
	}
	if d.atlas.CurrentFont() != f {
		release := d.atlas.PushFont(f)
		defer release()
	}
	w, _ := d.atlas.CalcTextSize(text)
	if w <= 0 {
		return 0
	}
	return int(w)
}

// DrawText appends one text command at pos.
func (d *DocumentContainer) DrawText(hdc *imdraw.DrawList, text string, h FontHandle, color WebColor, pos Position) {
	d.trace("DrawText(%d)", h)
	f, ok := d.font(h)
	if !ok {
		d.logger.Warn(fmt.Sprintf("DrawText: 无效字体句柄 %d", h))
		return
	}
	if hdc == nil {
		return
	}
	release := d.atlas.PushFont(f)
	defer release()
	hdc.AddText(f, f.LastBaked().Size, imdraw.Vec2{X: float64(pos.X), Y: float64(pos.Y)}, packColor(color), text)
}

// PtToPx converts points to pixels at the window's density.
func (d *DocumentContainer) PtToPx(pt int) int {
	return PtToPx(pt, d.window)
}

// DefaultFontSize returns the size of the first font in the atlas.
// At least one baked font must be registered.
func (d *DocumentContainer) DefaultFontSize() int {
	return int(d.atlas.Fonts()[0].LastBaked().Size)
}

// DefaultFontName returns the name of the first font in the atlas.
// At least one font must be registered.
func (d *DocumentContainer) DefaultFontName() string {
	return d.atlas.Fonts()[0].DebugName()
}

// DrawListMarker draws a disc, circle or square marker centered in the
// marker box. Other marker types are a contract violation: DrawListMarker
// logs an error and panics with an error wrapping ErrMarkerOutOfRange.
func (d *DocumentContainer) DrawListMarker(hdc *imdraw.DrawList, marker ListMarker) {
	d.trace("DrawListMarker(type: %s)", marker.MarkerType)

	if f, ok := d.font(marker.Font); ok {
		release := d.atlas.PushFont(f)
		defer release()
	}

	pos := marker.Pos
	topMargin := pos.Height / 3
	if topMargin < 4 {
		topMargin = 0
	}
	drawX := pos.X + pos.Width/2
	drawY := pos.Y + topMargin + (pos.Height-topMargin*2)/2
	drawSize := min(pos.Width, pos.Height-topMargin*2)

	col := packColor(marker.Color)
	center := imdraw.Vec2{X: float64(drawX), Y: float64(drawY)}
	half := 0.5 * float64(drawSize)

	switch marker.MarkerType {
	case ListStyleCircle, ListStyleDisc:
		if hdc != nil {
			hdc.AddCircleFilled(center, half, col)
		}
	case ListStyleSquare:
		if hdc != nil {
			hdc.AddRectFilled(
				imdraw.Vec2{X: center.X - half, Y: center.Y - half},
				imdraw.Vec2{X: center.X + half, Y: center.Y + half},
				col,
			)
		}
	default:
		err := fmt.Errorf("%w: %s", ErrMarkerOutOfRange, marker.MarkerType)
		d.logger.Err(err.Error())
		panic(err)
	}
}

func (d *DocumentContainer) LoadImage(src, baseURL string, redrawOnReady bool) {
	d.trace("LoadImage(src: %s, baseurl: %s)", src, baseURL)
	if d.hooks.LoadImage != nil {
		d.hooks.LoadImage(src, baseURL, redrawOnReady)
	}
}

func (d *DocumentContainer) ImageSize(src, baseURL string) Size {
	d.trace("ImageSize(src: %s, baseurl: %s)", src, baseURL)
	if d.hooks.ImageSize != nil {
		return d.hooks.ImageSize(src, baseURL)
	}
	return Size{}
}

func (d *DocumentContainer) DrawImage(hdc *imdraw.DrawList, layer BackgroundLayer, url, baseURL string) {
	d.trace("DrawImage(url: %s, base_url: %s)", url, baseURL)
	if d.hooks.DrawImage != nil {
		d.hooks.DrawImage(hdc, layer, url, baseURL)
	}
}

func (d *DocumentContainer) DrawSolidFill(hdc *imdraw.DrawList, layer BackgroundLayer, color WebColor) {
	d.trace("DrawSolidFill(...)")
	if d.hooks.DrawSolidFill != nil {
		d.hooks.DrawSolidFill(hdc, layer, color)
	}
}

func (d *DocumentContainer) DrawLinearGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient LinearGradient) {
	d.trace("DrawLinearGradient(...)")
	if d.hooks.DrawLinearGradient != nil {
		d.hooks.DrawLinearGradient(hdc, layer, gradient)
	}
}

func (d *DocumentContainer) DrawRadialGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient RadialGradient) {
	d.trace("DrawRadialGradient(...)")
	if d.hooks.DrawRadialGradient != nil {
		d.hooks.DrawRadialGradient(hdc, layer, gradient)
	}
}

func (d *DocumentContainer) DrawConicGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient ConicGradient) {
	d.trace("DrawConicGradient(...)")
	if d.hooks.DrawConicGradient != nil {
		d.hooks.DrawConicGradient(hdc, layer, gradient)
	}
}

func (d *DocumentContainer) DrawBorders(hdc *imdraw.DrawList, borders Borders, drawPos Position, root bool) {
	d.trace("DrawBorders(...)")
	if d.hooks.DrawBorders != nil {
		d.hooks.DrawBorders(hdc, borders, drawPos, root)
	}
}

func (d *DocumentContainer) SetCaption(caption string) {
	d.trace("SetCaption(caption: %s)", caption)
	if d.hooks.SetCaption != nil {
		d.hooks.SetCaption(caption)
	}
}

func (d *DocumentContainer) SetBaseURL(baseURL string) {
	d.trace("SetBaseURL(base_url: %s)", baseURL)
	if d.hooks.SetBaseURL != nil {
		d.hooks.SetBaseURL(baseURL)
	}
}

func (d *DocumentContainer) Link(doc Document, el Element) {
	d.trace("Link(...)")
	if d.hooks.Link != nil {
		d.hooks.Link(doc, el)
	}
}

func (d *DocumentContainer) OnAnchorClick(url string, el Element) {
	d.trace("OnAnchorClick(url: %s)", url)
	if d.hooks.OnAnchorClick != nil {
		d.hooks.OnAnchorClick(url, el)
	}
}

// OnElementClick reports whether the click was handled; false without a handler.
func (d *DocumentContainer) OnElementClick(el Element) bool {
	d.trace("OnElementClick(...)")
	if d.hooks.OnElementClick != nil {
		return d.hooks.OnElementClick(el)
	}
	return false
}

func (d *DocumentContainer) OnMouseEvent(el Element, event MouseEvent) {
	d.trace("OnMouseEvent(...)")
	if d.hooks.OnMouseEvent != nil {
		d.hooks.OnMouseEvent(el, event)
	}
}

func (d *DocumentContainer) SetCursor(cursor string) {
	d.trace("SetCursor(cursor: %s)", cursor)
	if d.hooks.SetCursor != nil {
		d.hooks.SetCursor(cursor)
	}
}

// TransformText returns text unchanged unless a TransformText handler is installed.
func (d *DocumentContainer) TransformText(text string, tt TextTransform) string {
	d.trace("TransformText(%s)", tt)
	if d.hooks.TransformText != nil {
		return d.hooks.TransformText(text, tt)
	}
	return text
}

// ImportCSS returns no stylesheet and the unchanged base URL unless a handler is installed.
func (d *DocumentContainer) ImportCSS(url, baseURL string) (string, string) {
	d.trace("ImportCSS(url: %s, baseurl: %s)", url, baseURL)
	if d.hooks.ImportCSS != nil {
		return d.hooks.ImportCSS(url, baseURL)
	}
	return "", baseURL
}

func (d *DocumentContainer) SetClip(pos Position, radius BorderRadiuses) {
	d.trace("SetClip(...)")
	if d.hooks.SetClip != nil {
		d.hooks.SetClip(pos, radius)
	}
}

func (d *DocumentContainer) DelClip() {
	d.trace("DelClip(...)")
	if d.hooks.DelClip != nil {
		d.hooks.DelClip()
	}
}

func (d *DocumentContainer) Viewport() Position {
	d.trace("Viewport(...)")
	if d.hooks.Viewport != nil {
		return d.hooks.Viewport()
	}
	return Position{}
}

// CreateElement returns nil (let the layout engine create the element) unless a handler is installed.
func (d *DocumentContainer) CreateElement(tagName string, attributes map[string]string, doc Document) Element {
	d.trace("CreateElement(tag_name: %s)", tagName)
	if d.hooks.CreateElement != nil {
		return d.hooks.CreateElement(tagName, attributes, doc)
	}
	return nil
}

func (d *DocumentContainer) MediaFeatures() MediaFeatures {
	d.trace("MediaFeatures(...)")
	if d.hooks.MediaFeatures != nil {
		return d.hooks.MediaFeatures()
	}
	return MediaFeatures{}
}

func (d *DocumentContainer) Language() (string, string) {
	d.trace("Language(...)")
	if d.hooks.Language != nil {
		return d.hooks.Language()
	}
	return "", ""
}

// resolveFontSource 按顺序尝试字体族列表：显式映射、字体文件路径、通用字体族。
func (d *DocumentContainer) resolveFontSource(descr FontDescription) string {
	bold := descr.Weight >= 600
	italic := descr.Style != FontStyleNormal
	families := splitFamilies(descr.Family)
	for _, family := range families {
		key := strings.ToLower(family)
		if src, ok := d.sources[key]; ok {
			return src
		}
		if atlas.IsFontFile(family) {
			return family
		}
		if generic, ok := genericFamily(key); ok {
			return "embed:" + fonts.Variant(generic, bold, italic)
		}
	}
	if d.fallback != "" {
		return d.fallback
	}
	if len(families) > 0 {
		// 交由 atlas 报告找不到字体
		return families[0]
	}
	return ""
}

func genericFamily(name string) (string, bool) {
	switch name {
	case "sans-serif", "system-ui", "ui-sans-serif", "cursive", "fantasy", "ui-rounded":
		return "sans-serif", true
	case "serif", "ui-serif":
		return "serif", true
	case "monospace", "ui-monospace":
		return "monospace", true
	}
	return "", false
}

func splitFamilies(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		name := strings.Trim(strings.TrimSpace(part), `"'`)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func primaryFamily(list string) string {
	if families := splitFamilies(list); len(families) > 0 {
		return families[0]
	}
	return ""
}

func packColor(c WebColor) imdraw.Color {
	return imdraw.ColorRGBA(c.Red, c.Green, c.Blue, c.Alpha)
}

func roundPx(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}
