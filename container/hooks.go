package container

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/imweb/imdraw"
)

// Hooks is the capability table for the optional callbacks of Container.
// Every callback is traced; a nil entry then does nothing and returns the
// zero value, so what a container actually supports is visible in one place.
type Hooks struct {
	LoadImage          func(src, baseURL string, redrawOnReady bool)
	ImageSize          func(src, baseURL string) Size
	DrawImage          func(hdc *imdraw.DrawList, layer BackgroundLayer, url, baseURL string)
	DrawSolidFill      func(hdc *imdraw.DrawList, layer BackgroundLayer, color WebColor)
	DrawLinearGradient func(hdc *imdraw.DrawList, layer BackgroundLayer, gradient LinearGradient)
	DrawRadialGradient func(hdc *imdraw.DrawList, layer BackgroundLayer, gradient RadialGradient)
	DrawConicGradient  func(hdc *imdraw.DrawList, layer BackgroundLayer, gradient ConicGradient)
	DrawBorders        func(hdc *imdraw.DrawList, borders Borders, drawPos Position, root bool)

	SetCaption     func(caption string)
	SetBaseURL     func(baseURL string)
	Link           func(doc Document, el Element)
	OnAnchorClick  func(url string, el Element)
	OnElementClick func(el Element) bool
	OnMouseEvent   func(el Element, event MouseEvent)
	SetCursor      func(cursor string)
	TransformText  func(text string, tt TextTransform) string
	ImportCSS      func(url, baseURL string) (text, newBaseURL string)
	SetClip        func(pos Position, radius BorderRadiuses)
	DelClip        func()
	Viewport       func() Position
	CreateElement  func(tagName string, attributes map[string]string, doc Document) Element
	MediaFeatures  func() MediaFeatures
	Language       func() (language, culture string)
}

// Installed lists the callbacks that have a handler, in declaration order.
func (h Hooks) Installed() []string {
	var names []string
	add := func(name string, set bool) {
		if set {
			names = append(names, name)
		}
	}
	add("LoadImage", h.LoadImage != nil)
	add("ImageSize", h.ImageSize != nil)
	add("DrawImage", h.DrawImage != nil)
	add("DrawSolidFill", h.DrawSolidFill != nil)
	add("DrawLinearGradient", h.DrawLinearGradient != nil)
	add("DrawRadialGradient", h.DrawRadialGradient != nil)
	add("DrawConicGradient", h.DrawConicGradient != nil)
	add("DrawBorders", h.DrawBorders != nil)
	add("SetCaption", h.SetCaption != nil)
	add("SetBaseURL", h.SetBaseURL != nil)
	add("Link", h.Link != nil)
	add("OnAnchorClick", h.OnAnchorClick != nil)
	add("OnElementClick", h.OnElementClick != nil)
	add("OnMouseEvent", h.OnMouseEvent != nil)
	add("SetCursor", h.SetCursor != nil)
	add("TransformText", h.TransformText != nil)
	add("ImportCSS", h.ImportCSS != nil)
	add("SetClip", h.SetClip != nil)
	add("DelClip", h.DelClip != nil)
	add("Viewport", h.Viewport != nil)
	add("CreateElement", h.CreateElement != nil)
	add("MediaFeatures", h.MediaFeatures != nil)
	add("Language", h.Language != nil)
	return names
}

// TextureHandler loads image resources on behalf of the container.
type TextureHandler interface {
	Load(src, baseURL string)
}

// TextureLoader returns a LoadImage handler that forwards to th.
func TextureLoader(th TextureHandler) func(src, baseURL string, redrawOnReady bool) {
	return func(src, baseURL string, _ bool) {
		th.Load(src, baseURL)
	}
}

// TextTransformer returns a TransformText handler applying CSS text-transform
// with the casing rules of tag.
func TextTransformer(tag language.Tag) func(text string, tt TextTransform) string {
	upper := cases.Upper(tag)
	lower := cases.Lower(tag)
	// capitalize 只改首字母，不改其余字母
	title := cases.Title(tag, cases.NoLower)
	return func(text string, tt TextTransform) string {
		switch tt {
		case TextTransformUppercase:
			return upper.String(text)
		case TextTransformLowercase:
			return lower.String(text)
		case TextTransformCapitalize:
			return title.String(text)
		default:
			return text
		}
	}
}

// StaticViewport returns a Viewport handler reporting pos.
func StaticViewport(pos Position) func() Position {
	return func() Position { return pos }
}

// WindowMedia returns a MediaFeatures handler describing a color screen of the
// viewport's size at the density of win.
func WindowMedia(win Window, viewport Position) func() MediaFeatures {
	return func() MediaFeatures {
		return MediaFeatures{
			Type:         MediaScreen,
			Width:        viewport.Width,
			Height:       viewport.Height,
			DeviceWidth:  viewport.Width,
			DeviceHeight: viewport.Height,
			Color:        8,
			Resolution:   int(windowDPI(win) + 0.5),
		}
	}
}

// StaticLanguage returns a Language handler for tag, e.g. "en" and "en-US".
// The culture is empty when tag names no region.
func StaticLanguage(tag language.Tag) func() (string, string) {
	base, _ := tag.Base()
	lang := base.String()
	culture := ""
	// 只报告显式写出的地区，不使用推断出的地区（如 en -> US）
	if region, conf := tag.Region(); conf == language.Exact {
		culture = lang + "-" + region.String()
	}
	return func() (string, string) { return lang, culture }
}
