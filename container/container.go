// Package container answers the rendering callbacks of an HTML/CSS layout
// engine by delegating to a font atlas and an immediate-mode draw list.
package container

import "github.com/ByLCY/imweb/imdraw"

// Container is the callback surface a layout engine requires from its host.
// Draw callbacks receive the draw list of the frame being built as hdc.
type Container interface {
	CreateFont(descr FontDescription, doc Document) (FontHandle, FontMetrics)
	DeleteFont(h FontHandle)
	TextWidth(text string, h FontHandle) int
	DrawText(hdc *imdraw.DrawList, text string, h FontHandle, color WebColor, pos Position)
	PtToPx(pt int) int
	DefaultFontSize() int
	DefaultFontName() string
	DrawListMarker(hdc *imdraw.DrawList, marker ListMarker)

	LoadImage(src, baseURL string, redrawOnReady bool)
	ImageSize(src, baseURL string) Size
	DrawImage(hdc *imdraw.DrawList, layer BackgroundLayer, url, baseURL string)
	DrawSolidFill(hdc *imdraw.DrawList, layer BackgroundLayer, color WebColor)
	DrawLinearGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient LinearGradient)
	DrawRadialGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient RadialGradient)
	DrawConicGradient(hdc *imdraw.DrawList, layer BackgroundLayer, gradient ConicGradient)
	DrawBorders(hdc *imdraw.DrawList, borders Borders, drawPos Position, root bool)

	SetCaption(caption string)
	SetBaseURL(baseURL string)
	Link(doc Document, el Element)
	OnAnchorClick(url string, el Element)
	OnElementClick(el Element) bool
	OnMouseEvent(el Element, event MouseEvent)
	SetCursor(cursor string)
	TransformText(text string, tt TextTransform) string
	ImportCSS(url, baseURL string) (text, newBaseURL string)
	SetClip(pos Position, radius BorderRadiuses)
	DelClip()
	Viewport() Position
	CreateElement(tagName string, attributes map[string]string, doc Document) Element
	MediaFeatures() MediaFeatures
	Language() (language, culture string)
}
