// Package scene replays scene scripts against a container.Container, standing
// in for the layout engine that would normally issue the callbacks.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/imweb/binding"
	"github.com/ByLCY/imweb/container"
	"github.com/ByLCY/imweb/dsl"
	"github.com/ByLCY/imweb/imdraw"
)

var black = container.WebColor{Alpha: 0xff}

// Options 控制回放。
type Options struct {
	// Data 为 ${path} 插值的数据，通常来自 JSON。
	Data any
	// Window 用于换算 mm/cm/in 长度；nil 时按 96 dpi。
	Window container.Window
}

// Result is what one replay produced: the draw list of the frame, the fonts
// created for it and the environment the container reported.
type Result struct {
	Name    string
	Version string
	Title   string
	Tags    []string

	Width, Height float64
	List          *imdraw.DrawList

	Fonts   map[string]container.FontHandle
	Metrics map[string]container.FontMetrics

	Viewport container.Position
	Media    container.MediaFeatures
	Language string
	Culture  string

	BaseURL  string
	Imports  []string
	Elements []container.Element
}

// Release deletes every font the replay created.
func (r *Result) Release(c container.Container) {
	for name, h := range r.Fonts {
		c.DeleteFont(h)
		delete(r.Fonts, name)
	}
}

type replayer struct {
	c    container.Container
	doc  container.Document
	opts Options
	res  *Result
}

// Replay creates the scene's fonts through c and issues the callbacks of its
// first frame in order.
func Replay(sc *dsl.Scene, c container.Container, opts Options) (*Result, error) {
	if sc == nil {
		return nil, fmt.Errorf("场景为空")
	}
	if c == nil {
		return nil, fmt.Errorf("scene: 缺少 container")
	}
	r := &replayer{
		c:    c,
		doc:  sc,
		opts: opts,
		res: &Result{
			Name:    sc.Name,
			Version: sc.Version,
			List:    imdraw.NewDrawList(),
			Fonts:   map[string]container.FontHandle{},
			Metrics: map[string]container.FontMetrics{},
		},
	}

	r.collectMeta(sc)

	// 布局引擎先询问环境再创建字体。
	r.res.Viewport = c.Viewport()
	r.res.Media = c.MediaFeatures()
	r.res.Language, r.res.Culture = c.Language()
	if r.res.Title != "" {
		c.SetCaption(r.res.Title)
	}

	var frame *dsl.FrameSection
	for _, section := range sc.Sections {
		switch {
		case section.Fonts != nil:
			if err := r.createFonts(section.Fonts.Block); err != nil {
				r.res.Release(c)
				return nil, err
			}
		case section.Frame != nil && frame == nil:
			frame = section.Frame
		}
	}
	if frame == nil {
		r.res.Release(c)
		return nil, fmt.Errorf("场景中缺少 frame 段落")
	}

	width, height := container.ParseLength(frame.Width), container.ParseLength(frame.Height)
	r.res.Width = float64(width.Px(opts.Window))
	r.res.Height = float64(height.Px(opts.Window))
	if r.res.Width <= 0 || r.res.Height <= 0 {
		r.res.Release(c)
		return nil, fmt.Errorf("frame 尺寸无效: %s x %s", width, height)
	}
	if frame.Block != nil {
		for _, stmt := range frame.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			if err := r.command(stmt.Command); err != nil {
				r.res.Release(c)
				return nil, fmt.Errorf("第 %d 行: %w", stmt.Command.Pos.Line, err)
			}
		}
	}
	return r.res, nil
}

func (r *replayer) collectMeta(sc *dsl.Scene) {
	for _, section := range sc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				r.res.Title = binding.Interpolate(stmt.Assignment.Value.Text(), r.opts.Data)
			case "tags", "keywords":
				r.res.Tags = valueStrings(stmt.Assignment.Value)
			}
		}
	}
}

func valueStrings(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array == nil {
		if s := val.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// createFonts 处理 font <Name> family <list> size <len> weight <n> style <s> decoration <d>。
func (r *replayer) createFonts(block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "font" {
			return fmt.Errorf("fonts 段落不支持命令 %s", cmd.Name)
		}
		a, err := parseArgs(cmd, fontKeywords)
		if err != nil {
			return err
		}
		name := a.arg(0)
		if name == "" {
			return fmt.Errorf("第 %d 行: font 缺少名称", cmd.Pos.Line)
		}
		descr, err := r.fontDescription(a)
		if err != nil {
			return err
		}
		h, metrics := r.c.CreateFont(descr, r.doc)
		r.res.Fonts[name] = h
		r.res.Metrics[name] = metrics
	}
	return nil
}

func (r *replayer) fontDescription(a args) (container.FontDescription, error) {
	// 默认字体取自第一个已创建的字体，因此第一个字体必须写明 family 与 size。
	first := len(r.res.Fonts) == 0
	descr := container.FontDescription{Family: a.str("family", "")}
	if descr.Family == "" {
		if first {
			return descr, fmt.Errorf("font %s: 第一个字体必须指定 family", a.arg(0))
		}
		descr.Family = r.c.DefaultFontName()
	}
	size := container.ParseLength(a.str("size", ""))
	switch {
	case size.IsZero() && first:
		return descr, fmt.Errorf("font %s: 第一个字体必须指定 size", a.arg(0))
	case size.IsZero():
		descr.Size = r.c.DefaultFontSize()
	case size.Unit == container.UnitPT:
		descr.Size = r.c.PtToPx(int(size.Value + 0.5))
	default:
		descr.Size = size.Px(r.opts.Window)
	}
	weight, err := a.integer("weight", 400)
	if err != nil {
		return descr, err
	}
	descr.Weight = weight
	switch strings.ToLower(a.str("style", "normal")) {
	case "normal":
	case "italic":
		descr.Style = container.FontStyleItalic
	case "oblique":
		descr.Style = container.FontStyleOblique
	default:
		return descr, fmt.Errorf("font: 未知 style %s", a.str("style", ""))
	}
	for _, vals := range a.keywords["decoration"] {
		switch strings.ToLower(vals[0]) {
		case "underline":
			descr.DecorationLine |= container.DecorationUnderline
		case "overline":
			descr.DecorationLine |= container.DecorationOverline
		case "line-through":
			descr.DecorationLine |= container.DecorationLineThrough
		default:
			return descr, fmt.Errorf("font: 未知 decoration %s", vals[0])
		}
	}
	return descr, nil
}

func (r *replayer) command(cmd *dsl.Command) error {
	a, err := parseArgs(cmd, keywordsFor(cmd.Name))
	if err != nil {
		return err
	}
	switch cmd.Name {
	case "text":
		return r.text(a, cmd.Block)
	case "marker":
		return r.marker(a)
	case "image":
		return r.image(a)
	case "fill":
		return r.fill(a)
	case "gradient":
		return r.gradient(a)
	case "border":
		return r.border(a)
	case "clip":
		pos, err := a.box(true)
		if err != nil {
			return err
		}
		radius, err := a.integer("radius", 0)
		if err != nil {
			return err
		}
		r.c.SetClip(pos, uniformRadius(radius))
	case "unclip":
		r.c.DelClip()
	case "caption":
		r.c.SetCaption(binding.Interpolate(a.arg(0), r.opts.Data))
	case "base":
		r.res.BaseURL = a.arg(0)
		r.c.SetBaseURL(r.res.BaseURL)
	case "cursor":
		r.c.SetCursor(a.arg(0))
	case "import":
		text, baseURL := r.c.ImportCSS(a.arg(0), r.res.BaseURL)
		if text != "" {
			r.res.Imports = append(r.res.Imports, text)
		}
		if baseURL != "" {
			r.res.BaseURL = baseURL
		}
	case "anchor":
		r.c.OnAnchorClick(a.arg(0), r.lastElement())
	case "element":
		return r.element(a)
	case "click":
		r.c.OnElementClick(r.lastElement())
	case "hover":
		switch a.arg(0) {
		case "enter", "":
			r.c.OnMouseEvent(r.lastElement(), container.MouseEventEnter)
		case "leave":
			r.c.OnMouseEvent(r.lastElement(), container.MouseEventLeave)
		default:
			return fmt.Errorf("hover: 未知事件 %s", a.arg(0))
		}
	default:
		return fmt.Errorf("未知命令 %s", cmd.Name)
	}
	return nil
}

func (r *replayer) font(name string) (container.FontHandle, container.FontMetrics, error) {
	h, ok := r.res.Fonts[name]
	if !ok {
		return container.InvalidFont, container.FontMetrics{}, fmt.Errorf("未声明字体 %s", name)
	}
	return h, r.res.Metrics[name], nil
}

// text 处理 text <Font> at x y [color c] [transform t] { "..." }。
func (r *replayer) text(a args, block *dsl.Block) error {
	h, metrics, err := r.font(a.arg(0))
	if err != nil {
		return err
	}
	pos, err := a.box(false)
	if err != nil {
		return err
	}
	col, err := a.color("color", black)
	if err != nil {
		return err
	}
	content := binding.Interpolate(extractText(block), r.opts.Data)
	if a.has("transform") {
		tt, err := parseTextTransform(a.str("transform", ""))
		if err != nil {
			return err
		}
		content = r.c.TransformText(content, tt)
	}
	if pos.Width == 0 {
		pos.Width = r.c.TextWidth(content, h)
	}
	if pos.Height == 0 {
		pos.Height = metrics.Height
	}
	r.c.DrawText(r.res.List, content, h, col, pos)
	return nil
}

func parseTextTransform(s string) (container.TextTransform, error) {
	switch strings.ToLower(s) {
	case "none":
		return container.TextTransformNone, nil
	case "capitalize":
		return container.TextTransformCapitalize, nil
	case "uppercase", "upper":
		return container.TextTransformUppercase, nil
	case "lowercase", "lower":
		return container.TextTransformLowercase, nil
	default:
		return container.TextTransformNone, fmt.Errorf("text: 未知 transform %s", s)
	}
}

// marker 处理 marker <type> [Font] at x y w h [color c] [index n] [image url]。
// 容器对不支持的类型会 panic，这里转换为错误返回。
func (r *replayer) marker(a args) (err error) {
	kind, ok := container.ParseListStyleType(a.arg(0))
	if !ok {
		return fmt.Errorf("marker: 未知类型 %s", a.arg(0))
	}
	m := container.ListMarker{
		MarkerType: kind,
		Image:      a.str("image", ""),
		BaseURL:    r.res.BaseURL,
	}
	if name := a.arg(1); name != "" {
		if m.Font, _, err = r.font(name); err != nil {
			return err
		}
	}
	if m.Pos, err = a.box(true); err != nil {
		return err
	}
	if m.Color, err = a.color("color", black); err != nil {
		return err
	}
	if m.Index, err = a.integer("index", 0); err != nil {
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok && errors.Is(e, container.ErrMarkerOutOfRange) {
				err = e
				return
			}
			panic(rec)
		}
	}()
	r.c.DrawListMarker(r.res.List, m)
	return nil
}

// image 处理 image <src> at x y [w h]，未给出尺寸时向容器查询。
func (r *replayer) image(a args) error {
	src := a.arg(0)
	if src == "" {
		return fmt.Errorf("image: 缺少地址")
	}
	pos, err := a.box(false)
	if err != nil {
		return err
	}
	baseURL := a.str("base", r.res.BaseURL)
	r.c.LoadImage(src, baseURL, false)
	if pos.Width == 0 || pos.Height == 0 {
		size := r.c.ImageSize(src, baseURL)
		pos.Width, pos.Height = size.Width, size.Height
	}
	r.c.DrawImage(r.res.List, r.layer(pos, a), src, baseURL)
	return nil
}

func (r *replayer) layer(pos container.Position, a args) container.BackgroundLayer {
	radius, _ := a.integer("radius", 0)
	return container.BackgroundLayer{
		BorderBox:    pos,
		BorderRadius: uniformRadius(radius),
		ClipBox:      pos,
		OriginBox:    pos,
		Attachment:   "scroll",
		Repeat:       "no-repeat",
		IsRoot:       a.has("root"),
	}
}

func (r *replayer) fill(a args) error {
	pos, err := a.box(true)
	if err != nil {
		return err
	}
	col, err := a.color("color", black)
	if err != nil {
		return err
	}
	r.c.DrawSolidFill(r.res.List, r.layer(pos, a), col)
	return nil
}

// gradient 处理 gradient linear|radial|conic at x y w h ... stop <offset> <color> ...。
func (r *replayer) gradient(a args) error {
	pos, err := a.box(true)
	if err != nil {
		return err
	}
	stops, err := a.stops()
	if err != nil {
		return err
	}
	if len(stops) < 2 {
		return fmt.Errorf("gradient: 至少需要两个 stop")
	}
	layer := r.layer(pos, a)
	switch a.arg(0) {
	case "linear":
		g := container.LinearGradient{ColorPoints: stops}
		if g.StartX, g.StartY, err = a.pair("from"); err != nil {
			return err
		}
		if g.EndX, g.EndY, err = a.pair("to"); err != nil {
			return err
		}
		r.c.DrawLinearGradient(r.res.List, layer, g)
	case "radial":
		g := container.RadialGradient{ColorPoints: stops}
		if g.CenterX, g.CenterY, err = a.pair("center"); err != nil {
			return err
		}
		if g.RadiusX, g.RadiusY, err = a.pair("size"); err != nil {
			return err
		}
		r.c.DrawRadialGradient(r.res.List, layer, g)
	case "conic":
		g := container.ConicGradient{ColorPoints: stops}
		if g.CenterX, g.CenterY, err = a.pair("center"); err != nil {
			return err
		}
		if g.Angle, err = a.float("angle", 0); err != nil {
			return err
		}
		r.c.DrawConicGradient(r.res.List, layer, g)
	default:
		return fmt.Errorf("gradient: 未知类型 %s", a.arg(0))
	}
	return nil
}

// border 处理 border at x y w h width n [style s] [color c] [radius r] [root]，四边相同。
func (r *replayer) border(a args) error {
	pos, err := a.box(true)
	if err != nil {
		return err
	}
	width, err := a.integer("width", 1)
	if err != nil {
		return err
	}
	col, err := a.color("color", black)
	if err != nil {
		return err
	}
	radius, err := a.integer("radius", 0)
	if err != nil {
		return err
	}
	side := container.Border{Width: width, Style: a.str("style", "solid"), Color: col}
	borders := container.Borders{Left: side, Top: side, Right: side, Bottom: side, Radius: uniformRadius(radius)}
	r.c.DrawBorders(r.res.List, borders, pos, a.has("root"))
	return nil
}

// element 处理 element <tag> [key value]...；tag 为 link 时随后调用 Link。
func (r *replayer) element(a args) error {
	tag := a.arg(0)
	if tag == "" {
		return fmt.Errorf("element: 缺少标签名")
	}
	attrs := map[string]string{}
	for i := 1; i+1 < len(a.positional); i += 2 {
		attrs[a.positional[i]] = a.positional[i+1]
	}
	el := r.c.CreateElement(tag, attrs, r.doc)
	if el == nil {
		return nil
	}
	r.res.Elements = append(r.res.Elements, el)
	if strings.EqualFold(tag, "link") {
		r.c.Link(r.doc, el)
	}
	return nil
}

func (r *replayer) lastElement() container.Element {
	if n := len(r.res.Elements); n > 0 {
		return r.res.Elements[n-1]
	}
	return nil
}

func uniformRadius(v int) container.BorderRadiuses {
	return container.BorderRadiuses{
		TopLeftX: v, TopLeftY: v,
		TopRightX: v, TopRightY: v,
		BottomRightX: v, BottomRightY: v,
		BottomLeftX: v, BottomLeftY: v,
	}
}
