// Package atlas is the font registry shared by one rendering session.
//
// An Atlas owns every loaded font, allocates the handles the layout engine
// passes back on each callback, bakes per-size metrics and keeps the stack of
// active fonts used for measurement. It replaces the process-wide font atlas
// of immediate-mode GUI libraries with an explicitly owned value.
package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
)

var (
	// ErrFontNotFound is returned when a font source cannot be resolved or read.
	ErrFontNotFound = errors.New("atlas: font not found")
	// ErrInvalidFont is returned when font data cannot be parsed.
	ErrInvalidFont = errors.New("atlas: invalid font data")
)

// FontConfig 描述一次字体加载请求。
type FontConfig struct {
	Name        string  // 调试名称，空时使用来源
	SizePixels  float64 // 烘焙字号（像素）
	OversampleH int
	OversampleV int
	PixelSnapH  bool // 绘制时 x 坐标对齐整像素
}

// DefaultConfig returns the atlas defaults for the given pixel size.
func DefaultConfig(size float64) FontConfig {
	return FontConfig{SizePixels: size, OversampleH: 2, OversampleV: 1, PixelSnapH: false}
}

func (c *FontConfig) normalize() {
	if c.OversampleH < 1 {
		c.OversampleH = 1
	}
	if c.OversampleV < 1 {
		c.OversampleV = 1
	}
}

// Font is a font registered in an Atlas.
type Font struct {
	id    uint64
	name  string
	data  []byte
	cfg   FontConfig
	face  *font.Font
	baked *BakedFont
}

// ID returns the handle of the font. IDs start at 1 and are never reused.
func (f *Font) ID() uint64 { return f.id }

// DebugName returns the configured name or the source the font was loaded from.
func (f *Font) DebugName() string { return f.name }

// Data returns the raw font file.
func (f *Font) Data() []byte { return f.data }

// Config returns the configuration the font was loaded with.
func (f *Font) Config() FontConfig { return f.cfg }

// LastBaked returns the baked metrics, or nil when the font could not be baked.
func (f *Font) LastBaked() *BakedFont { return f.baked }

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Options configures an Atlas.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
}

// Atlas 是字体注册表。Atlas 不是并发安全的，只能在驱动渲染的线程上使用。
type Atlas struct {
	baseDir string
	blobs   map[string][]byte

	fonts  []*Font
	nextID uint64
	stack  []*stackEntry

	shaper shaping.HarfbuzzShaper
}

// New creates an empty atlas.
func New(opts Options) (*Atlas, error) {
	a := &Atlas{
		baseDir: opts.BaseDir,
		blobs:   map[string][]byte{},
		nextID:  1,
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		data, err := res.load(a.baseDir)
		if err != nil {
			return nil, fmt.Errorf("内置字体 %s: %w", name, err)
		}
		a.blobs[name] = data
	}
	return a, nil
}

// AddFont resolves src, registers the font and bakes it at cfg.SizePixels.
// A font whose size cannot be baked is still registered; check LastBaked.
func (a *Atlas) AddFont(src string, cfg FontConfig) (*Font, error) {
	data, err := a.loadFontBytes(src)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = src
	}
	return a.AddFontFromBytes(data, cfg)
}

// AddFontFromBytes registers an in-memory font file.
func (a *Atlas) AddFontFromBytes(data []byte, cfg FontConfig) (*Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidFont)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, cfg.Name, err)
	}
	cfg.normalize()
	f := &Font{
		id:   a.nextID,
		name: cfg.Name,
		data: data,
		cfg:  cfg,
		face: face.Font,
	}
	a.nextID++
	f.baked = a.bake(f)
	a.fonts = append(a.fonts, f)
	return f, nil
}

// RemoveFont unregisters the font with the given id. It reports whether a font was removed.
func (a *Atlas) RemoveFont(id uint64) bool {
	for i, f := range a.fonts {
		if f.id != id {
			continue
		}
		a.fonts = append(a.fonts[:i], a.fonts[i+1:]...)
		// 栈中残留的引用一并移除，避免测量时使用已删除的字体
		kept := a.stack[:0]
		for _, e := range a.stack {
			if e.font != f {
				kept = append(kept, e)
			}
		}
		a.stack = kept
		return true
	}
	return false
}

// Font looks up a registered font by id.
func (a *Atlas) Font(id uint64) (*Font, bool) {
	for _, f := range a.fonts {
		if f.id == id {
			return f, true
		}
	}
	return nil, false
}

// Fonts returns the registered fonts in registration order.
func (a *Atlas) Fonts() []*Font { return a.fonts }

// CurrentFont returns the active font: the top of the font stack, or the
// first registered font when the stack is empty.
func (a *Atlas) CurrentFont() *Font {
	if n := len(a.stack); n > 0 {
		return a.stack[n-1].font
	}
	if len(a.fonts) > 0 {
		return a.fonts[0]
	}
	return nil
}

// PushFont makes f the active font and returns the func that restores the
// previous one. The returned func is safe to call more than once.
func (a *Atlas) PushFont(f *Font) (release func()) {
	e := &stackEntry{font: f}
	a.stack = append(a.stack, e)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		a.removeEntry(e)
	}
}

// stackEntry 标识一次 PushFont；release 只移除自己压入的那一项。
type stackEntry struct {
	font *Font
}

func (a *Atlas) removeEntry(e *stackEntry) {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if a.stack[i] == e {
			a.stack = append(a.stack[:i], a.stack[i+1:]...)
			return
		}
	}
}

// PopFont restores the previously active font.
func (a *Atlas) PopFont() {
	if n := len(a.stack); n > 0 {
		a.stack = a.stack[:n-1]
	}
}

// StackDepth returns the number of pushed fonts.
func (a *Atlas) StackDepth() int { return len(a.stack) }

// CalcTextSize measures text with the active font. Width is the widest line,
// height is one baked font size per line.
func (a *Atlas) CalcTextSize(text string) (width, height float64) {
	f := a.CurrentFont()
	if f == nil || f.baked == nil || text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if w := a.measure(f, line); w > width {
			width = w
		}
	}
	return width, float64(len(lines)) * f.baked.Size
}
