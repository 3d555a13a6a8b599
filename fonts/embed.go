package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体：Go 字体族（无衬线/等宽）与 Latin Modern（衬线）。
var embedded = map[string][]byte{
	"go-regular":           goregular.TTF,
	"go-bold":              gobold.TTF,
	"go-italic":            goitalic.TTF,
	"go-bold-italic":       gobolditalic.TTF,
	"go-mono":              gomono.TTF,
	"go-mono-bold":         gomonobold.TTF,
	"go-mono-italic":       gomonoitalic.TTF,
	"lm-roman":             lmroman10regular.TTF,
	"lm-roman-bold":        lmroman10bold.TTF,
	"lm-roman-italic":      lmroman10italic.TTF,
	"lm-roman-bold-italic": lmroman10bolditalic.TTF,
}

// Default 是默认字体名称。
const Default = "go-regular"

// Load 返回内置字体的字节数据，name 可写为 "embed:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	data, ok := embedded[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", key)
	}
	return data, nil
}

// Names lists the embedded font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variant 根据通用字体族、粗细与斜体选择内置字体。
// generic 取值 sans-serif / serif / monospace，其它值按 sans-serif 处理。
func Variant(generic string, bold, italic bool) string {
	var base string
	switch strings.ToLower(generic) {
	case "serif":
		base = "lm-roman"
	case "monospace":
		base = "go-mono"
	default:
		base = "go"
	}
	suffix := ""
	switch {
	case bold && italic:
		suffix = "-bold-italic"
	case bold:
		suffix = "-bold"
	case italic:
		suffix = "-italic"
	}
	if suffix == "" {
		if base == "go" {
			return Default
		}
		return base
	}
	if base == "go-mono" && suffix == "-bold-italic" {
		// 等宽族没有粗斜体
		return "go-mono-bold"
	}
	return base + suffix
}
