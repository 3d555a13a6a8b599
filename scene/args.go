package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/imweb/container"
	"github.com/ByLCY/imweb/dsl"
)

// frameKeywords 为 frame 命令各关键字后跟随的参数个数；-1 表示贪婪读取至多 4 个数字。
var frameKeywords = map[string]int{
	"at":        -1,
	"color":     1,
	"transform": 1,
	"index":     1,
	"image":     1,
	"base":      1,
	"radius":    1,
	"width":     1,
	"style":     1,
	"angle":     1,
	"from":      2,
	"to":        2,
	"center":    2,
	"stop":      2,
	"root":      0,
}

// gradientKeywords 在 frame 关键字之外接受 size <rx> <ry>（径向渐变半径）。
var gradientKeywords = withKeywords(frameKeywords, map[string]int{"size": 2})

// fontKeywords 用于 fonts 段落中的 font 声明，size 只带一个长度。
var fontKeywords = map[string]int{
	"family":     1,
	"size":       1,
	"weight":     1,
	"style":      1,
	"decoration": 1,
}

func withKeywords(base, extra map[string]int) map[string]int {
	out := make(map[string]int, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// keywordsFor 返回 frame 命令 name 的关键字表。
func keywordsFor(name string) map[string]int {
	if name == "gradient" {
		return gradientKeywords
	}
	return frameKeywords
}

// args 是命令参数：关键字前的位置参数与关键字参数。关键字可重复出现（如 stop）。
type args struct {
	name       string
	positional []string
	keywords   map[string][][]string
}

func parseArgs(cmd *dsl.Command, keywords map[string]int) (args, error) {
	out := args{name: cmd.Name, keywords: map[string][][]string{}}
	lex := cmd.Args
	for i := 0; i < len(lex); i++ {
		tok := lex[i]
		arity, isKeyword := keywords[tok.Value]
		if !isKeyword || tok.Type != "Ident" {
			if len(out.keywords) > 0 {
				return out, fmt.Errorf("%s: 第 %d 行参数 %q 位置错误", cmd.Name, tok.Pos.Line, tok.Raw)
			}
			out.positional = append(out.positional, tok.Value)
			continue
		}
		var vals []string
		switch {
		case arity < 0:
			for i+1 < len(lex) && len(vals) < 4 && lex[i+1].Type == "Number" {
				i++
				vals = append(vals, lex[i].Value)
			}
		default:
			if i+arity >= len(lex) {
				return out, fmt.Errorf("%s: 关键字 %s 需要 %d 个参数", cmd.Name, tok.Value, arity)
			}
			for j := 0; j < arity; j++ {
				i++
				vals = append(vals, lex[i].Value)
			}
		}
		out.keywords[tok.Value] = append(out.keywords[tok.Value], vals)
	}
	return out, nil
}

func (a args) has(key string) bool {
	_, ok := a.keywords[key]
	return ok
}

// str 返回关键字最后一次出现时的第一个参数。
func (a args) str(key, def string) string {
	vals := a.keywords[key]
	if len(vals) == 0 || len(vals[len(vals)-1]) == 0 {
		return def
	}
	return vals[len(vals)-1][0]
}

func (a args) arg(i int) string {
	if i < len(a.positional) {
		return a.positional[i]
	}
	return ""
}

func (a args) integer(key string, def int) (int, error) {
	s := a.str(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%s: %s 不是整数: %s", a.name, key, s)
	}
	return v, nil
}

func (a args) float(key string, def float64) (float64, error) {
	s := a.str(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return def, fmt.Errorf("%s: %s 不是数字: %s", a.name, key, s)
	}
	return v, nil
}

func (a args) color(key string, def container.WebColor) (container.WebColor, error) {
	s := a.str(key, "")
	if s == "" {
		return def, nil
	}
	c, err := container.ParseWebColor(s)
	if err != nil {
		return def, fmt.Errorf("%s: %w", a.name, err)
	}
	return c, nil
}

// box 读取 at x y [w h]，坐标均为像素整数。
func (a args) box(requireSize bool) (container.Position, error) {
	vals := a.keywords["at"]
	if len(vals) == 0 {
		return container.Position{}, fmt.Errorf("%s: 缺少 at 坐标", a.name)
	}
	coords := vals[len(vals)-1]
	want := 2
	if requireSize {
		want = 4
	}
	if len(coords) < want {
		return container.Position{}, fmt.Errorf("%s: at 需要 %d 个数字", a.name, want)
	}
	nums := make([]int, 4)
	for i, s := range coords {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return container.Position{}, fmt.Errorf("%s: 坐标格式错误: %s", a.name, s)
		}
		nums[i] = int(f)
	}
	return container.Position{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, nil
}

func (a args) pair(key string) (float64, float64, error) {
	vals := a.keywords[key]
	if len(vals) == 0 {
		return 0, 0, nil
	}
	return parsePair(a.name, vals[len(vals)-1])
}

func parsePair(name string, vals []string) (float64, float64, error) {
	x, err1 := strconv.ParseFloat(vals[0], 64)
	y, err2 := strconv.ParseFloat(vals[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%s: 坐标格式错误: %v", name, vals)
	}
	return x, y, nil
}

// stops 读取重复的 stop <offset> <color>；offset 可写成百分比。
func (a args) stops() ([]container.ColorPoint, error) {
	var out []container.ColorPoint
	for _, vals := range a.keywords["stop"] {
		raw := vals[0]
		offset, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: stop 偏移格式错误: %s", a.name, raw)
		}
		if strings.HasSuffix(raw, "%") {
			offset /= 100
		}
		col, err := container.ParseWebColor(vals[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.name, err)
		}
		out = append(out, container.ColorPoint{Offset: offset, Color: col})
	}
	return out, nil
}

// extractText 拼接块内的字符串字面量。
func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}
