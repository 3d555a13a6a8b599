package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/imweb/atlas"
	"github.com/ByLCY/imweb/config"
	"github.com/ByLCY/imweb/container"
	"github.com/ByLCY/imweb/dsl"
	"github.com/ByLCY/imweb/renderer"
	canvasrenderer "github.com/ByLCY/imweb/renderer/canvas"
	"github.com/ByLCY/imweb/scene"
	"github.com/ByLCY/imweb/textures"
)

func main() {
	input := flag.String("in", "examples/demo.scene", "场景文件路径")
	output := flag.String("out", "output/demo.pdf", "输出文件路径")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	dataJSON := flag.String("data", "", "绑定到场景的 JSON 数据")
	format := flag.String("format", "", "输出格式 pdf/png，覆盖配置")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	r, err := newRenderer(cfg)
	if err != nil {
		log.Fatalf("创建渲染器失败: %v", err)
	}
	if err := run(*input, *output, cfg, inputData, r); err != nil {
		log.Fatalf("渲染场景失败: %v", err)
	}
	fmt.Printf("已生成 %s：%s\n", cfg.Output.Format, *output)
}

func newRenderer(cfg config.Config) (renderer.Renderer, error) {
	format, err := canvasrenderer.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	opts := canvasrenderer.Options{Format: format, Scale: cfg.Output.Scale}
	if cfg.Output.Background != "" {
		bg, err := container.ParseWebColor(cfg.Output.Background)
		if err != nil {
			return nil, err
		}
		opts.Background = color.NRGBA{R: bg.Red, G: bg.Green, B: bg.Blue, A: bg.Alpha}
	}
	return canvasrenderer.NewRenderer(opts), nil
}

// newContainer 按配置组装 atlas、日志与能力表。
func newContainer(cfg config.Config, baseDir string) (*container.DocumentContainer, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := container.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	fontDir := cfg.Fonts.BaseDir
	if fontDir != "" && !filepath.IsAbs(fontDir) {
		fontDir = filepath.Join(baseDir, fontDir)
	}
	builtin := make(map[string]atlas.Resource, len(cfg.Fonts.Builtin))
	for name, path := range cfg.Fonts.Builtin {
		builtin[name] = atlas.Resource{Path: path}
	}
	a, err := atlas.New(atlas.Options{BaseDir: fontDir, Fonts: builtin})
	if err != nil {
		return nil, err
	}

	hooks := cfg.Hooks()
	if cfg.Enabled(config.CapImages) {
		hooks = textures.New(baseDir, logger).Hooks(hooks)
	}
	return container.New(a,
		container.WithLogger(logger),
		container.WithWindow(cfg.DPIWindow()),
		container.WithFontSources(cfg.Fonts.Families),
		container.WithFallbackFont(cfg.Fonts.Fallback),
		container.WithHooks(hooks),
	), nil
}

// run 串联解析、回放与渲染。
func run(inputPath, outputPath string, cfg config.Config, data any, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开场景文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	sc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析场景失败: %w", err)
	}

	c, err := newContainer(cfg, filepath.Dir(inputPath))
	if err != nil {
		return fmt.Errorf("初始化容器失败: %w", err)
	}
	result, err := scene.Replay(sc, c, scene.Options{Data: data, Window: cfg.DPIWindow()})
	if err != nil {
		return fmt.Errorf("回放场景失败: %w", err)
	}
	defer result.Release(c)

	out, err := r.Render(renderer.Frame{
		Width:  result.Width,
		Height: result.Height,
		Title:  result.Title,
		List:   result.List,
	})
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}
