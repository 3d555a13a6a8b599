// Package config loads the YAML settings of the imweb command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/imweb/container"
	"github.com/ByLCY/imweb/fonts"
)

// Capability names accepted under capabilities.
const (
	CapTransformText = "transform_text"
	CapViewport      = "viewport"
	CapMedia         = "media"
	CapLanguage      = "language"
	CapImages        = "images"
)

// Config is the on-disk configuration.
type Config struct {
	Window       Window   `yaml:"window"`
	Viewport     Viewport `yaml:"viewport"`
	Fonts        Fonts    `yaml:"fonts"`
	Language     string   `yaml:"language"`
	Capabilities []string `yaml:"capabilities"`
	LogLevel     string   `yaml:"log_level"`
	Output       Output   `yaml:"output"`
}

// Window describes the display the frame is rendered for.
type Window struct {
	DPI float64 `yaml:"dpi"` // 0 表示无法查询，按 96 dpi 回退
}

// Viewport is reported to the layout engine when the viewport capability is on.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Fonts 配置字体来源。
type Fonts struct {
	BaseDir  string            `yaml:"base_dir"`
	Families map[string]string `yaml:"families"` // 字体族 -> 文件路径或 embed:<name>
	Builtin  map[string]string `yaml:"builtin"`  // 以 built-in:<name> 引用的字体文件
	Fallback string            `yaml:"fallback"` // 未匹配任何字体族时使用的来源
}

// Output selects the rendered file.
type Output struct {
	Format     string  `yaml:"format"`
	Scale      float64 `yaml:"scale"`
	Background string  `yaml:"background"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.normalize()
	return c
}

// Load reads path; an empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, rejecting unknown keys, and fills defaults.
func Parse(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// 空文件返回 io.EOF，按全部默认值处理
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("解析配置失败: %w", err)
	}
	c.normalize()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() {
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 800
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 600
	}
	if c.Fonts.Fallback == "" {
		c.Fonts.Fallback = "embed:" + fonts.Default
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Output.Format == "" {
		c.Output.Format = "pdf"
	}
	if c.Output.Scale <= 0 {
		c.Output.Scale = 1
	}
	for i, name := range c.Capabilities {
		c.Capabilities[i] = strings.ToLower(strings.TrimSpace(name))
	}
}

func (c *Config) validate() error {
	if c.Window.DPI < 0 {
		return fmt.Errorf("window.dpi 不能为负数: %g", c.Window.DPI)
	}
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("language %q 无效: %w", c.Language, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, name := range c.Capabilities {
		switch name {
		case CapTransformText, CapViewport, CapMedia, CapLanguage, CapImages:
		default:
			return fmt.Errorf("未知 capability %q", name)
		}
	}
	if c.Output.Background != "" {
		if _, err := container.ParseWebColor(c.Output.Background); err != nil {
			return fmt.Errorf("output.background: %w", err)
		}
	}
	return nil
}

// Level maps log_level to a slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level %q 无效", c.LogLevel)
	}
	return lvl, nil
}

// Tag returns the configured language tag.
func (c Config) Tag() language.Tag {
	return language.Make(c.Language)
}

// DPIWindow returns the window as a container.Window.
func (c Config) DPIWindow() container.Window {
	return container.FixedDPI(c.Window.DPI)
}

// Enabled reports whether capability name is listed.
func (c Config) Enabled(name string) bool {
	for _, n := range c.Capabilities {
		if n == name {
			return true
		}
	}
	return false
}

// Hooks builds the capability table for the enabled capabilities. Image
// callbacks are installed by the caller, which owns the texture cache.
func (c Config) Hooks() container.Hooks {
	var h container.Hooks
	viewport := container.Position{Width: c.Viewport.Width, Height: c.Viewport.Height}
	if c.Enabled(CapTransformText) {
		h.TransformText = container.TextTransformer(c.Tag())
	}
	if c.Enabled(CapViewport) {
		h.Viewport = container.StaticViewport(viewport)
	}
	if c.Enabled(CapMedia) {
		h.MediaFeatures = container.WindowMedia(c.DPIWindow(), viewport)
	}
	if c.Enabled(CapLanguage) {
		h.Language = container.StaticLanguage(c.Tag())
	}
	return h
}
