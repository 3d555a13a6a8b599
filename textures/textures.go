// Package textures loads image resources for the container's image callbacks.
package textures

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/imweb/container"
)

// Cache 从本地目录读取图片，只解析尺寸并缓存。Cache 不是并发安全的。
type Cache struct {
	baseDir string
	logger  container.Logger
	sizes   map[string]container.Size
	formats map[string]string
}

var _ container.TextureHandler = (*Cache)(nil)

// New returns a cache resolving relative image paths against baseDir.
func New(baseDir string, logger container.Logger) *Cache {
	if logger == nil {
		logger = container.NopLogger{}
	}
	return &Cache{
		baseDir: baseDir,
		logger:  logger,
		sizes:   map[string]container.Size{},
		formats: map[string]string{},
	}
}

// Load decodes the header of the image at src. Failures are logged and the
// image reports a zero size.
func (c *Cache) Load(src, baseURL string) {
	path, err := c.resolve(src, baseURL)
	if err != nil {
		c.logger.Warn(err.Error())
		return
	}
	if _, ok := c.sizes[path]; ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("读取图片 %s 失败: %v", path, err))
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn(fmt.Sprintf("解析图片 %s 失败: %v", path, err))
		return
	}
	c.sizes[path] = container.Size{Width: cfg.Width, Height: cfg.Height}
	c.formats[path] = format
}

// Size returns the size of a loaded image, loading it on first use.
func (c *Cache) Size(src, baseURL string) container.Size {
	path, err := c.resolve(src, baseURL)
	if err != nil {
		c.logger.Warn(err.Error())
		return container.Size{}
	}
	if _, ok := c.sizes[path]; !ok {
		c.Load(src, baseURL)
	}
	return c.sizes[path]
}

// Format returns the decoder name ("png", "webp", ...) of a loaded image.
func (c *Cache) Format(src, baseURL string) string {
	path, err := c.resolve(src, baseURL)
	if err != nil {
		return ""
	}
	return c.formats[path]
}

// Hooks installs LoadImage and ImageSize on h.
func (c *Cache) Hooks(h container.Hooks) container.Hooks {
	h.LoadImage = container.TextureLoader(c)
	h.ImageSize = c.Size
	return h
}

// resolve 仅支持本地路径与 file:// 地址。
func (c *Cache) resolve(src, baseURL string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("图片地址为空")
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("图片地址 %q 无效: %w", src, err)
	}
	if baseURL != "" && !ref.IsAbs() {
		if base, err := url.Parse(baseURL); err == nil {
			ref = base.ResolveReference(ref)
		}
	}
	switch ref.Scheme {
	case "", "file":
	default:
		return "", fmt.Errorf("不支持的图片地址 %s", ref.String())
	}
	path := filepath.FromSlash(ref.Path)
	if !filepath.IsAbs(path) && c.baseDir != "" {
		path = filepath.Join(c.baseDir, strings.TrimPrefix(path, "./"))
	}
	return path, nil
}
