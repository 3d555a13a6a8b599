package atlas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/imweb/fonts"
)

// IsFontFile reports whether name looks like a font file path.
func IsFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}

func (r Resource) load(baseDir string) ([]byte, error) {
	if len(r.Bytes) > 0 {
		return r.Bytes, nil
	}
	if r.Path == "" {
		return nil, fmt.Errorf("%w: 资源为空", ErrFontNotFound)
	}
	path := r.Path
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
	}
	return data, nil
}

// loadFontBytes 解析字体来源：built-in:<name>（注入资源）、embed:<name>（内置字体）或文件路径。
func (a *Atlas) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: 缺少 src", ErrFontNotFound)
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := a.blobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("%w: 找不到内置字体资源 built-in:%s", ErrFontNotFound, name)
	}
	if strings.HasPrefix(src, "embed:") {
		data, err := fonts.Load(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
		}
		return data, nil
	}
	return Resource{Path: src}.load(a.baseDir)
}
