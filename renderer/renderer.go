package renderer

import "github.com/ByLCY/imweb/imdraw"

// Frame 是一帧待输出的绘制结果，尺寸单位为像素。
type Frame struct {
	Width  float64
	Height float64
	Title  string
	List   *imdraw.DrawList
}

// Renderer 将一帧绘制命令输出为最终文件，例如 PDF 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(frame Frame) ([]byte, error)
}
