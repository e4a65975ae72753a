package image

import (
	"fmt"
)

// Rendered 是一次渲染的终端输出
type Rendered struct {
	ImageID  uint64
	Data     string           // 终端输出数据
	Cols     int              // 实际占用的列数（终端单元）
	Rows     int              // 实际占用的行数（终端单元）
	Protocol GraphicsProtocol // 实际使用的协议
}

// RenderError 渲染错误类型
type RenderError struct {
	Terminal string
	Protocol string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error on %s terminal with %s protocol: %v", e.Terminal, e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// cacheKey 渲染缓存的键：同一张预览图在同样的单元格尺寸下只渲染一次
type cacheKey struct {
	id       uint64
	cols     int
	rows     int
	protocol GraphicsProtocol
}
