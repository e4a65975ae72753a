package image

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Values accepted by ui.image_preview_method
const (
	MethodAuto  = "auto"
	MethodANSI  = "ansi"
	MethodKitty = "kitty"
	MethodITerm = "iterm2"
	MethodSixel = "sixel"
	MethodNone  = "none"
)

// Methods lists every accepted method
var Methods = []string{MethodAuto, MethodANSI, MethodKitty, MethodITerm, MethodSixel, MethodNone}

// 单元格的近似像素尺寸
const (
	CellPixelWidth  = 8
	CellPixelHeight = 16

	defaultCacheEntries = 8
)

// TerminalType 终端类型
type TerminalType string

const (
	TerminalKitty   TerminalType = "kitty"
	TerminalITerm2  TerminalType = "iterm2"
	TerminalWezTerm TerminalType = "wezterm"
	TerminalGhostty TerminalType = "ghostty"
	TerminalGeneric TerminalType = "generic"
)

// GraphicsProtocol 图形协议
type GraphicsProtocol string

const (
	ProtocolKitty GraphicsProtocol = "kitty"
	ProtocolITerm GraphicsProtocol = "iterm2"
	ProtocolSixel GraphicsProtocol = "sixel"
	ProtocolANSI  GraphicsProtocol = "ansi" // 24 位色半块字符
	ProtocolNone  GraphicsProtocol = "none"
)

// Renderer 封装 rasterm 库的图片渲染功能，并按图片 ID 缓存渲染结果
type Renderer struct {
	terminal TerminalType
	protocol GraphicsProtocol

	mu         sync.Mutex
	cache      map[cacheKey]*Rendered
	order      []cacheKey
	maxEntries int
}

// NewRenderer 按配置的方法创建渲染器；auto 会检测终端，检测不到图形协议时使用 ANSI
func NewRenderer(method string) *Renderer {
	r := &Renderer{
		cache:      make(map[cacheKey]*Rendered),
		maxEntries: defaultCacheEntries,
	}

	termType, detected := DetectTerminal()
	r.terminal = termType

	switch strings.ToLower(method) {
	case MethodANSI:
		r.protocol = ProtocolANSI
	case MethodKitty:
		r.protocol = ProtocolKitty
	case MethodITerm:
		r.protocol = ProtocolITerm
	case MethodSixel:
		r.protocol = ProtocolSixel
	case MethodNone:
		r.protocol = ProtocolNone
	default:
		r.protocol = detected
		if detected == ProtocolNone {
			r.protocol = ProtocolANSI
		}
	}

	logrus.WithFields(logrus.Fields{
		"method":   method,
		"terminal": r.terminal,
		"protocol": r.protocol,
	}).Debug("Image renderer ready")
	return r
}

// DetectTerminal 检测终端类型并选择图形协议
func DetectTerminal() (TerminalType, GraphicsProtocol) {
	term := strings.ToLower(os.Getenv("TERM"))
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))

	// Kitty 终端检测
	if os.Getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty") {
		return TerminalKitty, ProtocolKitty
	}

	// Ghostty 终端检测 - 使用 Kitty 协议
	if os.Getenv("GHOSTTY") != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty") {
		return TerminalGhostty, ProtocolKitty
	}

	if termProgram == "iterm.app" {
		return TerminalITerm2, ProtocolITerm
	}

	// WezTerm 支持 iTerm2 协议
	if termProgram == "wezterm" {
		return TerminalWezTerm, ProtocolITerm
	}

	for _, sixelTerm := range []string{"xterm-sixel", "mlterm", "yaft"} {
		if strings.Contains(term, sixelTerm) {
			return TerminalGeneric, ProtocolSixel
		}
	}

	return TerminalGeneric, ProtocolNone
}

// Protocol 返回渲染器使用的协议
func (r *Renderer) Protocol() GraphicsProtocol {
	return r.protocol
}

// Graphics 报告是否使用终端图形协议（而不是字符）
func (r *Renderer) Graphics() bool {
	switch r.protocol {
	case ProtocolKitty, ProtocolITerm, ProtocolSixel:
		return true
	}
	return false
}

// RenderText 用半块字符渲染，结果可以直接嵌入 lipgloss 布局
func (r *Renderer) RenderText(path string, id uint64, cols, rows int) (*Rendered, error) {
	return r.cached(cacheKey{id: id, cols: cols, rows: rows, protocol: ProtocolANSI}, func() (*Rendered, error) {
		img, err := r.open(path)
		if err != nil {
			return nil, err
		}
		return renderANSI(img, cols, rows), nil
	})
}

// Render 用配置的协议渲染，输出需要写在终端的绝对位置上
func (r *Renderer) Render(path string, id uint64, cols, rows int) (*Rendered, error) {
	if !r.Graphics() {
		if r.protocol == ProtocolNone {
			return &Rendered{ImageID: id, Data: "Terminal image display is disabled", Cols: 34, Rows: 1, Protocol: ProtocolNone}, nil
		}
		return r.RenderText(path, id, cols, rows)
	}

	return r.cached(cacheKey{id: id, cols: cols, rows: rows, protocol: r.protocol}, func() (*Rendered, error) {
		img, err := r.open(path)
		if err != nil {
			return nil, err
		}

		// 按单元格换算像素后等比缩放
		fitted := imaging.Fit(img, max(1, cols*CellPixelWidth), max(1, rows*CellPixelHeight), imaging.Lanczos)
		b := fitted.Bounds()
		outCols := max(1, (b.Dx()+CellPixelWidth-1)/CellPixelWidth)
		outRows := max(1, (b.Dy()+CellPixelHeight-1)/CellPixelHeight)

		var out strings.Builder
		switch r.protocol {
		case ProtocolKitty:
			err = rasterm.KittyWriteImage(&out, fitted, rasterm.KittyImgOpts{
				DstCols: uint32(outCols),
				DstRows: uint32(outRows),
			})
		case ProtocolITerm:
			err = rasterm.ItermWriteImage(&out, fitted)
		case ProtocolSixel:
			// Sixel 需要调色板图像
			paletted := image.NewPaletted(b, palette.Plan9)
			draw.FloydSteinberg.Draw(paletted, b, fitted, b.Min)
			err = rasterm.SixelWriteImage(&out, paletted)
		}
		if err != nil {
			return nil, r.renderError(fmt.Errorf("failed to encode image: %w", err))
		}

		return &Rendered{ImageID: id, Data: out.String(), Cols: outCols, Rows: outRows, Protocol: r.protocol}, nil
	})
}

// Forget 丢弃某张图片的所有缓存渲染
func (r *Renderer) Forget(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, k := range r.order {
		if k.id == id {
			delete(r.cache, k)
			continue
		}
		kept = append(kept, k)
	}
	r.order = kept
}

// Cached 返回缓存条目数
func (r *Renderer) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Clear 清除终端上的图形。只有 Kitty 能精确删除，其他协议由重绘覆盖
func (r *Renderer) Clear(w io.Writer) {
	if r.protocol == ProtocolKitty {
		fmt.Fprint(w, "\033_Ga=d\033\\")
	}
}

func (r *Renderer) cached(key cacheKey, render func() (*Rendered, error)) (*Rendered, error) {
	r.mu.Lock()
	if out, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	out, err := render()
	if err != nil {
		return nil, err
	}
	out.ImageID = key.id

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[key]; !ok {
		r.cache[key] = out
		r.order = append(r.order, key)
		// 超出容量时淘汰最早的条目
		for len(r.order) > r.maxEntries {
			delete(r.cache, r.order[0])
			r.order = r.order[1:]
		}
	}
	return out, nil
}

func (r *Renderer) open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, r.renderError(fmt.Errorf("failed to open image: %w", err))
	}
	return img, nil
}

func (r *Renderer) renderError(err error) error {
	return &RenderError{Terminal: string(r.terminal), Protocol: string(r.protocol), Err: err}
}

// renderANSI 每个字符单元显示上下两个像素：前景色是上半，背景色是下半
func renderANSI(img image.Image, cols, rows int) *Rendered {
	if cols <= 0 {
		cols = 40
	}
	if rows <= 0 {
		rows = 12
	}

	fitted := imaging.Fit(img, cols, rows*2, imaging.Box)
	b := fitted.Bounds()
	w, h := b.Dx(), b.Dy()

	var out strings.Builder
	outRows := (h + 1) / 2
	for row := 0; row < outRows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := fitted.NRGBAAt(b.Min.X+x, b.Min.Y+row*2)
			if row*2+1 < h {
				bot := fitted.NRGBAAt(b.Min.X+x, b.Min.Y+row*2+1)
				fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
			} else {
				fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[49m▀", top.R, top.G, top.B)
			}
		}
		out.WriteString("\x1b[0m")
	}

	return &Rendered{Data: out.String(), Cols: w, Rows: outRows, Protocol: ProtocolANSI}
}
