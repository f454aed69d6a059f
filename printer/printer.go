// Package printer ships a rendered receipt to a device.
package printer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ByLCY/slip/dib"
)

// ErrTransferFailure 表示无法获得设备或设备拒绝了位图传输。画布与调试文件不受影响。
var ErrTransferFailure = errors.New("printer: 位图传输失败")

// Transport 接收一次 DIB 传输；失败时返回包装了 ErrTransferFailure 的错误，不做重试。
type Transport interface {
	Transfer(t dib.Transfer) error
}

// Options 选择并配置传输方式。
type Options struct {
	// Transport 为 gdi、escpos、file 或 none。
	Transport string
	// Name 是 GDI 打印机名称。
	Name string
	// Device 是 escpos 设备路径或 file 的输出路径。
	Device string
	// DocName 是打印队列中显示的文档名。
	DocName string
	// MaxDots 限制 escpos 每行点数，0 表示不限制。
	MaxDots int
	// Cut 在 escpos 打印结束后切纸。
	Cut bool
	Logger *zap.Logger
}

// New 根据 Options 构造传输方式，并附带日志记录。
func New(opts Options) (Transport, error) {
	var t Transport
	switch kind := strings.ToLower(strings.TrimSpace(opts.Transport)); kind {
	case "gdi":
		if opts.Name == "" {
			return nil, fmt.Errorf("printer: gdi 需要打印机名称")
		}
		t = NewGDI(opts.Name, opts.DocName)
	case "escpos":
		if opts.Device == "" {
			return nil, fmt.Errorf("printer: escpos 需要设备路径")
		}
		t = NewESCPOSDevice(opts.Device, ESCPOSOptions{MaxDots: opts.MaxDots, Cut: opts.Cut})
	case "file":
		if opts.Device == "" {
			return nil, fmt.Errorf("printer: file 需要输出路径")
		}
		t = SpoolFile(opts.Device)
	case "", "none":
		t = Discard{}
	default:
		return nil, fmt.Errorf("printer: 未知的传输方式 %q", opts.Transport)
	}
	if opts.Logger == nil {
		return t, nil
	}
	return &logged{next: t, kind: opts.Transport, log: opts.Logger}, nil
}

// Discard 丢弃所有传输，用于只生成调试文件的运行。
type Discard struct{}

// Transfer implements Transport.
func (Discard) Transfer(dib.Transfer) error { return nil }

type logged struct {
	next Transport
	kind string
	log  *zap.Logger
}

func (l *logged) Transfer(t dib.Transfer) error {
	start := time.Now()
	fields := []zap.Field{
		zap.String("transport", l.kind),
		zap.Int("width", int(t.Header.Width)),
		zap.Int("rows", t.Header.Rows()),
		zap.Stringer("dst", t.Dst),
	}
	l.log.Debug("开始传输位图", fields...)
	err := l.next.Transfer(t)
	fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		l.log.Error("位图传输失败", append(fields, zap.Error(err))...)
		return err
	}
	l.log.Info("位图传输完成", fields...)
	return nil
}
