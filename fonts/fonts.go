package fonts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrGlyphMetricsUnavailable 表示字体文件缺失或无法读取，进程启动时即失败，不替换为其他字体。
var ErrGlyphMetricsUnavailable = errors.New("fonts: 字形度量不可用")

// Pair 是一次渲染使用的常规体与粗体字体数据。
type Pair struct {
	Regular []byte
	Bold    []byte
	// Name 仅用于日志
	Name string
}

// Builtin 返回内置的 Go 字体（仅覆盖拉丁字符，中日韩文本需配置外部字体）。
func Builtin() Pair {
	return Pair{Regular: goregular.TTF, Bold: gobold.TTF, Name: "builtin:go"}
}

// Load 读取配置的字体路径，两者都为空时使用内置字体；只配置了常规体时粗体复用常规体。
// 路径可写为 "builtin:go" 显式选择内置字体。
func Load(regularPath, boldPath string) (Pair, error) {
	regularPath = strings.TrimSpace(regularPath)
	boldPath = strings.TrimSpace(boldPath)
	if regularPath == "" && boldPath == "" {
		return Builtin(), nil
	}
	if regularPath == "" {
		return Pair{}, fmt.Errorf("%w: 配置了粗体 %s 但缺少常规体", ErrGlyphMetricsUnavailable, boldPath)
	}
	regular, err := readFont(regularPath, goregular.TTF)
	if err != nil {
		return Pair{}, err
	}
	bold := regular
	if boldPath != "" {
		if bold, err = readFont(boldPath, gobold.TTF); err != nil {
			return Pair{}, err
		}
	}
	return Pair{Regular: regular, Bold: bold, Name: regularPath}, nil
}

func readFont(path string, builtin []byte) ([]byte, error) {
	if strings.HasPrefix(path, "builtin:") {
		return builtin, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取字体 %s 失败: %v", ErrGlyphMetricsUnavailable, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: 字体 %s 为空文件", ErrGlyphMetricsUnavailable, path)
	}
	return data, nil
}
