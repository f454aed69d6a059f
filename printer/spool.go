package printer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/slip/dib"
)

// SpoolFile 把传输内容写成 BMP 文件，用于无打印机的演练。目标矩形不会应用到文件中。
type SpoolFile string

// Transfer implements Transport.
func (s SpoolFile) Transfer(t dib.Transfer) error {
	path := string(s)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: 创建目录失败: %v", ErrTransferFailure, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailure, err)
	}
	if _, err := t.WriteBMP(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: 写入 %s 失败: %v", ErrTransferFailure, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailure, err)
	}
	return nil
}
