//go:build !windows

package printer

import (
	"fmt"

	"github.com/ByLCY/slip/dib"
)

// Transfer implements Transport. GDI is only available on Windows.
func (g *GDI) Transfer(dib.Transfer) error {
	return fmt.Errorf("%w: GDI 打印机 %q 仅在 Windows 上可用", ErrTransferFailure, g.printer)
}
