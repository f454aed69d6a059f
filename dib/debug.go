package dib

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// WriteDebugImage 将完整、未缩放的画布写入 path，按扩展名选择 PNG 或 BMP，已有文件会被覆盖。
func WriteDebugImage(img image.Image, path string) error {
	if img == nil {
		return fmt.Errorf("dib: 位图为空")
	}
	var encode func(*os.File, image.Image) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		encode = func(f *os.File, img image.Image) error { return png.Encode(f, img) }
	case ".bmp":
		encode = func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }
	default:
		return fmt.Errorf("dib: 不支持的调试图片格式 %q（仅支持 .png/.bmp）", ext)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试图片 %s 失败: %w", path, err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("编码调试图片 %s 失败: %w", path, err)
	}
	return f.Close()
}
