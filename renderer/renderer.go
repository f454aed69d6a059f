package renderer

import "github.com/ByLCY/slip/layout"

// Renderer 将排版计划输出为最终文件，例如 PDF 预览。
// Render 返回生成的二进制数据以及可能的错误；计划中的坐标单位为像素。
type Renderer interface {
	Render(plan *layout.Plan) ([]byte, error)
}
