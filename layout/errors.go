package layout

import "errors"

// ErrInvalidLayoutParameter 表示文档中存在非正字号、未知对齐等无法排版的参数。
var ErrInvalidLayoutParameter = errors.New("layout: 无效的排版参数")
