package binding

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时保留原占位符，方便在调试图片中直接看到缺失的字段。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Resolve(data, path)
		if !ok {
			return match
		}
		return format(val)
	})
}

// Resolve 按 a.b[0].c 形式的路径在 data 中取值。
func Resolve(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := splitSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = field(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = index(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// Items 返回 path 指向的数组元素，供 each 循环使用。
func Items(data any, path string) ([]any, error) {
	val, ok := Resolve(data, path)
	if !ok {
		return nil, fmt.Errorf("数据中找不到 %s", path)
	}
	if val == nil {
		return nil, nil
	}
	if items, ok := val.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%s 不是数组（实际为 %T）", path, val)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Scope 在 parent 之上叠加一个循环变量；查找时优先使用循环变量。
func Scope(parent any, name string, value any) map[string]any {
	scope := map[string]any{}
	if m, ok := parent.(map[string]any); ok {
		for k, v := range m {
			scope[k] = v
		}
	}
	scope[name] = value
	return scope
}

func splitSegment(segment string) (string, []int, bool) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return segment, nil, true
	}
	var indexes []int
	rest = "[" + rest
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func field(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func index(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}

// format 让 JSON 中的整数不带小数点输出（1 而不是 1e+00）。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
