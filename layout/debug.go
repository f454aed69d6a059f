package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将排版指令输出为 JSON，便于对照调试图片排查坐标。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
