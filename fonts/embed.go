package fonts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed dejavu
var fontFS embed.FS

// Faces 列出随二进制内置的字面名称到文件名的映射。
// DejaVu 覆盖完整西里尔字形，是海报的默认与兜底字体。
var Faces = map[string]string{
	"DejaVuSans":             "DejaVuSans.ttf",
	"DejaVuSans-Bold":        "DejaVuSans-Bold.ttf",
	"DejaVuSans-Oblique":     "DejaVuSans-Oblique.ttf",
	"DejaVuSans-BoldOblique": "DejaVuSans-BoldOblique.ttf",
	"DejaVuSerif":            "DejaVuSerif.ttf",
	"DejaVuSerif-Bold":       "DejaVuSerif-Bold.ttf",
}

// Load 返回内置字体的字节数据，name 可写为字面名称（DejaVuSans-Bold）
// 或直接的文件名（DejaVuSans-Bold.ttf）。
func Load(name string) ([]byte, error) {
	file := name
	if mapped, ok := Faces[name]; ok {
		file = mapped
	}
	file = strings.TrimPrefix(file, "dejavu/")
	data, err := fontFS.ReadFile("dejavu/" + file)
	if err != nil {
		return nil, fmt.Errorf("读取内置字体 %s 失败: %w", file, err)
	}
	return data, nil
}
