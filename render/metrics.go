package render

import (
	"github.com/ByLCY/plakat/textfit"
)

// Metrics 基于 canvas 的真实字体度量实现 textfit.Measurer。
// 所有入参与返回值单位均为 pt，与 FontSpec.Size 保持一致。
type Metrics struct {
	dir *FontDir
}

// NewMetrics 创建共享字体目录的度量器。
func NewMetrics(dir *FontDir) *Metrics { return &Metrics{dir: dir} }

var _ textfit.Measurer = (*Metrics)(nil)

// TextWidth 返回单行文本的排版宽度（pt）。
func (m *Metrics) TextWidth(font textfit.FontSpec, text string) (float64, error) {
	face, err := m.dir.Face(faceName(font), font.Size)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text), nil
}

// LineHeight 返回字体的自然行高（pt），不含行距系数。
func (m *Metrics) LineHeight(font textfit.FontSpec) (float64, error) {
	face, err := m.dir.Face(faceName(font), font.Size)
	if err != nil {
		return 0, err
	}
	return face.Metrics().LineHeight, nil
}

func faceName(font textfit.FontSpec) string {
	if font.Style == "" {
		return font.Family
	}
	return font.Family + "-" + font.Style
}
