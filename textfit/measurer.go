package textfit

import "fmt"

// FontSpec 是测量用的字体键：字族、字形标签与字号。
// 构造后不可变，引擎不关心它如何解析为真实字形数据。
type FontSpec struct {
	Family string
	Style  string
	Size   float64
}

// Measurer 提供字体度量能力。实现必须是纯函数：相同输入永远得到相同输出。
// 宽度与行高的单位必须与 Request 中盒子尺寸一致。
type Measurer interface {
	// TextWidth 返回 text 在 font 下单行渲染（不折行）的宽度。
	TextWidth(font FontSpec, text string) (float64, error)
	// LineHeight 返回 font 下的标称单行高度（来源于字体 ascent/descent 度量，
	// 不同字族在同一字号下行高不同）。
	LineHeight(font FontSpec) (float64, error)
}

// FontNotFoundError 表示字族/字形无法被底层字体系统解析。
// 引擎不会吞掉该错误，由调用方决定回退字体策略。
type FontNotFoundError struct {
	Family string
	Style  string
}

func (e *FontNotFoundError) Error() string {
	if e.Style == "" {
		return fmt.Sprintf("字体 %s 未找到", e.Family)
	}
	return fmt.Sprintf("字体 %s (%s) 未找到", e.Family, e.Style)
}
