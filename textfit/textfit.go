// Package textfit 决定一段文本如何放进一个固定矩形：折行、缩小字号，
// 必要时截断并以省略号收尾。引擎只依赖注入的 Measurer，自身无任何状态，
// 可以并发地为互不相关的请求调用。
package textfit

import (
	"errors"
	"math"
	"strings"
)

// ErrInvalidRequest 表示请求参数本身不合法（配置错误而非数据问题），
// 调用方应当尽早终止整个批次。
var ErrInvalidRequest = errors.New("textfit: 请求参数不合法")

// sizeStep 是字号搜索的固定步长。搜索自 MaxSize 向下单调递减，
// 可行性单调保证了首个可行字号即为最大可行字号。
const sizeStep = 1.0

const ellipsis = "…"

// Request 描述一次排版适配：文本、目标盒子、字体与字号范围。
// 盒子尺寸与字号必须同单位。
type Request struct {
	Text        string
	BoxWidth    float64
	BoxHeight   float64
	Family      string
	Style       string
	MinSize     float64
	MaxSize     float64
	LineSpacing float64 // 行距系数，乘以标称行高
}

// Validate 在首次使用前做快速失败检查。
func (r Request) Validate() error {
	if r.BoxWidth <= 0 || r.BoxHeight <= 0 {
		return errors.Join(ErrInvalidRequest, errors.New("盒子尺寸必须为正"))
	}
	if r.MinSize <= 0 || r.MaxSize <= 0 || r.MinSize > r.MaxSize {
		return errors.Join(ErrInvalidRequest, errors.New("字号范围要求 0 < MinSize ≤ MaxSize"))
	}
	if r.LineSpacing <= 0 {
		return errors.Join(ErrInvalidRequest, errors.New("行距系数必须为正"))
	}
	return nil
}

// Result 是最终的渲染计划：自上而下绘制的行、实际使用的字号，
// 以及质量降级标志。引擎从不因超长文本报错，降级只通过标志位表达。
type Result struct {
	Lines     []string
	FontSize  float64
	Truncated bool // 尾部被省略号截断
	Overflow  bool // 最小字号加截断仍无法收纳（纵向或强制溢出行），由调用方决定裁剪或报错
}

// wrapResult 是单个候选字号下的折行结果，判定可行性后即丢弃。
type wrapResult struct {
	lines    []string
	height   float64
	overflow bool // 存在单词宽度超出盒宽的强制溢出行
}

func (w wrapResult) feasible(boxHeight float64) bool {
	return !w.overflow && w.height <= boxHeight
}

// Fit 在 [MinSize, MaxSize] 内寻找最大可行字号并返回渲染计划。
// 搜索自 MaxSize 向下扫描；全部不可行时取 MinSize 的结果进入截断回退。
// 唯一的错误出口是 Measurer 传播上来的错误（典型为 *FontNotFoundError）
// 与非法请求；两者都属于配置问题，不属于数据问题。
func Fit(m Measurer, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	var chosen wrapResult
	size := req.MaxSize
	for {
		last := size <= req.MinSize+1e-9
		if last {
			size = req.MinSize
		}
		wr, err := wrapAt(m, req, size)
		if err != nil {
			return Result{}, err
		}
		if wr.feasible(req.BoxHeight) {
			return Result{Lines: wr.lines, FontSize: size}, nil
		}
		if last {
			chosen = wr
			break
		}
		size -= sizeStep
	}

	return truncate(m, req, chosen)
}

// wrapAt 在给定字号下对每个段落独立做贪心折行。
// 段落以显式换行划分；空段落产生一个空行，保留原文的纵向留白意图。
// 超出盒宽的单词不做词内拆分，而是独占一行并记为强制溢出。
func wrapAt(m Measurer, req Request, size float64) (wrapResult, error) {
	font := FontSpec{Family: req.Family, Style: req.Style, Size: size}
	text := strings.ReplaceAll(req.Text, "\r\n", "\n")

	var out wrapResult
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out.lines = append(out.lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			width, err := m.TextWidth(font, candidate)
			if err != nil {
				return wrapResult{}, err
			}
			if width <= req.BoxWidth {
				current = candidate
				continue
			}
			if current != "" {
				out.lines = append(out.lines, current)
			}
			current = word
			alone, err := m.TextWidth(font, word)
			if err != nil {
				return wrapResult{}, err
			}
			if alone > req.BoxWidth {
				out.overflow = true
			}
		}
		out.lines = append(out.lines, current)
	}

	lh, err := m.LineHeight(font)
	if err != nil {
		return wrapResult{}, err
	}
	out.height = float64(len(out.lines)) * lh * req.LineSpacing
	return out, nil
}

// truncate 对 MinSize 的回退结果做截断：保留能整行放下的行数（至少一行），
// 最后一行缩成「最长前缀 + 省略号」。截断前重新核对高度，避免在临界情况下
// 不必要地丢内容。
func truncate(m Measurer, req Request, wr wrapResult) (Result, error) {
	res := Result{
		Lines:    wr.lines,
		FontSize: req.MinSize,
		Overflow: wr.overflow,
	}

	if wr.height <= req.BoxHeight {
		return res, nil
	}

	font := FontSpec{Family: req.Family, Style: req.Style, Size: req.MinSize}
	lh, err := m.LineHeight(font)
	if err != nil {
		return Result{}, err
	}
	unit := lh * req.LineSpacing
	maxLines := int(math.Floor(req.BoxHeight / unit))
	if maxLines < 1 {
		// 即使单行也纵向溢出：保留一行并交由调用方处置。
		maxLines = 1
		res.Overflow = true
	}
	if maxLines >= len(wr.lines) {
		return res, nil
	}

	kept := append([]string(nil), wr.lines[:maxLines]...)
	shortened, fits, err := shrinkWithEllipsis(m, font, kept[maxLines-1], req.BoxWidth)
	if err != nil {
		return Result{}, err
	}
	if !fits {
		res.Overflow = true
	}
	kept[maxLines-1] = shortened
	res.Lines = kept
	res.Truncated = true
	return res, nil
}

// shrinkWithEllipsis 二分查找 line 的最长前缀，使「前缀+省略号」不超过 boxWidth。
// 找不到任何非空前缀时退化为仅保留省略号并返回 fits=false。
func shrinkWithEllipsis(m Measurer, font FontSpec, line string, boxWidth float64) (string, bool, error) {
	runes := []rune(line)
	lo, hi := 0, len(runes) // 不变量：前缀长度 lo 可放下，(hi, len] 放不下
	width, err := m.TextWidth(font, line+ellipsis)
	if err != nil {
		return "", false, err
	}
	if width <= boxWidth {
		return line + ellipsis, true, nil
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		width, err := m.TextWidth(font, string(runes[:mid])+ellipsis)
		if err != nil {
			return "", false, err
		}
		if width <= boxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	prefix := strings.TrimRight(string(runes[:lo]), " ")
	if prefix == "" {
		return ellipsis, false, nil
	}
	return prefix + ellipsis, true, nil
}
