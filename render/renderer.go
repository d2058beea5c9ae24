// Package render 将单个项目的数据绘制为一页 A1 海报 PDF。
// 页面坐标系为左上角原点（CartesianIV），长度单位 mm；
// 与字体系统交互时在边界做 mm↔pt 换算。
package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/plakat/config"
	"github.com/ByLCY/plakat/project"
	"github.com/ByLCY/plakat/textfit"
)

const (
	// 左右两栏之间的间隔
	columnGutterMM = 15.0
	// 分区标题与正文、分区与分区之间的垂直间隔
	sectionGapMM = 12.0
	labelGapMM   = 6.0
	// 标题适配盒的高度
	titleBoxHeightMM = 90.0
	// 团队分区的高度
	teamBoxHeightMM = 70.0
)

// Renderer 按配置版式绘制海报。可在多次渲染间复用，字体缓存共享。
type Renderer struct {
	cfg     config.Config
	dir     *FontDir
	metrics *Metrics
}

// NewRenderer 创建海报渲染器。localFontDirs 为额外的字体查找目录。
func NewRenderer(cfg config.Config, localFontDirs ...string) *Renderer {
	dir := NewFontDir(localFontDirs...)
	return &Renderer{
		cfg:     cfg,
		dir:     dir,
		metrics: NewMetrics(dir),
	}
}

// Render 将一个项目绘制为单页 PDF 写入 w。imagePath 为空表示没有项目图片，
// 此时绘制占位框并记入警告。返回的警告描述截断与溢出，不中断渲染。
func (r *Renderer) Render(data project.Data, imagePath string, w io.Writer) ([]string, error) {
	cfg := r.cfg
	writer := pdf.New(w, cfg.Page.WidthMM, cfg.Page.HeightMM, nil)
	writer.SetInfo(data.ProjectName, "", "", "", "plakat")

	c := canvas.New(cfg.Page.WidthMM, cfg.Page.HeightMM)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点

	var warnings []string

	if err := r.drawImageArea(ctx, imagePath, &warnings); err != nil {
		return nil, err
	}
	if err := r.drawContent(ctx, data, &warnings); err != nil {
		return nil, err
	}
	if err := r.drawLogos(ctx, &warnings); err != nil {
		return nil, err
	}

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return warnings, nil
}

// drawImageArea 绘制顶部图片区：整页宽、固定高，cover 裁切填满或 contain 完整置入。
func (r *Renderer) drawImageArea(ctx *canvas.Context, imagePath string, warnings *[]string) error {
	areaW := r.cfg.Page.WidthMM
	areaH := r.cfg.Layout.ImageHeightMM

	if imagePath == "" {
		r.drawPlaceholder(ctx, areaW, areaH)
		return nil
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("读取图片 %s 失败: %w", imagePath, err)
	}
	img, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("解码图片 %s 失败: %w", imagePath, err)
	}

	if r.cfg.Layout.ImageFitMode == "cover" {
		if cropped, ok := cropToAspect(img, areaW/areaH); ok {
			img = cropped
		} else {
			*warnings = append(*warnings, fmt.Sprintf("图片 %s 不支持裁切，改为 contain 置入", imagePath))
		}
		drawImageFitted(ctx, img, 0, 0, areaW, areaH)
		return nil
	}

	// contain：完整置入并在区域内居中
	drawImageFitted(ctx, img, 0, 0, areaW, areaH)
	return nil
}

func (r *Renderer) drawPlaceholder(ctx *canvas.Context, areaW, areaH float64) {
	ctx.SetFillColor(canvas.Hex("#e8e8e8"))
	ctx.SetStrokeColor(canvas.Hex("#b0b0b0"))
	ctx.SetStrokeWidth(0.5)
	ctx.DrawPath(0, 0, canvas.Rectangle(areaW, areaH))

	face, err := r.dir.Face(r.cfg.Fonts.BodyFont, r.cfg.Fonts.BodySize)
	if err != nil {
		return
	}
	line := canvas.NewTextLine(face, "изображение отсутствует", canvas.Center)
	ctx.DrawText(areaW/2, areaH/2, line)
}

// drawContent 绘制图片区下方的内容区：左栏为项目名，右栏为三个分区加团队。
func (r *Renderer) drawContent(ctx *canvas.Context, data project.Data, warnings *[]string) error {
	cfg := r.cfg
	contentTop := cfg.Layout.ImageHeightMM + cfg.Layout.PaddingTopMM
	contentBottom := cfg.Page.HeightMM - cfg.Layout.PaddingBottomMM
	contentLeft := cfg.Layout.PaddingLeftMM
	contentRight := cfg.Page.WidthMM - cfg.Layout.PaddingRightMM

	rightW := cfg.Layout.TextColumnWidthMM
	rightX := contentRight - rightW
	leftW := rightX - columnGutterMM - contentLeft

	// 左栏：分区标题加项目名
	y := contentTop
	labelH, err := r.drawLabel(ctx, contentLeft, y, cfg.Labels.Project)
	if err != nil {
		return err
	}
	y += labelH + labelGapMM
	if err := r.drawFitted(ctx, box{contentLeft, y, leftW, titleBoxHeightMM},
		data.ProjectName, cfg.Fonts.TitleFont, cfg.Fonts.TitleSize, cfg.Labels.Project, warnings); err != nil {
		return err
	}

	// 右栏：三个等高分区加固定高度的团队分区
	sections := []struct {
		label string
		text  string
	}{
		{cfg.Labels.Problem, data.Problem},
		{cfg.Labels.Solution, data.Solution},
		{cfg.Labels.Product, data.Product},
	}

	labelUnit, err := r.labelHeight()
	if err != nil {
		return err
	}
	available := contentBottom - contentTop - teamBoxHeightMM - labelUnit - labelGapMM -
		float64(len(sections))*(labelUnit+labelGapMM+sectionGapMM)
	sectionH := available / float64(len(sections))
	if sectionH <= 0 {
		return fmt.Errorf("%w: 内容区高度不足以容纳全部分区", config.ErrInvalidConfig)
	}

	y = contentTop
	for _, section := range sections {
		labelH, err := r.drawLabel(ctx, rightX, y, section.label)
		if err != nil {
			return err
		}
		y += labelH + labelGapMM
		if err := r.drawFitted(ctx, box{rightX, y, rightW, sectionH},
			section.text, cfg.Fonts.BodyFont, cfg.Fonts.BodySize, section.label, warnings); err != nil {
			return err
		}
		y += sectionH + sectionGapMM
	}

	// 团队分区正文字号略小，且不低于最小字号
	teamSize := cfg.Fonts.BodySize - 2
	if teamSize < cfg.Fonts.MinFontSize {
		teamSize = cfg.Fonts.MinFontSize
	}
	labelH, err = r.drawLabel(ctx, rightX, y, cfg.Labels.Team)
	if err != nil {
		return err
	}
	y += labelH + labelGapMM
	return r.drawFitted(ctx, box{rightX, y, rightW, teamBoxHeightMM},
		data.Team, cfg.Fonts.BodyFont, teamSize, cfg.Labels.Team, warnings)
}

// box 内容盒（mm，左上角原点）。
type box struct {
	x, y, w, h float64
}

// drawLabel 以标题字体绘制分区标题，返回其行高（mm）。
func (r *Renderer) drawLabel(ctx *canvas.Context, x, y float64, text string) (float64, error) {
	face, err := r.dir.Face(r.cfg.Fonts.HeadingFont, r.cfg.Fonts.HeadingSize)
	if err != nil {
		return 0, err
	}
	metrics := face.Metrics()
	line := canvas.NewTextLine(face, text, canvas.Left)
	ctx.DrawText(x, y+toMm(metrics.Ascent), line)
	return toMm(metrics.LineHeight), nil
}

func (r *Renderer) labelHeight() (float64, error) {
	family, style := splitFaceName(r.cfg.Fonts.HeadingFont)
	h, err := r.metrics.LineHeight(textfit.FontSpec{Family: family, Style: style, Size: r.cfg.Fonts.HeadingSize})
	if err != nil {
		return 0, err
	}
	return toMm(h), nil
}

// drawFitted 在给定盒内适配并绘制文本。盒尺寸为 mm，适配请求换算为 pt；
// 截断与溢出以 field 为前缀记入警告。
func (r *Renderer) drawFitted(ctx *canvas.Context, b box, text, faceNameStr string, maxSize float64, field string, warnings *[]string) error {
	family, style := splitFaceName(faceNameStr)
	minSize := r.cfg.Fonts.MinFontSize
	if minSize > maxSize {
		minSize = maxSize
	}
	req := textfit.Request{
		Text:        text,
		BoxWidth:    toPt(b.w),
		BoxHeight:   toPt(b.h),
		Family:      family,
		Style:       style,
		MinSize:     minSize,
		MaxSize:     maxSize,
		LineSpacing: r.cfg.Fonts.LineSpacing,
	}
	result, err := textfit.Fit(r.metrics, req)
	if err != nil {
		return err
	}
	if result.Truncated {
		*warnings = append(*warnings, fmt.Sprintf("%s: 文本被截断（字号 %g）", field, result.FontSize))
	}
	if result.Overflow {
		*warnings = append(*warnings, fmt.Sprintf("%s: 文本超出边界", field))
	}

	face, err := r.dir.Face(faceNameStr, result.FontSize)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	lineStepMM := toMm(metrics.LineHeight * r.cfg.Fonts.LineSpacing)
	ascentMM := toMm(metrics.Ascent)

	cursorY := b.y
	for _, line := range result.Lines {
		if line != "" {
			textLine := canvas.NewTextLine(face, line, canvas.Left)
			ctx.DrawText(b.x, cursorY+ascentMM, textLine)
		}
		cursorY += lineStepMM
	}
	return nil
}

// drawLogos 在左下角绘制机构 logo 条，按配置高度等比缩放、横向排开。
func (r *Renderer) drawLogos(ctx *canvas.Context, warnings *[]string) error {
	cfg := r.cfg
	if len(cfg.Logos.Paths) == 0 {
		return nil
	}
	x := cfg.Layout.PaddingLeftMM
	y := cfg.Page.HeightMM - cfg.Layout.PaddingBottomMM - cfg.Logos.HeightMM
	for _, path := range cfg.Logos.Paths {
		file, err := os.Open(path)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("logo %s 读取失败，已跳过", path))
			continue
		}
		img, _, err := image.Decode(file)
		file.Close()
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("logo %s 解码失败，已跳过", path))
			continue
		}
		bounds := img.Bounds()
		if bounds.Dy() == 0 {
			continue
		}
		logoW := cfg.Logos.HeightMM * float64(bounds.Dx()) / float64(bounds.Dy())
		dpmm := float64(bounds.Dx()) / logoW
		ctx.DrawImage(x, y, img, canvas.DPMM(dpmm))
		x += logoW + cfg.Logos.SpacingMM
	}
	return nil
}

// cropToAspect 将图片裁切为目标宽高比（居中）。解码器不支持 SubImage 时返回 false。
func cropToAspect(img image.Image, aspect float64) (image.Image, bool) {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	src, ok := img.(subImager)
	if !ok {
		return img, false
	}
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return img, false
	}
	current := w / h
	rect := bounds
	if current > aspect {
		// 过宽，左右裁切
		cropW := int(h * aspect)
		offset := (bounds.Dx() - cropW) / 2
		rect = image.Rect(bounds.Min.X+offset, bounds.Min.Y, bounds.Min.X+offset+cropW, bounds.Max.Y)
	} else if current < aspect {
		// 过高，上下裁切
		cropH := int(w / aspect)
		offset := (bounds.Dy() - cropH) / 2
		rect = image.Rect(bounds.Min.X, bounds.Min.Y+offset, bounds.Max.X, bounds.Min.Y+offset+cropH)
	}
	return src.SubImage(rect), true
}

// drawImageFitted 将图片完整置入目标区域并居中（contain 语义）。
func drawImageFitted(ctx *canvas.Context, img image.Image, x, y, areaW, areaH float64) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	scaleW := areaW / float64(bounds.Dx())
	scaleH := areaH / float64(bounds.Dy())
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	drawnW := float64(bounds.Dx()) * scale
	drawnH := float64(bounds.Dy()) * scale
	offsetX := x + (areaW-drawnW)/2
	offsetY := y + (areaH-drawnH)/2
	ctx.DrawImage(offsetX, offsetY, img, canvas.DPMM(1/scale))
}

// FallbackConfig 返回将全部字面替换为内置西里尔兜底字体的配置副本，
// 用于配置字体在本机不可用时的二次尝试。
func FallbackConfig(cfg config.Config) config.Config {
	cfg.Fonts.TitleFont = FallbackFace + "-Bold"
	cfg.Fonts.HeadingFont = FallbackFace + "-Bold"
	cfg.Fonts.BodyFont = FallbackFace
	return cfg
}
