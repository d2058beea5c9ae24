package render

import (
	"image"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/plakat/config"
	"github.com/ByLCY/plakat/textfit"
)

func TestSplitFaceName(t *testing.T) {
	cases := []struct {
		in            string
		family, style string
	}{
		{"DejaVuSans", "DejaVuSans", ""},
		{"DejaVuSans-Bold", "DejaVuSans", "Bold"},
		{"DejaVuSans-BoldOblique", "DejaVuSans", "BoldOblique"},
		{"Times-New-Roman-Bold", "Times-New-Roman", "Bold"},
	}
	for _, c := range cases {
		family, style := splitFaceName(c.in)
		if family != c.family || style != c.style {
			t.Fatalf("splitFaceName(%q) = (%q, %q), 期望 (%q, %q)", c.in, family, style, c.family, c.style)
		}
	}
}

func TestParseFontStyle(t *testing.T) {
	cases := []struct {
		in   string
		want canvas.FontStyle
	}{
		{"", canvas.FontRegular},
		{"Bold", canvas.FontBold},
		{"Oblique", canvas.FontRegular | canvas.FontItalic},
		{"BoldOblique", canvas.FontBold | canvas.FontItalic},
		{"Italic", canvas.FontRegular | canvas.FontItalic},
	}
	for _, c := range cases {
		if got := parseFontStyle(c.in); got != c.want {
			t.Fatalf("parseFontStyle(%q) = %v, 期望 %v", c.in, got, c.want)
		}
	}
}

func TestFaceName(t *testing.T) {
	if got := faceName(textfit.FontSpec{Family: "DejaVuSans"}); got != "DejaVuSans" {
		t.Fatalf("无字形时字面应为字族名，得到 %q", got)
	}
	if got := faceName(textfit.FontSpec{Family: "DejaVuSans", Style: "Bold"}); got != "DejaVuSans-Bold" {
		t.Fatalf("字面拼接错误: %q", got)
	}
}

func TestCropToAspectWide(t *testing.T) {
	// 源图 400x100，目标比例 2:1，应左右裁切为 200x100
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	cropped, ok := cropToAspect(src, 2.0)
	if !ok {
		t.Fatalf("RGBA 应支持裁切")
	}
	bounds := cropped.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 100 {
		t.Fatalf("裁切结果 %dx%d，期望 200x100", bounds.Dx(), bounds.Dy())
	}
	// 居中：左右各去掉 100
	if bounds.Min.X != 100 {
		t.Fatalf("裁切未居中，Min.X = %d", bounds.Min.X)
	}
}

func TestCropToAspectTall(t *testing.T) {
	// 源图 100x400，目标比例 2:1，应上下裁切为 100x50
	src := image.NewRGBA(image.Rect(0, 0, 100, 400))
	cropped, ok := cropToAspect(src, 2.0)
	if !ok {
		t.Fatalf("RGBA 应支持裁切")
	}
	bounds := cropped.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 50 {
		t.Fatalf("裁切结果 %dx%d，期望 100x50", bounds.Dx(), bounds.Dy())
	}
}

func TestCropToAspectAlreadyMatching(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	cropped, ok := cropToAspect(src, 2.0)
	if !ok {
		t.Fatalf("RGBA 应支持裁切")
	}
	if cropped.Bounds() != src.Bounds() {
		t.Fatalf("比例已匹配时不应裁切")
	}
}

func TestFallbackConfigSwapsAllFaces(t *testing.T) {
	cfg := config.Default()
	cfg.Fonts.TitleFont = "Arial-Bold"
	cfg.Fonts.HeadingFont = "Arial-Bold"
	cfg.Fonts.BodyFont = "Arial"

	fb := FallbackConfig(cfg)
	if fb.Fonts.TitleFont != "DejaVuSans-Bold" ||
		fb.Fonts.HeadingFont != "DejaVuSans-Bold" ||
		fb.Fonts.BodyFont != "DejaVuSans" {
		t.Fatalf("兜底配置未替换全部字面: %+v", fb.Fonts)
	}
	// 其余配置不受影响
	if fb.Page != cfg.Page || fb.Fonts.TitleSize != cfg.Fonts.TitleSize {
		t.Fatalf("兜底配置不应改动字体以外的段")
	}
}

func TestUnitConversionRoundTrip(t *testing.T) {
	for _, v := range []float64{1, 12.5, 594} {
		got := toMm(toPt(v))
		if diff := got - v; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("mm↔pt 往返误差过大: %g -> %g", v, got)
		}
	}
}
