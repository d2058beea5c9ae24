// Package config 加载并校验海报生成的配置文档（YAML/JSON），
// 未提供的字段回落到与打印车间约定的 A1 默认版式。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 表示配置自身不自洽（例如最小字号大于初始字号）。
// 这是配置缺陷而非数据问题，批次应当在生成任何海报之前终止。
var ErrInvalidConfig = errors.New("config: 配置不合法")

// Page 页面尺寸（mm），默认 A1 竖版。
type Page struct {
	WidthMM  float64 `yaml:"width_mm" json:"width_mm"`
	HeightMM float64 `yaml:"height_mm" json:"height_mm"`
}

// Layout 版式几何（mm）。
type Layout struct {
	// 顶部图片区
	ImageHeightMM float64 `yaml:"image_height_mm" json:"image_height_mm"`
	ImageFitMode  string  `yaml:"image_fit_mode" json:"image_fit_mode"` // cover（填满可裁切）或 contain（完整置入）

	// 底部内容区内边距
	PaddingLeftMM   float64 `yaml:"content_padding_left_mm" json:"content_padding_left_mm"`
	PaddingRightMM  float64 `yaml:"content_padding_right_mm" json:"content_padding_right_mm"`
	PaddingTopMM    float64 `yaml:"content_padding_top_mm" json:"content_padding_top_mm"`
	PaddingBottomMM float64 `yaml:"content_padding_bottom_mm" json:"content_padding_bottom_mm"`

	// 右侧文字栏
	TextColumnWidthMM float64 `yaml:"text_column_width_mm" json:"text_column_width_mm"`
}

// Fonts 字体配置。字面名称采用「字族-字形」写法（如 DejaVuSans-Bold），
// 字号单位为 pt。
type Fonts struct {
	TitleFont   string  `yaml:"title_font" json:"title_font"`
	TitleSize   float64 `yaml:"title_size" json:"title_size"`
	HeadingFont string  `yaml:"heading_font" json:"heading_font"`
	HeadingSize float64 `yaml:"heading_size" json:"heading_size"`
	BodyFont    string  `yaml:"body_font" json:"body_font"`
	BodySize    float64 `yaml:"body_size" json:"body_size"`

	MinFontSize float64 `yaml:"min_font_size" json:"min_font_size"` // 截断前允许缩小到的最小字号
	LineSpacing float64 `yaml:"line_spacing" json:"line_spacing"`
}

// Columns 表格列名到海报字段的映射。
type Columns struct {
	ProjectID     string `yaml:"project_id" json:"project_id"`
	ProjectName   string `yaml:"project_name" json:"project_name"`
	Problem       string `yaml:"problem" json:"problem"`
	Solution      string `yaml:"solution" json:"solution"`
	Product       string `yaml:"product" json:"product"`
	Team          string `yaml:"team" json:"team"`
	ImageFilename string `yaml:"image_filename" json:"image_filename"` // 可选列
}

// Output 输出命名与目录。目录与命名模板可被环境变量覆盖，
// 便于打包运行时不改配置文件。
type Output struct {
	NamingPattern string `yaml:"naming_pattern" json:"naming_pattern" env:"PLAKAT_NAMING_PATTERN"`
	Folder        string `yaml:"output_folder" json:"output_folder" env:"PLAKAT_OUTPUT_DIR"`
}

// Logos 左下角机构 logo 条。
type Logos struct {
	Paths     []string `yaml:"paths" json:"paths"`
	HeightMM  float64  `yaml:"height_mm" json:"height_mm"`
	SpacingMM float64  `yaml:"spacing_mm" json:"spacing_mm"`
}

// Labels 海报各分区的标题文案，默认俄文。
type Labels struct {
	Project  string `yaml:"project" json:"project"`
	Problem  string `yaml:"problem" json:"problem"`
	Solution string `yaml:"solution" json:"solution"`
	Product  string `yaml:"product" json:"product"`
	Team     string `yaml:"team" json:"team"`
}

// Config 聚合全部配置段。
type Config struct {
	Page    Page    `yaml:"page" json:"page"`
	Layout  Layout  `yaml:"layout" json:"layout"`
	Fonts   Fonts   `yaml:"fonts" json:"fonts"`
	Columns Columns `yaml:"columns" json:"columns"`
	Output  Output  `yaml:"output" json:"output"`
	Logos   Logos   `yaml:"logos" json:"logos"`
	Labels  Labels  `yaml:"labels" json:"labels"`
}

// Default 返回默认配置：A1 竖版、DejaVu 字体、西里尔文案。
func Default() Config {
	return Config{
		Page: Page{WidthMM: 594, HeightMM: 841},
		Layout: Layout{
			ImageHeightMM:     434,
			ImageFitMode:      "cover",
			PaddingLeftMM:     40,
			PaddingRightMM:    40,
			PaddingTopMM:      20,
			PaddingBottomMM:   20,
			TextColumnWidthMM: 225,
		},
		Fonts: Fonts{
			TitleFont:   "DejaVuSans-Bold",
			TitleSize:   48,
			HeadingFont: "DejaVuSans-Bold",
			HeadingSize: 24,
			BodyFont:    "DejaVuSans",
			BodySize:    18,
			MinFontSize: 10,
			LineSpacing: 1.2,
		},
		Columns: Columns{
			ProjectID:     "project_id",
			ProjectName:   "project_name",
			Problem:       "problem",
			Solution:      "solution",
			Product:       "product",
			Team:          "team",
			ImageFilename: "image_filename",
		},
		Output: Output{
			NamingPattern: "{project_id}_{project_name}",
			Folder:        "output",
		},
		Logos: Logos{HeightMM: 40, SpacingMM: 10},
		Labels: Labels{
			Project:  "Проект",
			Problem:  "Проблема",
			Solution: "Решение",
			Product:  "Продукт",
			Team:     "Команда",
		},
	}
}

// Load 读取配置文件（按扩展名识别 YAML/JSON），再应用环境变量覆盖。
// path 为空时依次探测 config.yaml / config.yml / config.json，均不存在则用默认值。
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.yml", "config.json"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("解析 YAML 配置 %s 失败: %w", path, err)
			}
		case ".json":
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("解析 JSON 配置 %s 失败: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("%w: 不支持的配置格式 %s", ErrInvalidConfig, filepath.Ext(path))
		}
	}

	// 环境变量覆盖均为可选；没有任何变量被设置不算错误。
	_ = envdecode.Decode(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 提前检查会导致排版请求非法的配置项，
// 对应引擎侧的快速失败约定：配置坏了就不要开始批次。
func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Page.WidthMM <= 0 || c.Page.HeightMM <= 0 {
		return fail("页面尺寸必须为正: %gx%g", c.Page.WidthMM, c.Page.HeightMM)
	}
	if c.Layout.ImageHeightMM <= 0 || c.Layout.ImageHeightMM >= c.Page.HeightMM {
		return fail("图片区高度 %gmm 超出页面", c.Layout.ImageHeightMM)
	}
	if mode := c.Layout.ImageFitMode; mode != "cover" && mode != "contain" {
		return fail("image_fit_mode 只支持 cover/contain，得到 %q", mode)
	}
	if c.Layout.TextColumnWidthMM <= 0 ||
		c.Layout.TextColumnWidthMM >= c.Page.WidthMM-c.Layout.PaddingLeftMM-c.Layout.PaddingRightMM {
		return fail("文字栏宽度 %gmm 与页边距冲突", c.Layout.TextColumnWidthMM)
	}
	if c.Fonts.MinFontSize <= 0 {
		return fail("最小字号必须为正")
	}
	for _, pair := range []struct {
		name string
		size float64
	}{
		{"title_size", c.Fonts.TitleSize},
		{"heading_size", c.Fonts.HeadingSize},
		{"body_size", c.Fonts.BodySize},
	} {
		if pair.size < c.Fonts.MinFontSize {
			return fail("%s (%g) 小于 min_font_size (%g)", pair.name, pair.size, c.Fonts.MinFontSize)
		}
	}
	if c.Fonts.LineSpacing <= 0 {
		return fail("行距系数必须为正")
	}
	if c.Output.NamingPattern == "" {
		return fail("naming_pattern 不能为空")
	}
	return nil
}
