package render

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/plakat/fonts"
	"github.com/ByLCY/plakat/textfit"
)

// FallbackFace 是西里尔安全的兜底字面，内置于二进制。
const FallbackFace = "DejaVuSans"

// 系统字体目录，按原样探测存在性，不存在的直接跳过。
var systemFontDirs = []string{
	"C:/Windows/Fonts",
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"~/.fonts",
	"~/.local/share/fonts",
	"/Library/Fonts",
	"/System/Library/Fonts",
	"~/Library/Fonts",
}

// 常见系统字体的字面名称到文件名映射（西里尔可用），
// 当字面既不内置也不在本地 fonts/ 目录时按此查找。
var systemFaces = map[string]string{
	"Arial":                    "arial.ttf",
	"Arial-Bold":               "arialbd.ttf",
	"Arial-Italic":             "ariali.ttf",
	"Arial-BoldItalic":         "arialbi.ttf",
	"Calibri":                  "calibri.ttf",
	"Calibri-Bold":             "calibrib.ttf",
	"TimesNewRoman":            "times.ttf",
	"TimesNewRoman-Bold":       "timesbd.ttf",
	"TimesNewRoman-Italic":     "timesi.ttf",
	"TimesNewRoman-BoldItalic": "timesbi.ttf",
}

type familyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// FontDir 解析字面名称（如 DejaVuSans-Bold）为 canvas 字体，
// 解析顺序：内置字体 → 本地目录 → 系统字体目录。
// 家族缓存按字面名称共享，Face 创建本身由 canvas 负责。
type FontDir struct {
	localDirs []string

	mu       sync.Mutex
	families map[string]*familyEntry
}

// NewFontDir 创建字体目录。localDirs 为项目自带字体目录（可为空）。
func NewFontDir(localDirs ...string) *FontDir {
	return &FontDir{
		localDirs: localDirs,
		families:  map[string]*familyEntry{},
	}
}

// Face 返回指定字面与字号（pt）的字体面。
// 字面无法解析时返回 *textfit.FontNotFoundError，由调用方决定回退。
func (d *FontDir) Face(name string, sizePt float64) (*canvas.FontFace, error) {
	entry, err := d.ensureFamily(name)
	if err != nil {
		return nil, err
	}
	return entry.family.Face(sizePt, canvas.Black, entry.style, canvas.FontNormal), nil
}

func (d *FontDir) ensureFamily(name string) (*familyEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.families[name]; ok {
		return entry, nil
	}

	data, err := d.loadFontBytes(name)
	if err != nil {
		family, style := splitFaceName(name)
		return nil, &textfit.FontNotFoundError{Family: family, Style: style}
	}

	_, styleName := splitFaceName(name)
	style := parseFontStyle(styleName)
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		fam, st := splitFaceName(name)
		return nil, &textfit.FontNotFoundError{Family: fam, Style: st}
	}

	entry := &familyEntry{family: family, style: style}
	d.families[name] = entry
	return entry, nil
}

func (d *FontDir) loadFontBytes(name string) ([]byte, error) {
	// 内置字体优先：打包分发时不依赖目标机器装了什么。
	if data, err := fonts.Load(name); err == nil {
		return data, nil
	}

	candidates := []string{name + ".ttf"}
	if mapped, ok := systemFaces[name]; ok {
		candidates = append(candidates, mapped)
	}
	if mapped, ok := fonts.Faces[name]; ok {
		candidates = append(candidates, mapped)
	}

	for _, dir := range d.localDirs {
		if path := findFontFile(dir, candidates); path != "" {
			return os.ReadFile(path)
		}
	}
	for _, dir := range systemFontDirs {
		dir = expandHome(dir)
		if path := findFontFile(dir, candidates); path != "" {
			return os.ReadFile(path)
		}
	}
	return nil, os.ErrNotExist
}

// findFontFile 在 dir 下递归查找候选文件名（大小写不敏感）。
func findFontFile(dir string, candidates []string) string {
	if _, err := os.Stat(dir); err != nil {
		return ""
	}
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	found := ""
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return fs.SkipAll
		}
		if entry.IsDir() {
			return nil
		}
		base := strings.ToLower(entry.Name())
		for _, want := range lowered {
			if base == want {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})
	return found
}

func expandHome(dir string) string {
	if !strings.HasPrefix(dir, "~") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}

// splitFaceName 将「字族-字形」字面拆开；没有字形段时字形为空。
func splitFaceName(name string) (family, style string) {
	if idx := strings.LastIndex(name, "-"); idx > 0 {
		return name[:idx], name[idx+1:]
	}
	return name, ""
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
