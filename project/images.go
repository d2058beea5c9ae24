package project

import (
	"os"
	"path/filepath"
	"strings"
)

// 支持的配图扩展名，按约定优先 jpg。
var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}

// FindImage 解析项目配图：优先显式的 image_filename（相对 imagesDir
// 或可直接访问的路径），否则按 <project_id>.<ext> 约定在 imagesDir 下查找。
// 找不到返回空串——缺图不是错误，海报会画占位框。
func FindImage(d Data, imagesDir string) string {
	if d.ImageFilename != "" {
		candidate := filepath.Join(imagesDir, d.ImageFilename)
		if fileExists(candidate) {
			return candidate
		}
		if fileExists(d.ImageFilename) {
			return d.ImageFilename
		}
	}
	for _, ext := range imageExts {
		for _, variant := range []string{ext, strings.ToUpper(ext)} {
			candidate := filepath.Join(imagesDir, d.ProjectID+variant)
			if fileExists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// logo 文件名匹配模式（大小写不敏感）。
var logoPatterns = []string{"logo.*", "*logo*.*", "*логотип*.*", "*polytech*.*", "*политех*.*", "*mospolytech*.*"}

// FindLogo 在 imagesDir 及其 logos/logo 子目录中按文件名模式找机构 logo；
// 多个命中时取修改时间最新的一个。
func FindLogo(imagesDir string) string {
	searchDirs := []string{
		imagesDir,
		filepath.Join(imagesDir, "logos"),
		filepath.Join(imagesDir, "logo"),
	}

	best := ""
	var bestMod int64
	for _, dir := range searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isImageFile(entry.Name()) {
				continue
			}
			if !matchesLogoPattern(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
				best = filepath.Join(dir, entry.Name())
				bestMod = mod
			}
		}
	}
	return best
}

func matchesLogoPattern(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range logoPatterns {
		if ok, _ := filepath.Match(pattern, lower); ok {
			return true
		}
	}
	return false
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
