package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpectedWorkbookName 是免参数运行模式下唯一接受的工作簿文件名。
const ExpectedWorkbookName = "project_info.xlsx"

// 常见的图片目录名，按优先级排列。
var preferredImageDirs = []string{"images", "img", "pictures", "pics"}

// xlsx 是 ZIP 容器，以 PK\x03\x04 开头。
var zipSignature = []byte{'P', 'K', 0x03, 0x04}

// FindWorkbook 在 base 下查找约定名称的工作簿并做 ZIP 签名校验，
// 排除 ~$ 之类的临时文件。
func FindWorkbook(base string) (string, error) {
	path := filepath.Join(base, ExpectedWorkbookName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("未在 %s 找到工作簿 %s", base, ExpectedWorkbookName)
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, "._") {
		return "", fmt.Errorf("工作簿 %s 是临时文件", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开工作簿 %s 失败: %w", path, err)
	}
	defer f.Close()
	sig := make([]byte, 4)
	if _, err := f.Read(sig); err != nil || !bytes.Equal(sig, zipSignature) {
		return "", fmt.Errorf("文件 %s 不是有效的 xlsx（缺少 ZIP 签名）", name)
	}
	return path, nil
}

// FindImagesDir 在 base 下定位图片目录：先尝试约定名称，
// 否则启发式地选择包含图片最多的子目录。
func FindImagesDir(base string) (string, error) {
	for _, name := range preferredImageDirs {
		dir := filepath.Join(base, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("读取目录 %s 失败: %w", base, err)
	}
	bestDir := ""
	bestCount := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch strings.ToLower(entry.Name()) {
		case "output", "fonts":
			continue
		}
		dir := filepath.Join(base, entry.Name())
		count := countImages(dir)
		if count > bestCount {
			bestDir = dir
			bestCount = count
		}
	}
	if bestDir == "" {
		return "", fmt.Errorf("未在 %s 找到图片目录（建议创建 images/）", base)
	}
	return bestDir, nil
}

func countImages(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			count++
		}
	}
	return count
}
