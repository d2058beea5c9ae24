package project

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ByLCY/plakat/config"
)

// Reader 从 xlsx 工作簿读取项目记录。列名通过配置映射，大小写不敏感。
type Reader struct {
	path string
	cols config.Columns
}

// NewReader 创建针对指定工作簿的读取器。
func NewReader(path string, cols config.Columns) *Reader {
	return &Reader{path: path, cols: cols}
}

// ReadAll 读取首个工作表中的全部记录。表头行决定列位置；
// 完全空白的行被跳过。文件级问题（缺文件、缺必需列）返回错误，
// 记录级缺失留给 Data.Validate 在批次中处理。
func (r *Reader) ReadAll() ([]Data, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿 %s 失败: %w", r.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("工作簿 %s 没有工作表", r.path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("工作簿 %s 至少需要表头行和一行数据", r.path)
	}

	indices, missing := r.findColumns(rows[0])
	if len(missing) > 0 {
		return nil, fmt.Errorf("工作簿 %s 缺少必需列: %s", r.path, strings.Join(missing, ", "))
	}

	var projects []Data
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		projects = append(projects, Data{
			ProjectID:     cell(row, indices, "project_id"),
			ProjectName:   cell(row, indices, "project_name"),
			Problem:       cell(row, indices, "problem"),
			Solution:      cell(row, indices, "solution"),
			Product:       cell(row, indices, "product"),
			Team:          cell(row, indices, "team"),
			ImageFilename: cell(row, indices, "image_filename"),
			Row:           i + 2, // 表头占第一行
		})
	}
	return projects, nil
}

// findColumns 根据表头定位各字段所在列，返回缺失的必需列。
// image_filename 列可选，缺失时按 project_id 约定查图。
func (r *Reader) findColumns(header []string) (map[string]int, []string) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	locate := func(name string) (int, bool) {
		name = strings.ToLower(strings.TrimSpace(name))
		for i, h := range normalized {
			if h == name {
				return i, true
			}
		}
		return 0, false
	}

	required := []struct {
		field  string
		column string
	}{
		{"project_id", r.cols.ProjectID},
		{"project_name", r.cols.ProjectName},
		{"problem", r.cols.Problem},
		{"solution", r.cols.Solution},
		{"product", r.cols.Product},
		{"team", r.cols.Team},
	}

	indices := map[string]int{}
	var missing []string
	for _, req := range required {
		if idx, ok := locate(req.column); ok {
			indices[req.field] = idx
		} else {
			missing = append(missing, req.column)
		}
	}
	if r.cols.ImageFilename != "" {
		if idx, ok := locate(r.cols.ImageFilename); ok {
			indices["image_filename"] = idx
		}
	}
	return indices, missing
}

func cell(row []string, indices map[string]int, field string) string {
	idx, ok := indices[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
