// Package project 定义海报的数据来源：表格中的项目记录，
// 以及按命名约定解析出的配图与 logo。
package project

import "fmt"

// Data 是一行项目记录。Row 记录其在表格中的行号，便于错误报告。
type Data struct {
	ProjectID     string
	ProjectName   string
	Problem       string
	Solution      string
	Product       string
	Team          string
	ImageFilename string // 可选：显式指定配图文件名
	Row           int
}

// Validate 返回该记录缺失的字段清单，空切片表示记录完整。
// 字段级问题不是错误：由批次驱动决定跳过该项目并继续。
func (d Data) Validate() []string {
	var problems []string
	check := func(value, field string) {
		if value == "" {
			problems = append(problems, fmt.Sprintf("缺少 %s", field))
		}
	}
	check(d.ProjectID, "project_id")
	check(d.ProjectName, "project_name")
	check(d.Problem, "problem")
	check(d.Solution, "solution")
	check(d.Product, "product")
	check(d.Team, "team")
	return problems
}
