// Package batch 按批次驱动海报生成：一个项目一页 PDF，
// 单个项目的失败不影响其余项目，字体整体缺失才终止批次。
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ByLCY/plakat/config"
	"github.com/ByLCY/plakat/naming"
	"github.com/ByLCY/plakat/project"
	"github.com/ByLCY/plakat/textfit"
)

// Generator 渲染单个项目。render.Renderer 实现该接口；
// 测试中可注入替身以验证批次编排本身。
type Generator interface {
	Render(data project.Data, imagePath string, w io.Writer) ([]string, error)
}

// Outcome 是单个项目的处理结果。
type Outcome struct {
	Project     project.Data
	Output      string   // 成功时的输出路径
	Warnings    []string // 截断、溢出、缺图等非致命问题
	SkipReasons []string // 字段缺失导致的跳过
	Err         error    // 渲染失败
}

// Skipped 表示该项目因数据不完整被跳过。
func (o Outcome) Skipped() bool { return len(o.SkipReasons) > 0 }

// Summary 汇总一个批次。
type Summary struct {
	Outcomes []Outcome
}

// Counts 返回（成功、带警告、跳过、失败）四个计数。
func (s Summary) Counts() (ok, warned, skipped, failed int) {
	for _, o := range s.Outcomes {
		switch {
		case o.Skipped():
			skipped++
		case o.Err != nil:
			failed++
		case len(o.Warnings) > 0:
			warned++
		default:
			ok++
		}
	}
	return
}

// Runner 批次驱动器。并行度由 jobs 控制，字体缓存随 Generator 共享。
type Runner struct {
	cfg       config.Config
	tmpl      *naming.Template
	imagesDir string
	gen       Generator
	fallback  Generator // 配置字体不可用时的二次尝试，可为 nil
	jobs      int
	log       *slog.Logger
}

// New 创建批次驱动器。命名模板在此编译，模板不合法时批次不会开始。
func New(cfg config.Config, imagesDir string, gen, fallback Generator, jobs int, log *slog.Logger) (*Runner, error) {
	tmpl, err := naming.Compile(cfg.Output.NamingPattern)
	if err != nil {
		return nil, fmt.Errorf("命名模板不合法: %w", err)
	}
	if jobs < 1 {
		jobs = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		tmpl:      tmpl,
		imagesDir: imagesDir,
		gen:       gen,
		fallback:  fallback,
		jobs:      jobs,
		log:       log,
	}, nil
}

// Run 处理全部项目并返回汇总。返回非 nil 错误仅在批次级失败时发生：
// 输出目录不可用，或兜底字体也无法加载。
func (r *Runner) Run(ctx context.Context, projects []project.Data) (Summary, error) {
	if err := os.MkdirAll(r.cfg.Output.Folder, 0o755); err != nil {
		return Summary{}, fmt.Errorf("创建输出目录 %s 失败: %w", r.cfg.Output.Folder, err)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobs := make(chan project.Data)
	outcomes := make([]Outcome, 0, len(projects))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for data := range jobs {
				outcome, fatal := r.generateOne(data)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
				if fatal != nil {
					cancel(fatal)
					return
				}
			}
		}()
	}

feed:
	for _, data := range projects {
		select {
		case jobs <- data:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary := Summary{Outcomes: outcomes}
	if cause := context.Cause(ctx); cause != nil &&
		!errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		// 工作协程上报的批次级失败
		return summary, cause
	}
	if err := ctx.Err(); err != nil {
		// 外部取消（信号等）
		return summary, err
	}
	return summary, nil
}

// generateOne 处理单个项目。第二个返回值非 nil 表示批次级失败（兜底字体也不可用）。
// 渲染代码的 panic 在此收口为该项目的失败，不得击穿整个批次。
func (r *Runner) generateOne(data project.Data) (outcome Outcome, fatal error) {
	outcome.Project = data
	defer func() {
		if rec := recover(); rec != nil {
			outcome.Err = fmt.Errorf("渲染过程 panic: %v", rec)
			r.log.Error("渲染 panic", "project", data.ProjectID, "panic", rec)
		}
	}()

	if problems := data.Validate(); len(problems) > 0 {
		outcome.SkipReasons = problems
		r.log.Warn("项目数据不完整，已跳过", "project", data.ProjectID, "row", data.Row, "problems", problems)
		return outcome, nil
	}

	imagePath := project.FindImage(data, r.imagesDir)
	if imagePath == "" {
		outcome.Warnings = append(outcome.Warnings, "未找到项目配图")
	}

	name := naming.Sanitize(r.tmpl.Render(naming.Fields{
		ProjectID:   data.ProjectID,
		ProjectName: data.ProjectName,
	})) + ".pdf"
	outPath := filepath.Join(r.cfg.Output.Folder, name)

	var buf bytes.Buffer
	warnings, err := r.gen.Render(data, imagePath, &buf)
	var fontErr *textfit.FontNotFoundError
	if errors.As(err, &fontErr) && r.fallback != nil {
		r.log.Warn("配置字体不可用，改用内置字体重试",
			"project", data.ProjectID, "family", fontErr.Family, "style", fontErr.Style)
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("字体 %s 不可用，已改用内置字体", fontErr.Family))
		buf.Reset()
		warnings, err = r.fallback.Render(data, imagePath, &buf)
		if errors.As(err, &fontErr) {
			// 连内置字体都加载不了，环境本身坏了，终止批次
			outcome.Err = err
			return outcome, fmt.Errorf("内置兜底字体不可用: %w", err)
		}
	}
	if err != nil {
		outcome.Err = err
		r.log.Error("渲染失败", "project", data.ProjectID, "error", err)
		return outcome, nil
	}
	outcome.Warnings = append(outcome.Warnings, warnings...)

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		outcome.Err = fmt.Errorf("写入 %s 失败: %w", outPath, err)
		return outcome, nil
	}
	outcome.Output = outPath
	r.log.Info("海报已生成", "project", data.ProjectID, "output", outPath, "warnings", len(outcome.Warnings))
	return outcome, nil
}
