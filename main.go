package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ByLCY/plakat/batch"
	"github.com/ByLCY/plakat/config"
	"github.com/ByLCY/plakat/project"
	"github.com/ByLCY/plakat/render"
)

func main() {
	input := flag.String("in", "", "项目表格路径或所在目录（默认在当前目录探测 "+project.ExpectedWorkbookName+"）")
	imagesDir := flag.String("images", "", "项目配图目录（默认自动探测）")
	output := flag.String("out", "", "PDF 输出目录（覆盖配置中的 output_folder）")
	configPath := flag.String("config", "", "配置文件路径（YAML/JSON，默认探测 config.yaml）")
	only := flag.String("only", "", "只生成指定项目，逗号分隔的 project_id 列表")
	jobs := flag.Int("jobs", 4, "并行渲染的项目数")
	watch := flag.Bool("watch", false, "监听表格变更并自动重新生成")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *input, *imagesDir, *output, *configPath, *only, *jobs, *watch, log); err != nil {
		log.Error("批次失败", "error", err)
		os.Exit(1)
	}
}

// run 串联配置加载、素材探测、表格读取与批次渲染。
func run(ctx context.Context, input, imagesDir, output, configPath, only string, jobs int, watchMode bool, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Output.Folder = output
	}

	workbook, err := resolveWorkbook(input)
	if err != nil {
		return err
	}
	base := filepath.Dir(workbook)

	if imagesDir == "" {
		imagesDir, err = project.FindImagesDir(base)
		if err != nil {
			log.Warn("未找到配图目录，海报将使用占位框", "base", base)
			imagesDir = base
		}
	}
	log.Info("批次素材就绪", "workbook", workbook, "images", imagesDir, "output", cfg.Output.Folder)

	// logo 未显式配置时按命名约定在配图目录中探测
	if len(cfg.Logos.Paths) == 0 {
		if logo := project.FindLogo(imagesDir); logo != "" {
			cfg.Logos.Paths = []string{logo}
			log.Debug("发现机构 logo", "path", logo)
		}
	}

	generate := func(ctx context.Context) error {
		return runBatch(ctx, cfg, workbook, imagesDir, only, jobs, log)
	}

	if err := generate(ctx); err != nil {
		if !watchMode {
			return err
		}
		// 监听模式下首轮失败不退出，等待表格修复
		log.Error("批次失败", "error", err)
	}
	if watchMode {
		return batch.Watch(ctx, workbook, log, generate)
	}
	return nil
}

func runBatch(ctx context.Context, cfg config.Config, workbook, imagesDir, only string, jobs int, log *slog.Logger) error {
	projects, err := project.NewReader(workbook, cfg.Columns).ReadAll()
	if err != nil {
		return err
	}
	projects = filterProjects(projects, only)
	if len(projects) == 0 {
		return fmt.Errorf("表格中没有可生成的项目")
	}

	gen := render.NewRenderer(cfg, filepath.Join(filepath.Dir(workbook), "fonts"))
	fallback := render.NewRenderer(render.FallbackConfig(cfg))
	runner, err := batch.New(cfg, imagesDir, gen, fallback, jobs, log)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx, projects)
	printSummary(summary)
	return err
}

// resolveWorkbook 接受文件路径、目录路径或空值（在当前目录探测）。
func resolveWorkbook(input string) (string, error) {
	if input == "" {
		return project.FindWorkbook(".")
	}
	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("无法访问 %s: %w", input, err)
	}
	if info.IsDir() {
		return project.FindWorkbook(input)
	}
	return input, nil
}

func filterProjects(projects []project.Data, only string) []project.Data {
	if only == "" {
		return projects
	}
	wanted := map[string]bool{}
	for _, id := range strings.Split(only, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	var filtered []project.Data
	for _, p := range projects {
		if wanted[p.ProjectID] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func printSummary(s batch.Summary) {
	ok, warned, skipped, failed := s.Counts()
	fmt.Printf("\n批次完成：成功 %d，带警告 %d，跳过 %d，失败 %d\n", ok, warned, skipped, failed)
	for _, o := range s.Outcomes {
		switch {
		case o.Skipped():
			fmt.Printf("  跳过 %s（第 %d 行）：%s\n",
				o.Project.ProjectID, o.Project.Row, strings.Join(o.SkipReasons, "；"))
		case o.Err != nil:
			fmt.Printf("  失败 %s：%v\n", o.Project.ProjectID, o.Err)
		case len(o.Warnings) > 0:
			fmt.Printf("  警告 %s：%s\n", o.Project.ProjectID, strings.Join(o.Warnings, "；"))
		}
	}
}
