package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// 编辑器保存往往是多次写事件，合并窗口内的事件只触发一次重跑。
const watchDebounce = 500 * time.Millisecond

// Watch 监听表格文件的变更，每次保存后调用 run 重新生成整个批次。
// 监听目录而非文件本身：Excel 保存时常用「写临时文件再改名」，
// 旧文件上的 watch 会随之失效。阻塞直到 ctx 取消。
func Watch(ctx context.Context, workbook string, log *slog.Logger, run func(context.Context) error) error {
	if log == nil {
		log = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(workbook)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("监听目录 %s 失败: %w", dir, err)
	}
	target := filepath.Base(workbook)
	log.Info("进入监听模式", "workbook", workbook)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("文件监听错误", "error", err)
		case <-timerC:
			log.Info("检测到表格变更，重新生成批次", "workbook", workbook)
			if err := run(ctx); err != nil {
				// 批次级失败在监听模式下只记录，等待下一次变更
				log.Error("批次失败", "error", err)
			}
		}
	}
}
