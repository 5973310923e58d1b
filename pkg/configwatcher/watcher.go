package configwatcher

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/pkg/logger"
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = time.Second

type ConfigReloader func(cfg *config.Config)

// Watcher 监听配置文件，写入停止 debounce 时间后重新加载并回调
type Watcher struct {
	Path     string
	Debounce time.Duration
	Reloader ConfigReloader

	watcher *fsnotify.Watcher
}

// New 监听的是配置文件所在目录：编辑器常用 rename 方式保存，直接监听文件会丢失事件
func New(configPath string, reloader ConfigReloader) (*Watcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		Path:     absPath,
		Debounce: DefaultDebounce,
		Reloader: reloader,
		watcher:  fw,
	}, nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.Path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Run 阻塞直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				// 防抖处理
				timer.Reset(w.Debounce)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(filepath.Dir(w.Path))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", w.Path))
			w.Reloader(newCfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}

// WatchConfig 创建并运行监听器
func WatchConfig(ctx context.Context, configPath string, reloader ConfigReloader) error {
	w, err := New(configPath, reloader)
	if err != nil {
		return err
	}
	w.Run(ctx)
	return nil
}
