package cli

import (
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/application"
	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/cache_fs"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/logging"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/notify_libnotify"
	"github.com/conantteo/gitlab-pipeline-app/internal/observability"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically re-aggregate and notify on status transitions",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()
		defer func() { _ = log.Sync() }()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal("config", zap.Error(err))
		}

		uc := newUseCase(cfg)
		uc.OnProjectDone = func(p domain.Project, err error) {
			if err != nil {
				log.Warn("project fetch failed",
					zap.Int64("project", p.ID),
					zap.String("name", p.Name),
					zap.Error(err),
				)
			}
		}

		var metrics *observability.Metrics
		if cfg.Metrics.Addr != "" {
			metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", observability.MetricsHandler())
				if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
					log.Warn("metrics server stopped", zap.Error(err))
				}
			}()
		}

		note := notify_libnotify.NewSoft()
		cache := cache_fs.New(cfg.Cache.Path)

		sched := application.NewScheduler(log, uc, note, cache, metrics,
			cfg.Group.ID, targetProjects(cfg), cfg.Watch.Interval, cfg.Watch.PauseFile)
		watchAndReload(cfgPath, log, sched)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log.Info("start",
			zap.String("version", version),
			zap.Int64("group", cfg.Group.ID),
			zap.Int("explicit_projects", len(targetProjects(cfg))),
			zap.Duration("every", cfg.Watch.Interval),
			zap.String("cache", cfg.Cache.Path),
			zap.String("gitlab", cfg.GitLab.BaseURL),
			zap.String("metrics", cfg.Metrics.Addr),
		)
		sched.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchAndReload swaps the scheduler's targets when the config file
// changes. Events are debounced because editors fire several per save.
func watchAndReload(cfgPath string, log *zap.Logger, sched *application.Scheduler) {
	if cfgPath == "" {
		return
	}

	dir := filepath.Dir(cfgPath)
	base := filepath.Base(cfgPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return
	}

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		fire := func() {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				return
			}
			sched.UpdateTargets(cfg.Group.ID, targetProjects(cfg))
		}

		startTimer := func() {
			if timer == nil {
				timer = time.AfterFunc(300*time.Millisecond, fire)
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(300 * time.Millisecond)
		}

		if err := w.Add(dir); err != nil {
			log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
			return
		}

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if filepath.Base(ev.Name) != base {
					continue
				}

				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					startTimer()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()
}
