package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/monoplan/internal/cache"
	"github.com/vk/monoplan/internal/ctxlog"
	"github.com/vk/monoplan/internal/fsutil"
	"github.com/vk/monoplan/internal/planner"
	"github.com/vk/monoplan/internal/report"
)

// Run executes one dry-run planning invocation and writes the formatted
// report to the App's output writer. Nothing is executed and no cache entry
// is created or touched.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "task", appConfig.Task, "single_package", appConfig.SinglePackage)

	digester := &fsutil.Digester{Root: a.rootDir}

	var local, remote cache.Backend
	if appConfig.CacheDir != "" {
		dir := appConfig.CacheDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(a.rootDir, dir)
		}
		local = &cache.DirBackend{Dir: dir}
	}
	if appConfig.RemoteCacheURL != "" {
		remote = &cache.HTTPBackend{BaseURL: appConfig.RemoteCacheURL}
	}
	probe := cache.NewProbe(local, remote)

	p := planner.New(a.model, digester, probe, a.env, appConfig.WorkerCount)
	reports, err := p.Plan(ctx, []string{appConfig.Task}, appConfig.SinglePackage)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	a.logger.Info("Dry run planned.", "task_count", len(reports))

	out, err := report.Format(reports, report.Mode(appConfig.Format))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(a.outW, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
