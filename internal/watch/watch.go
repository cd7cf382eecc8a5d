// Package watch regenerates reports for the configured sources on a cron
// schedule.
package watch

import (
	"context"
	"fmt"
	"io"

	"github.com/robfig/cron/v3"

	"github.com/UncleDan/ics-to-word/internal/config"
	"github.com/UncleDan/ics-to-word/internal/convert"
	"github.com/UncleDan/ics-to-word/internal/ics"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/output"
	"github.com/UncleDan/ics-to-word/internal/render"
)

// Watcher converts every configured source into the output directory.
type Watcher struct {
	cfg      *config.Config
	conv     *convert.Converter
	fetcher  *ics.Fetcher
	renderer render.Renderer
}

// Result summarizes one pass over the sources.
type Result struct {
	Written []string
	Errors  []error
}

// New returns a Watcher that renders every source with rnd.
func New(cfg *config.Config, conv *convert.Converter, rnd render.Renderer) *Watcher {
	return &Watcher{
		cfg:      cfg,
		conv:     conv,
		fetcher:  ics.NewFetcher(cfg.Fetch.CacheDir),
		renderer: rnd,
	}
}

// RunOnce converts each source in turn into cfg.ReportPath, overwriting
// the previous report. A failing source is logged and recorded in the
// result; the remaining sources still run. A source whose report path was
// already claimed earlier in the pass is reported as an error, not written.
func (w *Watcher) RunOnce(ctx context.Context) Result {
	var res Result
	claimed := make(map[string]string, len(w.cfg.Watch.Sources))
	for _, sc := range w.cfg.Watch.Sources {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}
		src := sc.Source()
		target := w.cfg.ReportPath(sc, w.renderer.Extension())
		if owner, taken := claimed[target]; taken {
			err := fmt.Errorf("%s: report %s already written by %s in this pass", src.ID, target, owner)
			appLog.Error("watch: source skipped", err, "id", src.ID)
			res.Errors = append(res.Errors, err)
			continue
		}
		claimed[target] = src.ID

		path, err := w.convertSource(ctx, src, target)
		if err != nil {
			appLog.Error("watch: source failed", err, "id", src.ID)
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", src.ID, err))
			continue
		}
		res.Written = append(res.Written, path)
	}
	appLog.Info("watch pass completed", "written", len(res.Written), "failed", len(res.Errors))
	return res
}

func (w *Watcher) convertSource(ctx context.Context, src ics.Source, path string) (string, error) {
	fetched, err := w.fetcher.Load(ctx, src)
	if err != nil {
		return "", err
	}
	doc, err := w.conv.ConvertBytes(ctx, src, fetched.Body)
	if err != nil {
		return "", err
	}

	err = output.WriteAtomic(path, func(out io.Writer) error {
		return w.renderer.Render(ctx, out, doc)
	})
	if err != nil {
		return "", err
	}
	appLog.Info("watch: report written", "id", src.ID, "path", path, "event_count", doc.EventCount, "from_cache", fetched.FromCache)
	return path, nil
}

// Run runs a pass immediately, then on every tick of cfg.Watch.Cron until
// ctx is canceled. Overlapping ticks are skipped.
func (w *Watcher) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(w.cfg.Watch.Cron, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid watch.cron %q: %w", w.cfg.Watch.Cron, err)
	}

	appLog.Info("watch started", "cron", w.cfg.Watch.Cron, "sources", len(w.cfg.Watch.Sources), "format", w.renderer.Format())
	w.RunOnce(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("watch stopped")
	return nil
}

// cronLogger adapts cron's logger interface to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
