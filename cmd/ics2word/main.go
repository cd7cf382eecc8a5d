package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/UncleDan/ics-to-word/internal/config"
	"github.com/UncleDan/ics-to-word/internal/convert"
	"github.com/UncleDan/ics-to-word/internal/ics"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/output"
	"github.com/UncleDan/ics-to-word/internal/render"
	"github.com/UncleDan/ics-to-word/internal/watch"
	"github.com/UncleDan/ics-to-word/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	in         string
	out        string
	format     string
	conflict   string
	logLevel   string
	listen     string
	serve      bool
	watch      bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "ics2word: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	applyFlags(conf, flags)
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("ics2word starting", "version", version)
	appLog.Debug("effective config",
		"config_path", flags.configPath,
		"format", conf.Output.Format,
		"conflict", conf.Output.Conflict,
		"encodings", conf.Encodings,
		"listen", conf.Server.Listen,
		"watch_cron", conf.Watch.Cron,
		"watch_sources", len(conf.Watch.Sources),
		"serve", flags.serve,
		"watch", flags.watch,
	)

	conv := convert.New(convert.Options{
		Labels:         conf.Labels,
		ShowRecurrence: conf.ShowRecurrence,
		Encodings:      conf.Encodings,
	})

	switch {
	case flags.serve || flags.watch:
		return runDaemon(ctx, conf, conv, flags)
	case flags.in != "":
		path, count, err := convertOne(ctx, conf, conv, flags)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written: %s (%d events)\n", path, count)
		return nil
	default:
		return errors.New("nothing to do: pass -in <file|url>, -serve or -watch")
	}
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig
	fs := flag.NewFlagSet("ics2word", flag.ContinueOnError)

	fs.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	fs.StringVar(&cfg.in, "in", "", "Input calendar: .ics file path or http(s)/webcal URL")
	fs.StringVar(&cfg.out, "out", "", "Output file (default: <dir>/<name>.Calendar.<ext>)")
	fs.StringVar(&cfg.format, "format", "", "Output format: docx, html, pdf, md, txt, json (overrides config)")
	fs.StringVar(&cfg.conflict, "conflict", "", "When the output exists: overwrite, fail or rename (overrides config)")
	fs.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	fs.BoolVar(&cfg.serve, "serve", false, "Serve the HTTP conversion API")
	fs.BoolVar(&cfg.watch, "watch", false, "Regenerate reports for watch.sources on watch.cron")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	// A single positional argument is taken as the input.
	if cfg.in == "" && fs.NArg() == 1 {
		cfg.in = fs.Arg(0)
	}
	return cfg, nil
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ics2word", "config.yaml")
	}
	return "ics2word.yaml"
}

func applyFlags(conf *config.Config, flags flagConfig) {
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if flags.conflict != "" {
		conf.Output.Conflict = flags.conflict
	}
	if flags.listen != "" {
		conf.Server.Listen = flags.listen
	}
	switch {
	case flags.format != "":
		conf.Output.Format = flags.format
	case flags.out != "" && filepath.Ext(flags.out) != "":
		conf.Output.Format = filepath.Ext(flags.out)
	}
}

func renderOptions(conf *config.Config) render.Options {
	return render.Options{PDFTimeout: time.Duration(conf.PDF.TimeoutSeconds) * time.Second}
}

// convertOne converts a single input and returns the written path and the
// event count.
func convertOne(ctx context.Context, conf *config.Config, conv *convert.Converter, flags flagConfig) (string, int, error) {
	rnd, err := render.ForFormat(conf.Output.Format, renderOptions(conf))
	if err != nil {
		return "", 0, err
	}
	policy, err := output.ParseConflict(conf.Output.Conflict)
	if err != nil {
		return "", 0, err
	}

	src := ics.Source{ID: flags.in, Location: flags.in}
	fetched, err := ics.NewFetcher(conf.Fetch.CacheDir).Load(ctx, src)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", src.Name(), err)
	}

	doc, err := conv.ConvertBytes(ctx, src, fetched.Body)
	if err != nil {
		return "", 0, err
	}

	target := flags.out
	if target == "" {
		input := src.Location
		if src.IsRemote() {
			input = src.Name()
		}
		target = output.DefaultPath(input, conf.Output.Dir, conf.Output.Suffix, rnd.Extension())
	}
	target, err = output.Resolve(target, policy)
	if err != nil {
		return "", 0, err
	}

	err = output.Write(target, policy, func(w io.Writer) error {
		return rnd.Render(ctx, w, doc)
	})
	if err != nil {
		return "", 0, err
	}
	appLog.Info("report written", "source", src.Name(), "path", target, "format", rnd.Format(), "event_count", doc.EventCount)
	return target, doc.EventCount, nil
}

// runDaemon runs the HTTP API and/or the watcher until ctx is canceled.
func runDaemon(ctx context.Context, conf *config.Config, conv *convert.Converter, flags flagConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 0

	if flags.watch {
		rnd, err := render.ForFormat(conf.Output.Format, renderOptions(conf))
		if err != nil {
			return err
		}
		w := watch.New(conf, conv, rnd)
		running++
		go func() { errCh <- w.Run(ctx) }()
	}
	if flags.serve {
		running++
		go func() { errCh <- web.StartServer(ctx, conf, conv) }()
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	appLog.Info("ics2word exiting")
	return firstErr
}
