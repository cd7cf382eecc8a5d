package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UncleDan/ics-to-word/internal/clock"
	"github.com/UncleDan/ics-to-word/internal/config"
	"github.com/UncleDan/ics-to-word/internal/convert"
	"github.com/UncleDan/ics-to-word/internal/ics"
	"github.com/UncleDan/ics-to-word/internal/render"
)

const teamICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:a\r\nSUMMARY:Standup\r\nDTSTART:20240301T100000\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newTestWatcher(t *testing.T, cfg *config.Config) *Watcher {
	t.Helper()
	conv := convert.New(convert.Options{Clock: &clock.MockClock{FixedNow: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}})
	rnd, err := render.ForFormat("txt", render.Options{})
	require.NoError(t, err)
	return New(cfg, conv, rnd)
}

func TestRunOnce(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	good := filepath.Join(in, "team.ics")
	require.NoError(t, os.WriteFile(good, []byte(teamICS), 0o600))
	bad := filepath.Join(in, "broken.ics")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(teamICS))
	}))
	defer feed.Close()

	cfg := config.DefaultConfig()
	cfg.Output.Dir = out
	cfg.Fetch.CacheDir = t.TempDir()
	cfg.Watch.Sources = []config.SourceConfig{
		{ID: "team", Location: good},
		{ID: "broken", Location: bad},
		{ID: "remote", Location: feed.URL + "/rota.ics", Name: "Rota"},
		{ID: "missing", Location: filepath.Join(in, "missing.ics")},
	}

	res := newTestWatcher(t, cfg).RunOnce(context.Background())

	assert.Equal(t, []string{
		filepath.Join(out, "team.Calendar.txt"),
		filepath.Join(out, "Rota.Calendar.txt"),
	}, res.Written)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], ics.ErrParse)
	assert.Contains(t, res.Errors[1].Error(), "missing")

	data, err := os.ReadFile(filepath.Join(out, "Rota.Calendar.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CALENDAR - ROTA")
}

func TestRunOnce_OutputNextToInput(t *testing.T) {
	in := t.TempDir()
	good := filepath.Join(in, "team.ics")
	require.NoError(t, os.WriteFile(good, []byte(teamICS), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "team.Calendar.txt"), []byte("stale"), 0o600))

	cfg := config.DefaultConfig()
	cfg.Watch.Sources = []config.SourceConfig{{ID: "team", Location: good}}

	res := newTestWatcher(t, cfg).RunOnce(context.Background())
	require.Empty(t, res.Errors)

	data, err := os.ReadFile(filepath.Join(in, "team.Calendar.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Standup")
}

func TestRun_InvalidCron(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Watch.Cron = "every now and then"
	err := newTestWatcher(t, cfg).Run(context.Background())
	assert.ErrorContains(t, err, "watch.cron")
}

func TestRun_StopsOnCancel(t *testing.T) {
	w := newTestWatcher(t, config.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRunOnce_SameFeedFileNameUsesID(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(teamICS))
	}))
	defer feed.Close()

	out := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = out
	cfg.Fetch.CacheDir = t.TempDir()
	cfg.Watch.Sources = []config.SourceConfig{
		{ID: "work", Location: feed.URL + "/work/basic.ics"},
		{ID: "home", Location: feed.URL + "/home/basic.ics"},
	}
	require.NoError(t, cfg.Validate())

	res := newTestWatcher(t, cfg).RunOnce(context.Background())
	require.Empty(t, res.Errors)
	assert.Equal(t, []string{
		filepath.Join(out, "work.Calendar.txt"),
		filepath.Join(out, "home.Calendar.txt"),
	}, res.Written)
}

func TestRunOnce_CollidingReportIsNotOverwritten(t *testing.T) {
	in := t.TempDir()
	a := filepath.Join(in, "a", "team.ics")
	b := filepath.Join(in, "b", "team.ics")
	for _, p := range []string{a, b} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
		require.NoError(t, os.WriteFile(p, []byte(teamICS), 0o600))
	}

	out := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = out
	cfg.Watch.Sources = []config.SourceConfig{
		{ID: "first", Location: a},
		{ID: "second", Location: b},
	}
	assert.ErrorContains(t, cfg.Validate(), "watch.sources[1]")

	res := newTestWatcher(t, cfg).RunOnce(context.Background())
	assert.Equal(t, []string{filepath.Join(out, "team.Calendar.txt")}, res.Written)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "first")
}
