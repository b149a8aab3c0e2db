package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailplane/config"
	"tailplane/model"
)

type sequence struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	rec config.Record
	err error
}

func (s *sequence) load(context.Context) (config.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	return s.steps[i].rec, s.steps[i].err
}

func mustRecord(t *testing.T, pattern string) config.Record {
	t.Helper()
	rec, err := config.New([]string{pattern}, nil, model.DarkModeClass)
	require.NoError(t, err)
	return rec
}

func TestReloadKeepsLastGood(t *testing.T) {
	first := mustRecord(t, "./*.py")
	second := mustRecord(t, "./**/*.html")
	boom := errors.New("boom")

	seq := &sequence{steps: []step{
		{rec: first},
		{rec: first},
		{err: boom},
		{rec: second},
	}}

	w := New(seq.load, 0, zerolog.Nop())
	assert.Equal(t, DefaultInterval, w.Interval())
	assert.True(t, w.Current().IsZero())

	var changes []config.Record
	var failures []error
	w.OnChange(func(rec config.Record) { changes = append(changes, rec) })
	w.OnError(func(err error) { failures = append(failures, err) })

	ctx := context.Background()

	changed, err := w.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = w.Reload(ctx)
	require.ErrorIs(t, err, boom)
	assert.False(t, changed)
	assert.True(t, w.Current().Equal(first))

	changed, err = w.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, w.Current().Equal(second))

	require.Len(t, changes, 2)
	assert.True(t, changes[0].Equal(first))
	assert.True(t, changes[1].Equal(second))
	assert.Equal(t, []error{boom}, failures)
}

func TestStartPolls(t *testing.T) {
	first := mustRecord(t, "./*.py")
	second := mustRecord(t, "./**/*.html")
	seq := &sequence{steps: []step{{rec: first}, {rec: second}}}

	w := New(seq.load, 10*time.Millisecond, zerolog.Nop())
	_, err := w.Reload(context.Background())
	require.NoError(t, err)

	changed := make(chan config.Record, 1)
	w.OnChange(func(rec config.Record) {
		select {
		case changed <- rec:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	select {
	case rec := <-changed:
		assert.True(t, rec.Equal(second))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not pick up the change")
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailwind.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"content": ["./*.py"]}`), 0o644))

	w := New(FileLoader([]string{path}), time.Second, zerolog.Nop())
	changed, err := w.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"./*.py"}, w.Current().Content())

	require.NoError(t, os.WriteFile(path, []byte(`{"content": []}`), 0o644))
	_, err = w.Reload(context.Background())
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"./*.py"}, w.Current().Content())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Reload(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
