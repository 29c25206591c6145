package stats

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/biswa/bingo-signal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	views []models.RoomView
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Rooms() ([]models.RoomView, error) {
	f.calls.Add(1)
	return f.views, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	views := []models.RoomView{
		{Players: []string{"a", "b"}, GameStatus: models.StatusPlaying, CalledNumbers: []int{1, 2, 3}},
		{Players: []string{"c"}, GameStatus: models.StatusSetup},
		{Players: []string{"d", "e"}, GameStatus: models.StatusFinished, CalledNumbers: []int{7}},
	}

	snap := Summarize(views, now)

	assert.Equal(t, 3, snap.Rooms)
	assert.Equal(t, 5, snap.Players)
	assert.Equal(t, 4, snap.NumbersCalled)
	assert.Equal(t, map[models.GameStatus]int{
		models.StatusSetup:    1,
		models.StatusPlaying:  1,
		models.StatusFinished: 1,
	}, snap.ByStatus)
	assert.Equal(t, now, snap.SampledAt)
}

func TestSummarize_Empty(t *testing.T) {
	snap := Summarize(nil, time.Now())
	assert.Zero(t, snap.Rooms)
	assert.Equal(t, 0, snap.ByStatus[models.StatusPlaying])
	assert.Len(t, snap.ByStatus, 3)
}

func TestManager_Latest(t *testing.T) {
	src := &fakeSource{views: []models.RoomView{{Players: []string{"a"}, GameStatus: models.StatusSetup}}}
	m := New(src, time.Hour, quietLogger())

	first, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Rooms)

	src.views = nil
	cached, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Rooms, "Latest must not resample once a snapshot exists")
	assert.EqualValues(t, 1, src.calls.Load())

	fresh, err := m.Sample()
	require.NoError(t, err)
	assert.Zero(t, fresh.Rooms)
}

func TestManager_SampleError(t *testing.T) {
	m := New(&fakeSource{err: assert.AnError}, time.Hour, quietLogger())

	_, err := m.Latest()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestManager_StartStop(t *testing.T) {
	src := &fakeSource{}
	m := New(src, 5*time.Millisecond, quietLogger())

	m.Start()
	assert.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
}
