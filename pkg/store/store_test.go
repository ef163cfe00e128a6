package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/comfort/pkg/module"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestStore_ReportAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000)

	for i := range 5 {
		require.NoError(t, s.Report(module.Reading{
			Timestamp:      base.Add(time.Duration(i) * time.Second),
			Temperature:    20 + float32(i),
			MCUTemperature: 30,
			Humidity:       50,
			Fan:            i%2 == 1,
		}))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	recent, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, float32(24), recent[0].Temperature)
	assert.Equal(t, float32(23), recent[1].Temperature)
	assert.Equal(t, float32(22), recent[2].Temperature)
	assert.True(t, recent[0].Timestamp.Equal(base.Add(4*time.Second)))
	assert.False(t, recent[0].Fan)
	assert.True(t, recent[1].Fan)

	none, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_NaNRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, module.Reading{
		Timestamp:      time.UnixMicro(1),
		Temperature:    25.5,
		MCUTemperature: math32.NaN(),
		Humidity:       math32.NaN(),
		Alarm:          true,
	}))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, float32(25.5), recent[0].Temperature)
	assert.True(t, math32.IsNaN(recent[0].MCUTemperature))
	assert.True(t, math32.IsNaN(recent[0].Humidity))
	assert.True(t, recent[0].Alarm)
}

func TestStore_Prune(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.UnixMicro(1_000_000)

	for i := range 10 {
		require.NoError(t, s.Append(ctx, module.Reading{Timestamp: base.Add(time.Duration(i) * time.Minute)}))
	}

	removed, err := s.Prune(ctx, base.Add(4*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Report(module.Reading{Timestamp: time.UnixMicro(42), Temperature: 21}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	recent, err := s.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(42), recent[0].Timestamp.UnixMicro())
}

func TestStore_Closed(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Report(module.Reading{}), ErrClosed)
	_, err := s.Recent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Count(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Prune(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_AsSink(t *testing.T) {
	s := openTemp(t)
	var sink module.Sink = module.MultiSink{s}
	require.NoError(t, sink.Report(module.Reading{Timestamp: time.Now(), Temperature: 22}))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
