package status

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	f := NewFile(filepath.Join(t.TempDir(), "bot_status.json"))
	f.now = func() time.Time { return time.Unix(1760000000, 500_000_000) }
	return f
}

func TestReadMissingFile(t *testing.T) {
	f := newTestFile(t)
	s, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, Status{}, s)
}

func TestFlagsRoundTrip(t *testing.T) {
	f := newTestFile(t)

	require.NoError(t, f.SetError(true))
	require.NoError(t, f.Flash())

	s, err := f.Read()
	require.NoError(t, err)
	assert.True(t, s.Error)
	assert.True(t, s.FlashBoth)
	assert.Equal(t, 1760000000.5, s.Timestamp)

	require.NoError(t, f.ClearFlash())
	s, err = f.Read()
	require.NoError(t, err)
	assert.True(t, s.Error)
	assert.False(t, s.FlashBoth)

	require.NoError(t, f.Reset())
	s, err = f.Read()
	require.NoError(t, err)
	assert.False(t, s.Error)
	assert.False(t, s.FlashBoth)
}

func TestFileFormat(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.SetError(true))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": true, "flash_both": false, "timestamp": 1760000000.5}`, string(data))
}

func TestCorruptFileIsReplaced(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{not json"), 0o644))

	_, err := f.Read()
	assert.Error(t, err)

	require.NoError(t, f.SetError(true))
	s, err := f.Read()
	require.NoError(t, err)
	assert.True(t, s.Error)
}

func TestConcurrentWriters(t *testing.T) {
	f := newTestFile(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.SetError(true))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Flash())
		}()
	}
	wg.Wait()

	s, err := f.Read()
	require.NoError(t, err)
	assert.True(t, s.Error)
	assert.True(t, s.FlashBoth)
}
