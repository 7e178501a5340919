package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndLookup(t *testing.T) {
	r := New()

	_, err := r.Lookup("oracle")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "oracle", notFound.Name)

	require.NoError(t, r.Record("oracle", "0xAAA"))
	h, err := r.Lookup("oracle")
	require.NoError(t, err)
	assert.Equal(t, component.Handle("0xAAA"), h)
	assert.True(t, r.Has("oracle"))
	assert.Equal(t, 1, r.Len())
}

func TestRecord_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Record("oracle", "0xAAA"))

	err := r.Record("oracle", "0xBBB")
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "oracle", dup.Name)
	assert.EqualError(t, err, `component "oracle" already resolved to "0xAAA"`)

	h, err := r.Lookup("oracle")
	require.NoError(t, err)
	assert.Equal(t, component.Handle("0xAAA"), h, "first handle must be kept")
}

func TestAll_RecordingOrderAndRestartable(t *testing.T) {
	r := New()
	require.NoError(t, r.Record("oracle", "0xAAA"))
	require.NoError(t, r.Record("coin", "0xBBB"))

	collect := func() []string {
		var out []string
		for name, h := range r.All() {
			out = append(out, name+"="+h.String())
		}
		return out
	}

	want := []string{"oracle=0xAAA", "coin=0xBBB"}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect(), "sequence must be restartable")
}

func TestAll_EarlyBreak(t *testing.T) {
	r := New()
	require.NoError(t, r.Record("a", "1"))
	require.NoError(t, r.Record("b", "2"))

	var seen []string
	for name := range r.All() {
		seen = append(seen, name)
		break
	}
	assert.Equal(t, []string{"a"}, seen)
}

func TestAll_SnapshotIsolatedFromLaterWrites(t *testing.T) {
	r := New()
	require.NoError(t, r.Record("a", "1"))

	var seen []string
	for name := range r.All() {
		seen = append(seen, name)
		require.NoError(t, r.Record("b", "2"))
	}
	assert.Equal(t, []string{"a"}, seen)
	assert.Equal(t, 2, r.Len())
}

func TestNewFrom(t *testing.T) {
	r := NewFrom(map[string]component.Handle{"oracle": "0xAAA", "feed": "0xCCC"})

	var names []string
	for name := range r.All() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"feed", "oracle"}, names)
	assert.Error(t, r.Record("oracle", "0xDDD"))
	assert.Equal(t, map[string]component.Handle{"oracle": "0xAAA", "feed": "0xCCC"}, r.Snapshot())
}

func TestRecord_ConcurrentWritersSingleWinner(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := r.Record("shared", component.Handle(fmt.Sprintf("0x%d", i))); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			_ = r.Record(fmt.Sprintf("own-%d", i), "0x0")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 33, r.Len())
}
