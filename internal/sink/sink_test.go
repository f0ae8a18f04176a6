package sink

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/plint/internal/types"
)

func TestSinkSequential(t *testing.T) {
	t.Parallel()
	s := New()
	assert.Empty(t, s.Drain())

	for i := 0; i < 3; i++ {
		s.Add(tt.Diagnostic{Message: fmt.Sprint(i)})
	}
	assert.Equal(t, 3, s.Len())

	got := s.Drain()
	require.Len(t, got, 3)
	for i, d := range got {
		assert.Equal(t, fmt.Sprint(i), d.Message)
	}

	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Drain())
}

func TestSinkConcurrentAddKeepsPerProducerOrder(t *testing.T) {
	t.Parallel()
	const (
		producers = 8
		perEach   = 500
	)

	s := New()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perEach; i++ {
				s.Add(tt.Diagnostic{
					Plugin:  tt.PluginRef{Name: "producer", ID: id},
					Message: fmt.Sprint(i),
				})
			}
		}(p)
	}
	wg.Wait()

	got := s.Drain()
	require.Len(t, got, producers*perEach)

	next := make(map[int]int, producers)
	for _, d := range got {
		id := d.Plugin.ID
		assert.Equal(t, fmt.Sprint(next[id]), d.Message, "producer %d out of order", id)
		next[id]++
	}
	for p := 0; p < producers; p++ {
		assert.Equal(t, perEach, next[p], "producer %d lost or duplicated entries", p)
	}
}
