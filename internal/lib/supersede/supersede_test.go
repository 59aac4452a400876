package supersede

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBegin_SupersedesSameKind(t *testing.T) {
	g := New()

	first := g.Begin(context.Background(), "identity")
	second := g.Begin(context.Background(), "identity")

	assert.False(t, first.Current())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.True(t, second.Current())
	assert.NoError(t, second.Context().Err())
}

func TestBegin_KindsAreIndependent(t *testing.T) {
	g := New()

	identity := g.Begin(context.Background(), "identity")
	generation := g.Begin(context.Background(), "generation")

	assert.True(t, identity.Current())
	assert.True(t, generation.Current())
	assert.Equal(t, 2, g.InFlight())
}

func TestDone_ReleasesOnlyOwnSlot(t *testing.T) {
	g := New()

	first := g.Begin(context.Background(), "identity")
	second := g.Begin(context.Background(), "identity")

	first.Done()
	assert.True(t, g.Busy("identity"), "stale task must not release the newer one")

	second.Done()
	assert.False(t, g.Busy("identity"))
	assert.False(t, second.Current())
}

func TestCancelAll(t *testing.T) {
	g := New()
	a := g.Begin(context.Background(), "identity")
	b := g.Begin(context.Background(), "generation")

	g.CancelAll()

	assert.False(t, a.Current())
	assert.False(t, b.Current())
	assert.Error(t, a.Context().Err())
	assert.Error(t, b.Context().Err())
	assert.Equal(t, 0, g.InFlight())
}

func TestParentCancellation(t *testing.T) {
	g := New()
	parent, cancel := context.WithCancel(context.Background())
	task := g.Begin(parent, "identity")
	cancel()

	assert.Error(t, task.Context().Err())
	assert.True(t, task.Current())
}

func TestConcurrentBegin_ExactlyOneCurrent(t *testing.T) {
	g := New()
	const n = 50

	tasks := make([]*Task, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tasks[i] = g.Begin(context.Background(), "generation")
		}(i)
	}
	wg.Wait()

	current := 0
	for _, task := range tasks {
		require.NotNil(t, task)
		if task.Current() {
			current++
		}
	}
	assert.Equal(t, 1, current)
}
