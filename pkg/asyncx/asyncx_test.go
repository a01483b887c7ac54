package asyncx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSettled_KeepsOrderAndIsolatesFailures(t *testing.T) {
	results := AllSettled(context.Background(),
		func(context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		},
		func(context.Context) (string, error) { return "", errors.New("boom") },
		func(context.Context) (string, error) { panic("kaboom") },
		func(context.Context) (string, error) { return "fast", nil },
	)

	require.Len(t, results, 4)
	assert.Equal(t, "slow", results[0].Value)
	assert.True(t, results[0].OK())
	assert.EqualError(t, results[1].Err, "boom")

	var pe *PanicError
	require.ErrorAs(t, results[2].Err, &pe)
	assert.Equal(t, "kaboom", pe.Value)

	assert.Equal(t, "fast", results[3].Value)
}

func TestMapSettled(t *testing.T) {
	results := MapSettled(context.Background(), []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	got := make([]int, 0, len(results))
	for _, r := range results {
		got = append(got, r.Value)
	}
	assert.Equal(t, []int{1, 4, 9}, got)
}

func TestAllSettled_Empty(t *testing.T) {
	assert.Empty(t, AllSettled[int](context.Background()))
}
