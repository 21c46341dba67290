package workerpool

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestPoolRunsEveryTask(t *testing.T) {
	pool := New(Config{Name: "test", Workers: 4, QueueSize: 16})

	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		pool.Submit(func(context.Context) error {
			ran.Inc()
			return nil
		})
	}
	pool.Wait()

	assert.Equal(t, int64(100), ran.Load())
	assert.Equal(t, uint64(100), pool.Completed())
	assert.Equal(t, uint64(0), pool.Failed())
}

func TestPoolCountsFailures(t *testing.T) {
	pool := New(Config{Name: "test", Workers: 2})

	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func(context.Context) error {
			if i%2 == 0 {
				return errors.New("boom")
			}
			return nil
		})
	}
	pool.Wait()

	assert.Equal(t, uint64(5), pool.Completed())
	assert.Equal(t, uint64(5), pool.Failed())
}
