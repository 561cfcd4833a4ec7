package concurrent

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachRunsAll(t *testing.T) {
	var sum int64
	err := ForEach([]int64{1, 2, 3, 4}, func(n int64) error {
		atomic.AddInt64(&sum, n)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), sum)
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach([]int{1, 2, 3}, func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachMuteWaitsDespiteErrors(t *testing.T) {
	var calls int64
	ForEachMute([]int{1, 2, 3}, func(int) error {
		atomic.AddInt64(&calls, 1)
		return errors.New("ignored")
	})
	assert.Equal(t, int64(3), calls)
}
