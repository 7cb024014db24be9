package rfcgrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinConditionUnboundedRelease(t *testing.T) {
	j := newJoinCondition()
	released := make(chan bool, 1)
	go func() { released <- j.wait(nil) }()

	select {
	case <-released:
		t.Fatal("wait returned before release")
	case <-time.After(20 * time.Millisecond):
	}

	j.release()
	require.True(t, <-released)
}

func TestJoinConditionTimeoutElapses(t *testing.T) {
	j := newJoinCondition()
	deadline := time.Now().Add(10 * time.Millisecond)
	assert.False(t, j.wait(&deadline))
}

func TestJoinConditionReleaseBeforeDeadline(t *testing.T) {
	j := newJoinCondition()
	deadline := time.Now().Add(time.Second)
	go func() {
		time.Sleep(5 * time.Millisecond)
		j.release()
	}()
	assert.True(t, j.wait(&deadline))
}

func TestJoinConditionReleaseIsIdempotent(t *testing.T) {
	j := newJoinCondition()
	assert.NotPanics(t, func() {
		j.release()
		j.release()
	})
	assert.True(t, j.wait(nil))
}

func TestJoinConditionPastDeadlineWithoutRelease(t *testing.T) {
	j := newJoinCondition()
	past := time.Now().Add(-time.Second)
	assert.False(t, j.wait(&past))
}
