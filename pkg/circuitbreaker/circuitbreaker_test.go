package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestBreaker(transitions *[]string) (*Breaker, *clock) {
	c := &clock{now: time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)}
	b := New(Config{
		Name:             "settings",
		FailureThreshold: 2,
		Cooldown:         time.Minute,
		Now:              c.Now,
		OnStateChange: func(_ string, from, to State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
	return b, c
}

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []string
	b, _ := newTestBreaker(&transitions)
	ctx := context.Background()

	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	var transitions []string
	b, _ := newTestBreaker(&transitions)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	require.NoError(t, b.Do(ctx, ok))
	_ = b.Do(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(&transitions)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, fail)

	c.now = c.now.Add(59 * time.Second)
	assert.ErrorIs(t, b.Do(ctx, ok), ErrOpen)

	// failed probe reopens
	c.now = c.now.Add(time.Second)
	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	// successful probe closes
	c.now = c.now.Add(time.Minute)
	require.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"closed->open", "open->half-open", "half-open->open", "open->half-open", "half-open->closed",
	}, transitions)
}

func TestBreaker_SingleHalfOpenCall(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(&transitions)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, fail)
	c.now = c.now.Add(time.Minute)

	err := b.Do(ctx, func(ctx context.Context) error {
		// a second caller while the probe is in flight fails fast
		assert.ErrorIs(t, b.Do(ctx, ok), ErrOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IgnoredErrors(t *testing.T) {
	var transitions []string
	b, _ := newTestBreaker(&transitions)
	b.cfg.IsFailure = func(err error) bool { return !errors.Is(err, errDown) }
	ctx := context.Background()

	for range 5 {
		_ = b.Do(ctx, fail)
		_ = b.Do(ctx, func(context.Context) error { return context.Canceled })
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Empty(t, transitions)
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{Name: "x"})
	assert.Equal(t, 3, b.cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.cfg.Cooldown)
	assert.Equal(t, "x", b.Name())
	assert.Equal(t, "unknown", State(9).String())
}
