package core

import (
	"context"
	"math/rand/v2"
	"time"
)

// Clock abstracts time observation and cooperative pacing so rounds can run
// with zero real delay in tests. Sleep must honor context cancellation.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by the system clock and real timers.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Rand is the minimal randomness source consumed by agents. With a scripted
// implementation an evolution step becomes a pure function of its inputs.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type defaultRand struct{}

// DefaultRand returns a Rand backed by the shared math/rand/v2 generator,
// which is safe for concurrent use.
func DefaultRand() Rand { return defaultRand{} }

func (defaultRand) Float64() float64 { return rand.Float64() }
