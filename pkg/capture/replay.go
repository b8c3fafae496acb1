package capture

import (
	"context"
	"errors"
	"io"
	"time"
)

// ReplayStats summarizes one replay run.
type ReplayStats struct {
	Records  uint64        `json:"records"`
	Bytes    uint64        `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
}

// Replay streams every frame of a capture file to dst, preserving the
// recorded gaps between frames divided by speed. A speed of 2 plays
// back twice as fast; speed <= 0 disables pacing entirely. The context
// cancels replay mid-run, including during a gap.
func Replay(ctx context.Context, path string, dst io.Writer, speed float64) (ReplayStats, error) {
	var stats ReplayStats

	r, err := NewReader(path)
	if err != nil {
		return stats, err
	}
	defer r.Close()

	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
	}()

	var prev time.Time
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		if speed > 0 && !prev.IsZero() {
			// Out-of-order timestamps get no delay
			if gap := rec.Time.Sub(prev); gap > 0 {
				if err := sleepCtx(ctx, time.Duration(float64(gap)/speed)); err != nil {
					return stats, err
				}
			}
		}
		prev = rec.Time

		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, err := dst.Write(rec.Frame); err != nil {
			return stats, err
		}
		stats.Records++
		stats.Bytes += uint64(len(rec.Frame))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
