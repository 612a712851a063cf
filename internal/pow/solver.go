package pow

import (
	"context"
	"fmt"
	"strconv"
)

// Solve brute-forces a solution for the given challenge: it iterates a
// counter, rendered as a 16-digit zero-padded hex string, until the digest
// of nonce || solution || timestamp meets the difficulty.
//
// The search is unbounded in expectation (difficulty d takes ~2^d
// iterations), so it checks ctx between iterations and returns ctx.Err()
// when the caller gives up.
func Solve(ctx context.Context, c *Challenge) (string, error) {
	ts := strconv.FormatInt(c.Timestamp, 10)

	for counter := uint64(0); ; counter++ {
		if counter%4096 == 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
		}

		solution := fmt.Sprintf("%016x", counter)
		if HashMeetsDifficulty(digest(c.Nonce, solution, ts), c.Difficulty) {
			return solution, nil
		}
	}
}
