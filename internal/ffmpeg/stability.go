package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Completion of a render is detected by watching the output file: it must
// exist, be non-empty, and hold a stable size across two consecutive polls.
// The wait is a bounded state machine, never an open-ended loop: after the
// poll budget is spent the caller gets ErrStabilityTimeout, which means
// "possibly still running" rather than "definitely failed".

// ErrStabilityTimeout is returned when the poll budget is exhausted before
// the output file settles.
var ErrStabilityTimeout = errors.New("output file did not stabilise within the poll budget")

type pollState int

const (
	statePending pollState = iota
	stateCompleted
	stateFailed
	stateTimedOut
)

// AwaitOutput blocks until the file at path exists with a stable non-zero
// size, the context is cancelled, or the configured poll budget runs out.
func (r *BinaryRunner) AwaitOutput(ctx context.Context, path string) error {
	state := statePending
	var lastSize int64 = -1
	var failure error

	for attempt := 0; state == statePending; attempt++ {
		if attempt >= r.cfg.PollBudget {
			state = stateTimedOut
			break
		}

		select {
		case <-ctx.Done():
			state = stateFailed
			failure = ctx.Err()
		case <-time.After(r.cfg.PollInterval):
			fi, err := os.Stat(path)
			switch {
			case os.IsNotExist(err):
				// Still pending; the encoder may not have opened the file yet.
			case err != nil:
				state = stateFailed
				failure = fmt.Errorf("stat output file: %w", err)
			case fi.Size() > 0 && fi.Size() == lastSize:
				state = stateCompleted
			default:
				lastSize = fi.Size()
			}
		}
	}

	switch state {
	case stateCompleted:
		r.cfg.Logger.Info("output file stable", "path", path)
		return nil
	case stateTimedOut:
		return ErrStabilityTimeout
	default:
		return failure
	}
}
