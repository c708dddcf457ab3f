package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Sweep is a DELETE statement run by the cleaner. Its single argument is
// a cutoff time computed from the run's start.
type Sweep struct {
	Name   string
	Query  string
	Cutoff func(now time.Time) time.Time
}

// ExpiredResetCodes removes password reset codes past their expiry.
var ExpiredResetCodes = Sweep{
	Name:   "reset codes",
	Query:  `DELETE FROM reset_codes WHERE expires_at < $1`,
	Cutoff: func(now time.Time) time.Time { return now },
}

// ReadNotifications removes notifications that were read and are older
// than age.
func ReadNotifications(age time.Duration) Sweep {
	return Sweep{
		Name:   "read notifications",
		Query:  `DELETE FROM notifications WHERE read AND created_at < $1`,
		Cutoff: func(now time.Time) time.Time { return now.Add(-age) },
	}
}

// StartCleaner runs sweeps every interval until ctx is done. The returned
// channel is closed once the loop has exited.
func StartCleaner(
	ctx context.Context,
	db *sqlx.DB,
	interval time.Duration,
	log *zap.Logger,
	sweeps ...Sweep,
) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UTC()
				for _, s := range sweeps {
					runSweep(ctx, db, s, now, log)
				}
			}
		}
	}()
	return done
}

func runSweep(ctx context.Context, db *sqlx.DB, s Sweep, now time.Time, log *zap.Logger) {
	res, err := db.ExecContext(ctx, s.Query, s.Cutoff(now))
	if err != nil {
		if ctx.Err() == nil {
			log.Error("cleanup failed", zap.String("sweep", s.Name), zap.Error(err))
		}
		return
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Info("cleaned up", zap.String("sweep", s.Name), zap.Int64("removed", rows))
	}
}
