package core

// scheduler.go runs background maintenance:
//   - the session sweeper removes sessions idle for longer than the TTL
//   - the audit purge deletes audit entries past the retention window
//
// Both run until their context is cancelled and never fail the process;
// errors are logged and the next tick tries again.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper removes idle sessions every SweepInterval until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context) {
	slog.Info("session sweeper started",
		"ttl", s.opts.SessionTTL,
		"interval", s.opts.SweepInterval,
	)

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.SweepExpired(ctx); n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// SweepExpired removes every session idle for longer than the TTL and
// returns how many were removed.
func (s *Service) SweepExpired(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.opts.SessionTTL {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		state := sess.state()
		s.record(ctx, sess.id, ActionSessionClose, Upload{FileName: state.FileName},
			state.Snapshot.Dataset, map[string]any{"reason": "expired"})
	}
	return len(expired)
}

// AuditPurger deletes audit entries older than a number of days.
type AuditPurger interface {
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// PurgeConfig holds configuration for the audit purge job.
type PurgeConfig struct {
	RetentionDays int           // Days to keep audit entries (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

// StartAuditPurge runs the purge immediately, then every CheckInterval,
// until ctx is cancelled. Run it in its own goroutine.
func StartAuditPurge(ctx context.Context, p AuditPurger, cfg PurgeConfig) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}

	slog.Info("audit purge scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	runAuditPurge(ctx, p, cfg.RetentionDays)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit purge scheduler stopped")
			return
		case <-ticker.C:
			runAuditPurge(ctx, p, cfg.RetentionDays)
		}
	}
}

func runAuditPurge(ctx context.Context, p AuditPurger, days int) {
	start := time.Now()
	purged, err := p.PurgeOlderThan(ctx, days)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}
	slog.Info("purged old audit entries",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
