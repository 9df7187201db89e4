package services

import (
	"context"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
)

const (
	RateClassPost    = "post"
	RateClassComment = "comment"

	DefaultWriteCooldown = 30 * time.Second
)

type latestWriteFinder interface {
	LatestCreatedAtByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

// RateGate enforces a per-actor cooldown between writes of one class. The
// lookup and the following insert are not atomic, so two simultaneous writes
// can both pass.
type RateGate struct {
	class    string
	writes   latestWriteFinder
	cooldown time.Duration
	now      func() time.Time
}

func NewRateGate(class string, writes latestWriteFinder, cooldown time.Duration, now func() time.Time) *RateGate {
	if now == nil {
		now = time.Now
	}
	return &RateGate{class: class, writes: writes, cooldown: cooldown, now: now}
}

func (gate *RateGate) Check(ctx context.Context, actor security.Identity) error {
	if actor.Role == models.RoleSuperadmin || gate.cooldown <= 0 {
		return nil
	}

	lastWrite, found, err := gate.writes.LatestCreatedAtByAuthor(ctx, actor.ActorID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	elapsed := gate.now().Sub(lastWrite)
	if elapsed >= gate.cooldown {
		return nil
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return &RateLimitedError{Class: gate.class, RetryAfter: gate.cooldown - elapsed}
}
