// Package quota implements the usage ledger that gates comment
// generation against per-tier daily limits. The ledger owns the
// interpretation of the (used_count, last_reset_date) pair stored on a
// user record: the counter belongs to its date, and a stale date means
// today's effective count is zero no matter what the counter says.
package quota

import (
	"context"
	"time"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
)

// DayFormat is the calendar-day key stored next to the usage counter.
// Days are compared in UTC, so a request at 23:59 and one at 00:01 fall
// on different days even a minute apart.
const DayFormat = "2006-01-02"

// Day returns the UTC calendar day of t in the stored format.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Decision is the outcome of a capacity check.
//
//  Allowed – whether one more generation may be consumed today.
//  Tier    – the tier the decision was made against.
//  Limit   – the tier's daily limit (model.Unlimited for uncapped tiers,
//            0 for tiers missing from the schedule).
//  Used    – the effective count for today before this request.
type Decision struct {
	Allowed bool
	Tier    model.Tier
	Limit   int
	Used    int
}

// Store is the slice of the user store the ledger needs. *repository.UserRepo
// satisfies it; tests plug in an in-memory map.
type Store interface {
	// Get returns the record for identifier, or an error the caller can
	// map (repository.ErrUserNotFound for a missing record).
	Get(ctx context.Context, identifier string) (model.User, error)
	// CommitUsage records one consumption for the given day. It must be
	// atomic per identifier: a same-day commit increments the counter,
	// a rollover resets it to 1 and moves last_reset_date forward, and
	// concurrent commits never lose an increment.
	CommitUsage(ctx context.Context, identifier, day string) error
}

// Ledger answers "may this user consume one more generation today?" and
// records consumption. The limit schedule is fixed at construction.
type Ledger struct {
	store  Store
	limits map[model.Tier]int
}

// New builds a ledger over store with the given limit schedule. The
// schedule is copied so later mutations by the caller have no effect.
func New(store Store, limits map[model.Tier]int) *Ledger {
	m := make(map[model.Tier]int, len(limits))
	for t, n := range limits {
		m[t] = n
	}
	return &Ledger{store: store, limits: m}
}

// CheckAndReserve reports whether the user may consume one generation on
// the day of now. Nothing is written here: consumption is recorded by
// CommitConsumption only after the gated call succeeds, so a failed
// generation is never charged. The split leaves a window where two
// racing requests both observe the last unit of capacity and the limit
// is overrun by a small bounded amount; closing it would need a
// reservation that is rolled back when the generation fails.
func (l *Ledger) CheckAndReserve(ctx context.Context, identifier string, now time.Time) (Decision, error) {
	u, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Decision{}, err
	}

	used := l.EffectiveUsed(u, now)
	limit := l.LimitFor(u.Tier)

	if limit < 0 {
		// Uncapped tier: any finite count is under the limit.
		return Decision{Allowed: true, Tier: u.Tier, Limit: limit, Used: used}, nil
	}
	return Decision{Allowed: used < limit, Tier: u.Tier, Limit: limit, Used: used}, nil
}

// CommitConsumption records one unit against the day of now. Call it
// only after the gated action succeeded.
func (l *Ledger) CommitConsumption(ctx context.Context, identifier string, now time.Time) error {
	return l.store.CommitUsage(ctx, identifier, Day(now))
}

// EffectiveUsed is the consumption count for the day of now: the stored
// counter when its date matches, zero otherwise. The stored pair is only
// normalized on the next commit, never by a background sweep.
func (l *Ledger) EffectiveUsed(u model.User, now time.Time) int {
	if u.LastResetDate != Day(now) {
		return 0
	}
	return u.UsedCount
}

// LimitFor returns the daily limit for tier. Tiers absent from the
// schedule get 0, denying every request rather than failing open.
func (l *Ledger) LimitFor(tier model.Tier) int {
	limit, ok := l.limits[tier]
	if !ok {
		return 0
	}
	return limit
}
