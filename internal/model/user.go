package model

import "time"

// Tier is a subscription level. It decides how many comments a user may
// generate per calendar day.
type Tier string

const (
	TierFree       Tier = "free"
	TierOne        Tier = "tier1"
	TierTwo        Tier = "tier2"
	TierThree      Tier = "tier3"
	TierEnterprise Tier = "enterprise"
)

// Unlimited marks a tier with no daily cap. It is also the value the
// login response reports as `limit` for such tiers.
const Unlimited = -1

// TierLimits returns the default daily generation limits per tier. The
// quota ledger takes its own copy at construction, so the schedule is
// effectively immutable for the lifetime of the process and tests can
// inject alternate schedules. A tier missing from the schedule is
// treated by the ledger as limit 0.
func TierLimits() map[Tier]int {
	return map[Tier]int{
		TierFree:       5,
		TierOne:        30,
		TierTwo:        70,
		TierThree:      100,
		TierEnterprise: Unlimited,
	}
}

// User mirrors the `users` table. Accounts are keyed by email; there is
// no separate numeric ID. UsedCount only has meaning together with
// LastResetDate: it counts the generations consumed on that day, and a
// record whose date is behind the current day effectively holds a count
// of zero until the next commit rewrites both fields.
//
// Fields:
//  Email         – unique email address (primary key).
//  PasswordHash  – bcrypt hashed password.
//  Tier          – subscription tier, `free` at signup.
//  UsedCount     – generations consumed on LastResetDate.
//  LastResetDate – UTC calendar day the counter applies to (YYYY-MM-DD).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	Tier          Tier      // users.tier
	UsedCount     int       // users.used_count
	LastResetDate string    // users.last_reset_date, formatted YYYY-MM-DD
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}
