package clientdata

import "time"

// TTL constants per snapshot kind.
// These are added to time.Now() when storing to calculate expires_at.
const (
	TTLAssets      = time.Minute     // prices move constantly
	TTLAlerts      = time.Minute
	TTLPortfolio   = time.Minute
	TTLNews        = 5 * time.Minute
	TTLPerformance = 5 * time.Minute
	TTLInsights    = 15 * time.Minute
	TTLEvents      = time.Hour // calendar entries rarely change

	// ExpiredGrace keeps expired snapshots around as stale fallback this long
	ExpiredGrace = 24 * time.Hour
)
