package generator

import "time"

// Config drives the synthetic data generator.
type Config struct {
	NumClients          int
	TrendMonths         int
	MissingRecordChance float64
	Seed                int64
	// Now anchors generated timestamps and trend months. Zero means time.Now.
	Now time.Time
}

// MaxClients bounds NumClients so generated national ids stay unique.
const MaxClients = 9999

// DefaultConfig returns baseline settings for a demo portfolio.
func DefaultConfig() Config {
	return Config{
		NumClients:          200,
		TrendMonths:         12,
		MissingRecordChance: 0.15,
		Seed:                42,
	}
}
