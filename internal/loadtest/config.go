// Package loadtest drives the oracle with concurrent insights and verifies
// the resulting ledger state.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	OracleURL string        // Base URL of the oracle
	LedgerURL string        // Base URL of the ledger
	WeaverURL string        // Base URL of the weaver
	Accounts  int           // Number of distinct accounts to generate
	Insights  int           // Insights submitted per account
	Workers   int           // Number of concurrent submitters
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // Log every failure
}

// Insight is one analysis request.
type Insight struct {
	AccountID string `json:"accountId"`
	Text      string `json:"text"`
}

// Stats holds run statistics.
type Stats struct {
	InsightsGenerated int
	Submitted         int
	Accepted          int
	RateLimited       int
	Failed            int
	AccountsVerified  int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
