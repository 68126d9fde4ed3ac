// Package matcher implements the pairwise waterfall comparison of asset
// fingerprints.
//
// Two fingerprints of the same category are classified into one of four
// match levels, checked highest-confidence first:
//  1. Exact: primary identifier equal and ownership equal — the only tier
//     allowed to merge with full confidence.
//  2. High: institution, last-4 digits, and ownership equal, with every
//     shared tax year's amounts within tolerance.
//  3. Possible: institution equal plus partial evidence; always routed to
//     human review, or kept separate when ownership disagrees.
//  4. Uncertain: some attribute matched but nothing stronger held; never
//     merged.
//
// The design biases toward keeping distinct records separate: an uncaught
// duplicate inflates a reviewable total, while a false merge silently
// discards data from a tax calculation.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultConfig())
//	match := engine.CompareFingerprints(fpA, fpB, "asset-a", "asset-b")
//	if match != nil && match.Recommendation == matcher.RecommendMerge {
//		// resolve the merge
//	}
package matcher

import "fmt"

// MatchLevel classifies the confidence of a pairwise fingerprint comparison,
// in decreasing confidence order.
type MatchLevel string

const (
	// MatchExact means the primary identifier and ownership matched exactly.
	MatchExact MatchLevel = "exact"
	// MatchHigh means institution, account digits, ownership, and all shared
	// year amounts lined up within tolerance.
	MatchHigh MatchLevel = "high"
	// MatchPossible means partial identifying evidence matched.
	MatchPossible MatchLevel = "possible"
	// MatchUncertain means at least one attribute matched but no stronger
	// tier qualified.
	MatchUncertain MatchLevel = "uncertain"
)

// String returns the string representation of MatchLevel
func (ml MatchLevel) String() string {
	return string(ml)
}

// IsValid checks if the match level is one of the four known levels
func (ml MatchLevel) IsValid() bool {
	switch ml {
	case MatchExact, MatchHigh, MatchPossible, MatchUncertain:
		return true
	default:
		return false
	}
}

// Recommendation is the action a match implies.
type Recommendation string

const (
	// RecommendMerge marks the pair for automatic merge resolution.
	RecommendMerge Recommendation = "merge"
	// RecommendReview flags the pair for a human reviewer.
	RecommendReview Recommendation = "review"
	// RecommendKeepSeparate records the relationship without acting on it.
	RecommendKeepSeparate Recommendation = "keep_separate"
)

// String returns the string representation of Recommendation
func (r Recommendation) String() string {
	return string(r)
}

// Tier scores reported on matches. Fixed by the classification scheme, not
// tunable per run.
const (
	ScoreExact     = 100
	ScoreHigh      = 85
	ScorePossible  = 60
	ScoreUncertain = 30
)

// Config holds the tolerance parameters of the waterfall comparison.
// The defaults are the contract: exact 0%, high 1%, conflict and WOZ 5%.
type Config struct {
	// HighTolerance is the maximum relative amount difference for the high
	// tier, as a fraction of the larger amount (0.01 = 1%).
	HighTolerance float64 `json:"high_tolerance"`

	// ConflictTolerance is the relative difference beyond which a compared
	// year is recorded as a conflict (0.05 = 5%). Conflicts never block a
	// tier on their own; years are evaluated independently.
	ConflictTolerance float64 `json:"conflict_tolerance"`

	// WOZTolerance replaces HighTolerance for real-estate amount
	// comparisons, since WOZ assessments of the same property legitimately
	// drift between document vintages (0.05 = 5%).
	WOZTolerance float64 `json:"woz_tolerance"`
}

// DefaultConfig returns the contract tolerances
func DefaultConfig() *Config {
	return &Config{
		HighTolerance:     0.01,
		ConflictTolerance: 0.05,
		WOZTolerance:      0.05,
	}
}

// Validate checks if the matcher configuration is consistent
func (c *Config) Validate() error {
	if c.HighTolerance < 0 || c.HighTolerance > 1 {
		return fmt.Errorf("high tolerance must be between 0.0 and 1.0: %f", c.HighTolerance)
	}

	if c.ConflictTolerance < 0 || c.ConflictTolerance > 1 {
		return fmt.Errorf("conflict tolerance must be between 0.0 and 1.0: %f", c.ConflictTolerance)
	}

	if c.WOZTolerance < 0 || c.WOZTolerance > 1 {
		return fmt.Errorf("WOZ tolerance must be between 0.0 and 1.0: %f", c.WOZTolerance)
	}

	if c.ConflictTolerance < c.HighTolerance {
		return fmt.Errorf("conflict tolerance (%f) cannot be tighter than high tolerance (%f)",
			c.ConflictTolerance, c.HighTolerance)
	}

	return nil
}

// Clone creates a copy of the matcher configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{High: %.2f%%, Conflict: %.2f%%, WOZ: %.2f%%}",
		c.HighTolerance*100, c.ConflictTolerance*100, c.WOZTolerance*100)
}
