package matcher

import (
	"fmt"
	"strings"

	"box3-dedup-service/internal/fingerprint"
	"box3-dedup-service/internal/models"
	"box3-dedup-service/internal/normalize"
	"box3-dedup-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Match is the result of comparing two fingerprints. KeptID and MergedID are
// filled only when the recommendation is a merge: the first asset survives
// and the second is absorbed.
type Match struct {
	AssetID        string         `json:"asset_id"`
	OtherAssetID   string         `json:"other_asset_id"`
	Level          MatchLevel     `json:"match_level"`
	Score          float64        `json:"match_score"`
	MatchedOn      []string       `json:"matched_on"`
	Conflicts      []string       `json:"conflicts,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	KeptID         string         `json:"kept_id,omitempty"`
	MergedID       string         `json:"merged_id,omitempty"`
}

// String returns a compact representation of the match for logging
func (m *Match) String() string {
	return fmt.Sprintf("Match{%s vs %s: %s (%.0f) -> %s}",
		m.AssetID, m.OtherAssetID, m.Level, m.Score, m.Recommendation)
}

// HasOwnershipConflict reports whether ownership percentages disagreed
func (m *Match) HasOwnershipConflict() bool {
	return len(m.OwnershipConflicts()) > 0
}

// OwnershipConflicts returns only the ownership-percentage conflict entries,
// excluding amount-divergence conflicts recorded on the same match.
func (m *Match) OwnershipConflicts() []string {
	var conflicts []string
	for _, conflict := range m.Conflicts {
		if strings.HasPrefix(conflict, ownershipConflictPrefix) {
			conflicts = append(conflicts, conflict)
		}
	}
	return conflicts
}

const ownershipConflictPrefix = "ownership_percentage"

// Engine performs pairwise fingerprint comparisons with a fixed tolerance
// configuration.
type Engine struct {
	config *Config
	logger logger.Logger
}

// NewEngine creates a matching engine. A nil config selects the defaults.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// CompareFingerprints classifies the relationship between two fingerprints
// of the same category. Returns nil when the categories differ (cross
// category detection is a separate advisory pass) or when no attribute
// matched at all.
//
// Tiers are mutually exclusive and checked highest-confidence first; the
// pair is classified at the first tier whose full condition set holds, even
// if a weaker tier's conditions would also hold.
func (e *Engine) CompareFingerprints(a, b *fingerprint.Fingerprint, idA, idB string) *Match {
	if a == nil || b == nil {
		return nil
	}

	if a.Category != b.Category {
		return nil
	}

	// matchedOn accumulates identity evidence only. Ownership equality gates
	// the tiers and is reported on emitted matches, but on its own it is no
	// reason to record a relationship: most assets sit at 100%.
	var matchedOn []string
	var conflicts []string

	ownershipEqual := a.OwnershipPercentage == b.OwnershipPercentage
	if !ownershipEqual {
		conflicts = append(conflicts, fmt.Sprintf("%s: %.0f vs %.0f",
			ownershipConflictPrefix, a.OwnershipPercentage, b.OwnershipPercentage))
	}

	// Primary identifier evidence. Attributes accumulate into matchedOn even
	// when the exact tier does not fire, so weaker tiers can see them.
	primaryMatch := false
	switch {
	case a.IBAN != "" && a.IBAN == b.IBAN:
		primaryMatch = true
		matchedOn = append(matchedOn, "iban")
	case a.CadastralID != "" && a.CadastralID == b.CadastralID:
		primaryMatch = true
		matchedOn = append(matchedOn, "cadastral_id")
	case a.Address != "" && a.Address == b.Address:
		primaryMatch = true
		matchedOn = append(matchedOn, "address")
	case a.Descriptor != "" && a.Descriptor == b.Descriptor:
		primaryMatch = true
		matchedOn = append(matchedOn, "description")
	}

	// Tier 1: exact. The only tier trusted to merge without review.
	if primaryMatch && ownershipEqual {
		return e.newMatch(idA, idB, MatchExact, ScoreExact, RecommendMerge,
			withOwnership(matchedOn, ownershipEqual), conflicts)
	}

	institutionMatch := a.Institution != normalize.UnknownInstitution &&
		a.Institution == b.Institution
	if institutionMatch {
		matchedOn = append(matchedOn, "institution")
	}

	last4Match := a.Last4 != "" && a.Last4 == b.Last4
	if last4Match {
		matchedOn = append(matchedOn, "account_last4")
	}

	amounts := e.compareYearAmounts(a, b)
	matchedOn = append(matchedOn, amounts.matchedOn...)
	conflicts = append(conflicts, amounts.conflicts...)

	// Tier 2: high. Every shared year must be within tolerance; a year
	// diverging past the conflict threshold is recorded above but does not
	// block the tier on its own.
	if institutionMatch && last4Match && ownershipEqual && amounts.allWithinTolerance {
		return e.newMatch(idA, idB, MatchHigh, ScoreHigh, RecommendMerge,
			withOwnership(matchedOn, ownershipEqual), conflicts)
	}

	// Tier 3: possible. Ownership disagreement always demotes to
	// keep-separate; it is never silently overridden.
	if institutionMatch && (last4Match || amounts.anyWithinTolerance) {
		recommendation := RecommendReview
		if !ownershipEqual {
			recommendation = RecommendKeepSeparate
		}
		return e.newMatch(idA, idB, MatchPossible, ScorePossible, recommendation,
			withOwnership(matchedOn, ownershipEqual), conflicts)
	}

	// Tier 4: uncertain. Some identity evidence, not enough to act on.
	if len(matchedOn) > 0 {
		return e.newMatch(idA, idB, MatchUncertain, ScoreUncertain, RecommendKeepSeparate,
			withOwnership(matchedOn, ownershipEqual), conflicts)
	}

	return nil
}

// withOwnership appends the ownership attribute to emitted match evidence
// when the percentages agreed.
func withOwnership(matchedOn []string, ownershipEqual bool) []string {
	if !ownershipEqual {
		return matchedOn
	}
	return append(matchedOn, "ownership_percentage")
}

func (e *Engine) newMatch(idA, idB string, level MatchLevel, score float64,
	recommendation Recommendation, matchedOn, conflicts []string) *Match {

	match := &Match{
		AssetID:        idA,
		OtherAssetID:   idB,
		Level:          level,
		Score:          score,
		MatchedOn:      matchedOn,
		Conflicts:      conflicts,
		Recommendation: recommendation,
	}

	if recommendation == RecommendMerge {
		match.KeptID = idA
		match.MergedID = idB
	}

	e.logger.WithFields(logger.Fields{
		"asset_id":       idA,
		"other_asset_id": idB,
		"match_level":    level.String(),
		"recommendation": recommendation.String(),
	}).Debug("Classified fingerprint pair")

	return match
}

// yearComparison aggregates the per-year amount evaluation between two
// fingerprints.
type yearComparison struct {
	sharedYears        int
	allWithinTolerance bool
	anyWithinTolerance bool
	matchedOn          []string
	conflicts          []string
}

// compareYearAmounts evaluates each tax year present in both fingerprints
// independently. A year matches when the relative difference stays within
// the category's tolerance; a year diverging past the conflict threshold is
// recorded as a conflict string. Zero shared years leaves
// allWithinTolerance true: the identifying fields then carry the decision
// alone.
func (e *Engine) compareYearAmounts(a, b *fingerprint.Fingerprint) yearComparison {
	result := yearComparison{allWithinTolerance: true}

	tolerance := e.config.HighTolerance
	if a.Category == models.CategoryRealEstate {
		tolerance = e.config.WOZTolerance
	}

	for _, year := range a.SortedYears() {
		amountA := a.YearAmounts[year]
		amountB, ok := b.YearAmounts[year]
		if !ok {
			continue
		}

		result.sharedYears++
		diff := relativeDifference(amountA, amountB)

		if diff <= tolerance {
			result.anyWithinTolerance = true
			result.matchedOn = append(result.matchedOn, fmt.Sprintf("amount_%d", year))
		} else {
			result.allWithinTolerance = false
		}

		if diff > e.config.ConflictTolerance {
			result.conflicts = append(result.conflicts, fmt.Sprintf(
				"amount_%d: %s vs %s (%.1f%% apart)",
				year, amountA.String(), amountB.String(), diff*100))
		}
	}

	return result
}

// relativeDifference computes |a-b| / max(a, b, 1). The floor of 1 avoids
// division by zero when both amounts are zero; zero-amount years are
// normally excluded upstream by the fingerprint generators.
func relativeDifference(a, b decimal.Decimal) float64 {
	diff := a.Sub(b).Abs()

	denominator := decimal.NewFromInt(1)
	if a.GreaterThan(denominator) {
		denominator = a
	}
	if b.GreaterThan(denominator) {
		denominator = b
	}

	return diff.Div(denominator).InexactFloat64()
}

// CompareFingerprints classifies a fingerprint pair using the default
// tolerance configuration. Convenience wrapper over Engine for callers that
// do not tune tolerances.
func CompareFingerprints(a, b *fingerprint.Fingerprint, idA, idB string) *Match {
	return NewEngine(nil).CompareFingerprints(a, b, idA, idB)
}
