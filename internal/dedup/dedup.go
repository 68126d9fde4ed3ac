// Package dedup orchestrates semantic deduplication of a Box 3 dossier's
// asset collection.
//
// The workflow runs as a batch step after each extraction pass:
//  1. Fingerprint every asset per category.
//  2. Compare all pairs within each category through the waterfall matcher.
//  3. Resolve merge recommendations greedily and filter the collection.
//  4. Run the advisory cross-category pass for misclassified records.
//
// The orchestrator never mutates its input: filtering produces new slices,
// and the output asset ids are always a strict subset of the input ids.
// Merging removes the absorbed record only; it never edits amounts.
package dedup

import (
	"time"

	"box3-dedup-service/internal/fingerprint"
	"box3-dedup-service/internal/matcher"
	"box3-dedup-service/internal/models"
	"box3-dedup-service/pkg/logger"
)

// CategoryCounts records the collection size of one category before and
// after deduplication.
type CategoryCounts struct {
	Original     int `json:"original"`
	Deduplicated int `json:"deduplicated"`
}

// Result is the audit record of one deduplication run: everything a human
// reviewer needs to understand what was merged, what was flagged, and why.
// It includes non-actioned matches for transparency. Above the high
// confidence tier this audit trail, not the merge itself, is the product.
type Result struct {
	Counts             map[models.AssetCategory]CategoryCounts `json:"counts"`
	Matches            []*matcher.Match                        `json:"matches"`
	MergedCount        int                                     `json:"merged_count"`
	ReviewFlagged      []string                                `json:"review_flagged,omitempty"`
	OwnershipConflicts []string                                `json:"ownership_conflicts,omitempty"`
	MergedInto         map[string]string                       `json:"merged_into,omitempty"`
	ProcessedAt        time.Time                               `json:"processed_at"`
}

// Deduplicator runs semantic deduplication over full asset collections.
type Deduplicator struct {
	engine *matcher.Engine
	logger logger.Logger
}

// NewDeduplicator creates a deduplicator. A nil config selects the default
// matcher tolerances.
func NewDeduplicator(config *matcher.Config) *Deduplicator {
	return &Deduplicator{
		engine: matcher.NewEngine(config),
		logger: logger.GetGlobalLogger().WithComponent("dedup"),
	}
}

// fingerprinted pairs an asset id with its derived fingerprint for the
// all-pairs comparison.
type fingerprinted struct {
	id string
	fp *fingerprint.Fingerprint
}

// Run deduplicates the blueprint's assets within each category and returns
// the replacement collection plus the audit result. The input blueprint is
// left untouched.
func (d *Deduplicator) Run(bp *models.Box3Blueprint, taxYears []int) (*models.Box3Blueprint, *Result) {
	result := &Result{
		Counts:      make(map[models.AssetCategory]CategoryCounts),
		MergedInto:  make(map[string]string),
		ProcessedAt: time.Now(),
	}

	d.logger.WithFields(logger.Fields{
		"total_assets": bp.TotalAssetCount(),
		"tax_years":    taxYears,
	}).Info("Starting semantic deduplication")

	removed := make(map[string]bool)

	for _, category := range models.AllCategories() {
		entries := d.fingerprintCategory(bp, category, taxYears)
		matches := d.compareAllPairs(entries)
		result.Matches = append(result.Matches, matches...)

		d.resolveMatches(matches, removed, result)

		result.Counts[category] = CategoryCounts{
			Original: len(entries),
		}
	}

	deduped := filterBlueprint(bp, removed)

	for _, category := range models.AllCategories() {
		counts := result.Counts[category]
		counts.Deduplicated = deduped.CategoryCount(category)
		result.Counts[category] = counts
	}

	d.logger.WithFields(logger.Fields{
		"matches_found":  len(result.Matches),
		"merged":         result.MergedCount,
		"review_flagged": len(result.ReviewFlagged),
	}).Info("Semantic deduplication completed")

	return deduped, result
}

// fingerprintCategory derives fingerprints for every asset of one category,
// preserving the blueprint's iteration order. Merge resolution is
// order-dependent on this ordering: of a chain of mutually matching assets,
// the first keeps winning and the chain collapses into one survivor.
func (d *Deduplicator) fingerprintCategory(bp *models.Box3Blueprint, category models.AssetCategory, taxYears []int) []fingerprinted {
	var entries []fingerprinted

	switch category {
	case models.CategoryBankSavings:
		for _, asset := range bp.BankAccounts {
			entries = append(entries, fingerprinted{
				id: asset.ID,
				fp: fingerprint.GenerateBankAccountFingerprint(asset, taxYears),
			})
		}
	case models.CategoryInvestment:
		for _, asset := range bp.Investments {
			entries = append(entries, fingerprinted{
				id: asset.ID,
				fp: fingerprint.GenerateInvestmentFingerprint(asset, taxYears),
			})
		}
	case models.CategoryRealEstate:
		for _, asset := range bp.RealEstate {
			entries = append(entries, fingerprinted{
				id: asset.ID,
				fp: fingerprint.GenerateRealEstateFingerprint(asset, taxYears),
			})
		}
	case models.CategoryOtherAsset:
		for _, asset := range bp.OtherAssets {
			entries = append(entries, fingerprinted{
				id: asset.ID,
				fp: fingerprint.GenerateOtherAssetFingerprint(asset, taxYears),
			})
		}
	}

	return entries
}

// compareAllPairs runs the O(n²) within-category comparison. Dossiers hold
// tens of assets, so no indexing is needed.
func (d *Deduplicator) compareAllPairs(entries []fingerprinted) []*matcher.Match {
	var matches []*matcher.Match

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			match := d.engine.CompareFingerprints(entries[i].fp, entries[j].fp, entries[i].id, entries[j].id)
			if match != nil {
				matches = append(matches, match)
			}
		}
	}

	return matches
}

// resolveMatches applies merge and review recommendations. Merges resolve
// greedily in match order: the second asset is marked for removal with a
// merged_into pointer to the first, provided neither id is already marked.
// Review recommendations accumulate both ids; duplicates across multiple
// review pairs are expected and kept. keep_separate is never acted on.
func (d *Deduplicator) resolveMatches(matches []*matcher.Match, removed map[string]bool, result *Result) {
	for _, match := range matches {
		result.OwnershipConflicts = append(result.OwnershipConflicts, match.OwnershipConflicts()...)

		switch match.Recommendation {
		case matcher.RecommendMerge:
			if removed[match.KeptID] || removed[match.MergedID] {
				continue
			}
			removed[match.MergedID] = true
			result.MergedInto[match.MergedID] = match.KeptID
			result.MergedCount++

			d.logger.WithFields(logger.Fields{
				"kept_id":   match.KeptID,
				"merged_id": match.MergedID,
				"level":     match.Level.String(),
			}).Info("Merged duplicate asset")

		case matcher.RecommendReview:
			result.ReviewFlagged = append(result.ReviewFlagged, match.AssetID, match.OtherAssetID)
		}
	}
}

// filterBlueprint builds the replacement collection, excluding assets
// marked for removal. Debts are filtered by the same removal set for
// consistency; debt ids never enter the set in this version, so debts pass
// through untouched. Debt matching is an explicitly unimplemented gap, not
// an oversight.
func filterBlueprint(bp *models.Box3Blueprint, removed map[string]bool) *models.Box3Blueprint {
	out := &models.Box3Blueprint{}

	for _, asset := range bp.BankAccounts {
		if !removed[asset.ID] {
			out.BankAccounts = append(out.BankAccounts, asset)
		}
	}
	for _, asset := range bp.Investments {
		if !removed[asset.ID] {
			out.Investments = append(out.Investments, asset)
		}
	}
	for _, asset := range bp.RealEstate {
		if !removed[asset.ID] {
			out.RealEstate = append(out.RealEstate, asset)
		}
	}
	for _, asset := range bp.OtherAssets {
		if !removed[asset.ID] {
			out.OtherAssets = append(out.OtherAssets, asset)
		}
	}
	for _, debt := range bp.Debts {
		if !removed[debt.ID] {
			out.Debts = append(out.Debts, debt)
		}
	}

	return out
}

// RunSemanticDeduplication deduplicates an asset collection with the
// default matcher configuration. This is the entry point the stage
// orchestration pipeline calls between extraction passes.
func RunSemanticDeduplication(bp *models.Box3Blueprint, taxYears []int) (*models.Box3Blueprint, *Result) {
	return NewDeduplicator(nil).Run(bp, taxYears)
}
