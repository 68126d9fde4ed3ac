package dedup

import (
	"fmt"
	"strings"

	"box3-dedup-service/internal/fingerprint"
	"box3-dedup-service/internal/matcher"
	"box3-dedup-service/internal/models"
	"box3-dedup-service/internal/normalize"
	"box3-dedup-service/pkg/logger"
)

// Cross-category match scores. Classification-boundary duplicates carry a
// higher false-positive risk than same-category ones, so every finding here
// is advisory and routed to review.
const (
	scoreSharedIBAN       = 80
	scoreSharedLast4      = 60
	scoreVorderingOverlap = 85
	crossAmountTolerance  = 0.01
)

// loanKeywords are the description substrings that mark an informal claim
// or family loan ("vordering"). These positions commonly get extracted once
// as an investment and once as an other-category asset.
var loanKeywords = []string{
	"vordering",
	"lening",
	"hypotheek",
	"uitgeleend",
	"familielening",
	"geleend aan",
	"lening aan",
}

// DetectCrossCategoryDuplicates flags records that look like the same asset
// filed under two different categories. Runs after the within-category pass
// as a non-mutating advisory step: it never merges, every returned match
// recommends review.
//
// Two sub-checks:
//   - bank account vs investment sharing a full IBAN or last-4 plus
//     institution (the classic savings/investment misclassification);
//   - investment vs other-asset pairs whose descriptions read like a claim
//     or family loan and whose amounts line up for at least one tax year.
func DetectCrossCategoryDuplicates(bp *models.Box3Blueprint, taxYears []int) []*matcher.Match {
	log := logger.GetGlobalLogger().WithComponent("cross_category")

	var matches []*matcher.Match
	matches = append(matches, detectBankInvestmentOverlap(bp, taxYears)...)
	matches = append(matches, detectVorderingOverlap(bp, taxYears)...)

	if len(matches) > 0 {
		log.WithField("matches_found", len(matches)).Info("Cross-category duplicates flagged for review")
	}

	return matches
}

// detectBankInvestmentOverlap flags bank accounts and investments that share
// account identification.
func detectBankInvestmentOverlap(bp *models.Box3Blueprint, taxYears []int) []*matcher.Match {
	var matches []*matcher.Match

	invFPs := make([]*fingerprint.Fingerprint, len(bp.Investments))
	for i, inv := range bp.Investments {
		invFPs[i] = fingerprint.GenerateInvestmentFingerprint(inv, taxYears)
	}

	for _, bank := range bp.BankAccounts {
		bankFP := fingerprint.GenerateBankAccountFingerprint(bank, taxYears)

		for i, inv := range bp.Investments {
			invFP := invFPs[i]

			switch {
			case bankFP.IBAN != "" && bankFP.IBAN == invFP.IBAN:
				matches = append(matches, &matcher.Match{
					AssetID:        bank.ID,
					OtherAssetID:   inv.ID,
					Level:          matcher.MatchHigh,
					Score:          scoreSharedIBAN,
					MatchedOn:      []string{"iban", "cross_category"},
					Recommendation: matcher.RecommendReview,
				})

			case bankFP.Last4 != "" && bankFP.Last4 == invFP.Last4 &&
				bankFP.Institution != normalize.UnknownInstitution &&
				bankFP.Institution == invFP.Institution:
				matches = append(matches, &matcher.Match{
					AssetID:        bank.ID,
					OtherAssetID:   inv.ID,
					Level:          matcher.MatchPossible,
					Score:          scoreSharedLast4,
					MatchedOn:      []string{"account_last4", "institution", "cross_category"},
					Recommendation: matcher.RecommendReview,
				})
			}
		}
	}

	return matches
}

// detectVorderingOverlap flags investment and other-asset pairs that both
// look like the same informal loan: a loan keyword in either description and
// an amount match within 1% for at least one shared tax year.
func detectVorderingOverlap(bp *models.Box3Blueprint, taxYears []int) []*matcher.Match {
	var matches []*matcher.Match

	for _, inv := range bp.Investments {
		invFP := fingerprint.GenerateInvestmentFingerprint(inv, taxYears)
		invIsLoan := describesLoan(inv.Description)

		for _, other := range bp.OtherAssets {
			if !invIsLoan && !describesLoan(other.Description) {
				continue
			}

			otherFP := fingerprint.GenerateOtherAssetFingerprint(other, taxYears)

			matchedYear, ok := firstAmountOverlap(invFP, otherFP)
			if !ok {
				continue
			}

			matches = append(matches, &matcher.Match{
				AssetID:        inv.ID,
				OtherAssetID:   other.ID,
				Level:          matcher.MatchHigh,
				Score:          scoreVorderingOverlap,
				MatchedOn:      []string{"loan_description", fmt.Sprintf("amount_%d", matchedYear), "cross_category"},
				Recommendation: matcher.RecommendReview,
			})
		}
	}

	return matches
}

// describesLoan reports whether a free-text description reads like a claim
// or loan given out.
func describesLoan(description string) bool {
	normalized := normalize.NormalizeDescription(description)
	if normalized == "" {
		return false
	}

	for _, keyword := range loanKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

// firstAmountOverlap finds the first shared tax year whose amounts agree
// within the cross-category tolerance.
func firstAmountOverlap(a, b *fingerprint.Fingerprint) (int, bool) {
	for _, year := range a.SortedYears() {
		amountB, ok := b.YearAmounts[year]
		if !ok {
			continue
		}

		amountA := a.YearAmounts[year]
		diff := amountA.Sub(amountB).Abs()

		larger := amountA
		if amountB.GreaterThan(larger) {
			larger = amountB
		}
		if larger.IsZero() {
			continue
		}

		if diff.Div(larger).InexactFloat64() <= crossAmountTolerance {
			return year, true
		}
	}
	return 0, false
}
