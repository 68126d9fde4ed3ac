package dedup

import (
	"testing"

	"box3-dedup-service/internal/matcher"
	"box3-dedup-service/internal/models"

	"github.com/shopspring/decimal"
)

func investment(id, accountMasked, institution, description string, jan1ByYear map[int]float64) *models.Investment {
	yearlyData := make(map[int]*models.YearlyFinancials)
	for year, amount := range jan1ByYear {
		yearlyData[year] = &models.YearlyFinancials{
			ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromFloat(amount)},
		}
	}

	return &models.Investment{
		AssetBase: models.AssetBase{
			ID:                  id,
			OwnershipPercentage: 100,
			Description:         description,
			YearlyData:          yearlyData,
		},
		AccountMasked: accountMasked,
		Institution:   institution,
	}
}

func TestDetectCrossCategoryDuplicates_SharedIBAN(t *testing.T) {
	bp := &models.Box3Blueprint{
		BankAccounts: []*models.BankAccount{
			bankAccount("bank-1", "NL91INGB0001234567", "ING", 100, map[int]float64{2023: 50000}),
		},
		Investments: []*models.Investment{
			investment("inv-1", "NL91INGB0001234567", "ING", "", map[int]float64{2023: 50000}),
		},
	}

	matches := DetectCrossCategoryDuplicates(bp, []int{2023})

	if len(matches) != 1 {
		t.Fatalf("expected one cross-category match, got %d", len(matches))
	}
	match := matches[0]
	if match.Score != 80 {
		t.Errorf("expected IBAN overlap score 80, got %v", match.Score)
	}
	if match.Recommendation != matcher.RecommendReview {
		t.Errorf("cross-category findings must recommend review, got %s", match.Recommendation)
	}
	if !containsString(match.MatchedOn, "cross_category") {
		t.Errorf("expected cross_category marker in matched_on, got %v", match.MatchedOn)
	}
	if !containsString(match.MatchedOn, "iban") {
		t.Errorf("expected iban in matched_on, got %v", match.MatchedOn)
	}
}

func TestDetectCrossCategoryDuplicates_Last4PlusInstitution(t *testing.T) {
	bp := &models.Box3Blueprint{
		BankAccounts: []*models.BankAccount{
			bankAccount("bank-1", "****4567", "ING", 100, nil),
		},
		Investments: []*models.Investment{
			investment("inv-1", "rekening eindigend op 4567", "ING Bank", "", nil),
		},
	}

	matches := DetectCrossCategoryDuplicates(bp, []int{2023})

	if len(matches) != 1 {
		t.Fatalf("expected one cross-category match, got %d", len(matches))
	}
	if matches[0].Score != 60 {
		t.Errorf("expected last4 overlap score 60, got %v", matches[0].Score)
	}
	if matches[0].Level != matcher.MatchPossible {
		t.Errorf("expected possible level, got %s", matches[0].Level)
	}
}

func TestDetectCrossCategoryDuplicates_Last4WithoutInstitution(t *testing.T) {
	// Last-4 collisions are common; without an institution agreement the
	// pair is not flagged.
	bp := &models.Box3Blueprint{
		BankAccounts: []*models.BankAccount{
			bankAccount("bank-1", "****4567", "ING", 100, nil),
		},
		Investments: []*models.Investment{
			investment("inv-1", "****4567", "DeGiro", "", nil),
		},
	}

	if matches := DetectCrossCategoryDuplicates(bp, []int{2023}); len(matches) != 0 {
		t.Errorf("expected no match on last4 alone, got %d", len(matches))
	}
}

func TestDetectCrossCategoryDuplicates_VorderingOverlap(t *testing.T) {
	bp := &models.Box3Blueprint{
		Investments: []*models.Investment{
			investment("inv-1", "", "", "Vordering op J. de Vries", map[int]float64{2023: 25000}),
		},
		OtherAssets: []*models.OtherAsset{
			{
				ID:          "other-1",
				Description: "Lening aan J. de Vries",
				AssetType:   "loaned_money",
				YearlyData: map[int]*models.YearlyFinancials{
					2023: {ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(25100)}},
				},
			},
		},
	}

	matches := DetectCrossCategoryDuplicates(bp, []int{2023})

	if len(matches) != 1 {
		t.Fatalf("expected one vordering match, got %d", len(matches))
	}
	match := matches[0]
	if match.Score != 85 {
		t.Errorf("expected vordering overlap score 85, got %v", match.Score)
	}
	if match.Recommendation != matcher.RecommendReview {
		t.Errorf("expected review, got %s", match.Recommendation)
	}
	if !containsString(match.MatchedOn, "loan_description") {
		t.Errorf("expected loan_description in matched_on, got %v", match.MatchedOn)
	}
	if !containsString(match.MatchedOn, "amount_2023") {
		t.Errorf("expected amount_2023 in matched_on, got %v", match.MatchedOn)
	}
}

func TestDetectCrossCategoryDuplicates_VorderingNeedsLoanKeyword(t *testing.T) {
	// Amounts lining up between an investment and an other asset is not
	// evidence on its own.
	bp := &models.Box3Blueprint{
		Investments: []*models.Investment{
			investment("inv-1", "", "DeGiro", "Aandelenportefeuille", map[int]float64{2023: 25000}),
		},
		OtherAssets: []*models.OtherAsset{
			{
				ID:          "other-1",
				Description: "Sieraden",
				YearlyData: map[int]*models.YearlyFinancials{
					2023: {ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(25000)}},
				},
			},
		},
	}

	if matches := DetectCrossCategoryDuplicates(bp, []int{2023}); len(matches) != 0 {
		t.Errorf("expected no match without a loan keyword, got %d", len(matches))
	}
}

func TestDetectCrossCategoryDuplicates_VorderingNeedsAmountOverlap(t *testing.T) {
	bp := &models.Box3Blueprint{
		Investments: []*models.Investment{
			investment("inv-1", "", "", "Vordering op J. de Vries", map[int]float64{2023: 25000}),
		},
		OtherAssets: []*models.OtherAsset{
			{
				ID:          "other-1",
				Description: "Lening aan J. de Vries",
				YearlyData: map[int]*models.YearlyFinancials{
					2023: {ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(40000)}},
				},
			},
		},
	}

	if matches := DetectCrossCategoryDuplicates(bp, []int{2023}); len(matches) != 0 {
		t.Errorf("expected no match when amounts diverge, got %d", len(matches))
	}
}

func TestDetectCrossCategoryDuplicates_NeverMerges(t *testing.T) {
	bp := &models.Box3Blueprint{
		BankAccounts: []*models.BankAccount{
			bankAccount("bank-1", "NL91INGB0001234567", "ING", 100, map[int]float64{2023: 50000}),
		},
		Investments: []*models.Investment{
			investment("inv-1", "NL91INGB0001234567", "ING", "Vordering op neef", map[int]float64{2023: 50000}),
		},
		OtherAssets: []*models.OtherAsset{
			{
				ID:          "other-1",
				Description: "Familielening neef",
				YearlyData: map[int]*models.YearlyFinancials{
					2023: {ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(50000)}},
				},
			},
		},
	}

	for _, match := range DetectCrossCategoryDuplicates(bp, []int{2023}) {
		if match.Recommendation == matcher.RecommendMerge {
			t.Errorf("cross-category pass produced a merge: %s", match)
		}
		if match.KeptID != "" || match.MergedID != "" {
			t.Errorf("cross-category match carries merge ids: %s", match)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
