package fingerprint

import (
	"reflect"
	"testing"

	"box3-dedup-service/internal/models"

	"github.com/shopspring/decimal"
)

func yearData(year int, jan1 float64) map[int]*models.YearlyFinancials {
	return map[int]*models.YearlyFinancials{
		year: {
			ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromFloat(jan1)},
		},
	}
}

func TestGenerateBankAccountFingerprint(t *testing.T) {
	asset := &models.BankAccount{
		AssetBase: models.AssetBase{
			ID:                  "bank-1",
			OwnershipPercentage: 100,
			YearlyData:          yearData(2023, 50000),
		},
		AccountMasked: "NL91INGB0001234567",
		BankName:      "ING Bank",
	}

	fp := GenerateBankAccountFingerprint(asset, []int{2023})

	if fp.Category != models.CategoryBankSavings {
		t.Errorf("expected category %s, got %s", models.CategoryBankSavings, fp.Category)
	}
	if fp.Institution != "ING" {
		t.Errorf("expected institution ING, got %s", fp.Institution)
	}
	if fp.IBAN != "NL91INGB0001234567" {
		t.Errorf("expected full IBAN, got %q", fp.IBAN)
	}
	if fp.Last4 != "4567" {
		t.Errorf("expected last4 4567, got %q", fp.Last4)
	}
	if !fp.YearAmounts[2023].Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected 2023 amount 50000, got %s", fp.YearAmounts[2023])
	}
	if fp.Hash == "" {
		t.Error("expected a non-empty audit hash")
	}
}

func TestFingerprintIdempotence(t *testing.T) {
	asset := &models.BankAccount{
		AssetBase: models.AssetBase{
			ID:                  "bank-1",
			OwnershipPercentage: 50,
			YearlyData:          yearData(2023, 12345.67),
		},
		AccountMasked: "****4567",
		BankName:      "Rabobank",
	}

	first := GenerateBankAccountFingerprint(asset, []int{2022, 2023})
	second := GenerateBankAccountFingerprint(asset, []int{2022, 2023})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("fingerprinting is not idempotent:\n%v\nvs\n%v", first, second)
	}
}

func TestCollectYearAmounts_ZeroAndMissingOmitted(t *testing.T) {
	asset := &models.BankAccount{
		AssetBase: models.AssetBase{
			ID:                  "bank-1",
			OwnershipPercentage: 100,
			YearlyData: map[int]*models.YearlyFinancials{
				2021: {ValueJan1: &models.MonetaryValue{Amount: decimal.Zero}},
				2022: {},
				2023: {ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(1000)}},
			},
		},
		BankName: "ING",
	}

	fp := GenerateBankAccountFingerprint(asset, []int{2021, 2022, 2023, 2024})

	if len(fp.YearAmounts) != 1 {
		t.Fatalf("expected exactly one year with data, got %d: %v", len(fp.YearAmounts), fp.YearAmounts)
	}
	if _, ok := fp.YearAmounts[2021]; ok {
		t.Error("zero amount year 2021 should be omitted")
	}
	if _, ok := fp.YearAmounts[2023]; !ok {
		t.Error("expected 2023 to be present")
	}
}

func TestCollectYearAmounts_CandidateOrdering(t *testing.T) {
	// Dec 31 value only: the fallback candidate should be selected.
	asset := &models.BankAccount{
		AssetBase: models.AssetBase{
			ID:                  "bank-1",
			OwnershipPercentage: 100,
			YearlyData: map[int]*models.YearlyFinancials{
				2023: {ValueDec31: &models.MonetaryValue{Amount: decimal.NewFromInt(777)}},
			},
		},
		BankName: "ING",
	}

	fp := GenerateBankAccountFingerprint(asset, []int{2023})
	if !fp.YearAmounts[2023].Equal(decimal.NewFromInt(777)) {
		t.Errorf("expected Dec 31 fallback value 777, got %s", fp.YearAmounts[2023])
	}
}

func TestGenerateRealEstateFingerprint(t *testing.T) {
	asset := &models.RealEstate{
		AssetBase: models.AssetBase{
			ID:                  "re-1",
			OwnershipPercentage: 50,
			YearlyData: map[int]*models.YearlyFinancials{
				2023: {
					WOZValue:  &models.MonetaryValue{Amount: decimal.NewFromInt(450000)},
					ValueJan1: &models.MonetaryValue{Amount: decimal.NewFromInt(440000)},
				},
			},
		},
		Address:     "Hoofdstraat 12",
		Postcode:    "1234 AB",
		HouseNumber: "12",
	}

	fp := GenerateRealEstateFingerprint(asset, []int{2023})

	if fp.Category != models.CategoryRealEstate {
		t.Errorf("expected category %s, got %s", models.CategoryRealEstate, fp.Category)
	}
	if fp.Address != "hoofdstr 12" {
		t.Errorf("expected normalized address, got %q", fp.Address)
	}
	if fp.CadastralID != "1234AB-12" {
		t.Errorf("expected postcode-based cadastral id, got %q", fp.CadastralID)
	}
	// WOZ value wins over the Jan 1 valuation.
	if !fp.YearAmounts[2023].Equal(decimal.NewFromInt(450000)) {
		t.Errorf("expected WOZ value 450000, got %s", fp.YearAmounts[2023])
	}
}

func TestGenerateRealEstateFingerprint_ExplicitCadastralID(t *testing.T) {
	asset := &models.RealEstate{
		AssetBase:   models.AssetBase{ID: "re-1", OwnershipPercentage: 100},
		CadastralID: "asd01 b 1234",
		Postcode:    "1234 AB",
		HouseNumber: "12",
	}

	fp := GenerateRealEstateFingerprint(asset, nil)
	if fp.CadastralID != "ASD01B1234" {
		t.Errorf("explicit cadastral reference should win, got %q", fp.CadastralID)
	}
}

func TestGenerateOtherAssetFingerprint_DefaultOwnership(t *testing.T) {
	asset := &models.OtherAsset{
		ID:          "other-1",
		Description: "Lening aan J. de Vries",
		AssetType:   "loaned_money",
		YearlyData:  yearData(2023, 25000),
	}

	fp := GenerateOtherAssetFingerprint(asset, []int{2023})

	if fp.Category != models.CategoryOtherAsset {
		t.Errorf("expected category %s, got %s", models.CategoryOtherAsset, fp.Category)
	}
	// The source schema has no ownership percentage for this category.
	if fp.OwnershipPercentage != 100 {
		t.Errorf("expected default ownership 100, got %v", fp.OwnershipPercentage)
	}
	if fp.Descriptor == "" {
		t.Error("expected normalized description as primary identifier")
	}
	if fp.PrimaryIdentifier() != fp.Descriptor {
		t.Errorf("expected descriptor as primary identifier, got %q", fp.PrimaryIdentifier())
	}
}

func TestAuditHash_StableAndIdentifying(t *testing.T) {
	base := &models.BankAccount{
		AssetBase:     models.AssetBase{ID: "bank-1", OwnershipPercentage: 100},
		AccountMasked: "NL91INGB0001234567",
		BankName:      "ING",
	}

	fp1 := GenerateBankAccountFingerprint(base, nil)
	fp2 := GenerateBankAccountFingerprint(base, nil)
	if fp1.Hash != fp2.Hash {
		t.Errorf("hash should be stable across runs: %s vs %s", fp1.Hash, fp2.Hash)
	}

	changed := &models.BankAccount{
		AssetBase:     models.AssetBase{ID: "bank-2", OwnershipPercentage: 50},
		AccountMasked: "NL91INGB0001234567",
		BankName:      "ING",
	}
	fp3 := GenerateBankAccountFingerprint(changed, nil)
	if fp1.Hash == fp3.Hash {
		t.Error("hash should change when ownership changes")
	}
}

func TestSortedYears(t *testing.T) {
	fp := &Fingerprint{
		YearAmounts: map[int]decimal.Decimal{
			2023: decimal.NewFromInt(1),
			2021: decimal.NewFromInt(2),
			2022: decimal.NewFromInt(3),
		},
	}

	years := fp.SortedYears()
	expected := []int{2021, 2022, 2023}
	if !reflect.DeepEqual(years, expected) {
		t.Errorf("expected %v, got %v", expected, years)
	}
}
