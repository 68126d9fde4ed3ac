// Package fingerprint derives comparable summaries of Box 3 asset records.
//
// A Fingerprint is a pure function of one asset record and the tax years
// under consideration: normalized identifiers, ownership percentage, and a
// year-keyed map of the most representative monetary amount per year.
// Fingerprints are ephemeral; they are recomputed on every deduplication run
// and never persisted.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"box3-dedup-service/internal/models"
	"box3-dedup-service/internal/normalize"

	"github.com/shopspring/decimal"
)

// defaultOwnershipPercentage is applied to other-category assets, whose
// source schema carries no ownership field. Full household ownership is a
// documented assumption, not an inference.
const defaultOwnershipPercentage = 100

// Fingerprint is a category-tagged, derived summary of one asset record.
// Two fingerprints are comparable only when their categories match.
type Fingerprint struct {
	Category            models.AssetCategory
	Institution         string
	IBAN                string
	Last4               string
	Address             string
	CadastralID         string
	Descriptor          string
	OwnershipPercentage float64
	YearAmounts         map[int]decimal.Decimal
	Hash                string
}

// PrimaryIdentifier returns the strongest identifying token the fingerprint
// carries, in category-appropriate priority order. Empty when the asset had
// no usable identifier.
func (fp *Fingerprint) PrimaryIdentifier() string {
	switch {
	case fp.IBAN != "":
		return fp.IBAN
	case fp.CadastralID != "":
		return fp.CadastralID
	case fp.Address != "":
		return fp.Address
	case fp.Descriptor != "":
		return fp.Descriptor
	default:
		return ""
	}
}

// String returns a compact representation for logging and debugging
func (fp *Fingerprint) String() string {
	return fmt.Sprintf("Fingerprint{Category: %s, Primary: %q, Institution: %s, Last4: %s, Ownership: %.0f%%, Years: %d}",
		fp.Category, fp.PrimaryIdentifier(), fp.Institution, fp.Last4, fp.OwnershipPercentage, len(fp.YearAmounts))
}

// GenerateBankAccountFingerprint derives the fingerprint of a bank or
// savings account: normalized bank name, whatever IBAN fragments survive
// masking, and the January 1 valuation per tax year (December 31 as
// fallback).
func GenerateBankAccountFingerprint(asset *models.BankAccount, taxYears []int) *Fingerprint {
	account := normalize.ExtractIBAN(asset.AccountMasked)

	fp := &Fingerprint{
		Category:            models.CategoryBankSavings,
		Institution:         normalize.NormalizeInstitutionName(asset.BankName),
		IBAN:                account.Full,
		Last4:               account.Last4,
		OwnershipPercentage: asset.OwnershipPercentage,
		YearAmounts: collectYearAmounts(asset.YearlyData, taxYears,
			models.SelectValueJan1, models.SelectValueDec31),
	}
	fp.Hash = auditHash(fp)
	return fp
}

// GenerateInvestmentFingerprint derives the fingerprint of an investment
// account. Structurally identical to bank accounts: the institution and the
// account number are the identifying evidence.
func GenerateInvestmentFingerprint(asset *models.Investment, taxYears []int) *Fingerprint {
	account := normalize.ExtractIBAN(asset.AccountMasked)

	fp := &Fingerprint{
		Category:            models.CategoryInvestment,
		Institution:         normalize.NormalizeInstitutionName(asset.Institution),
		IBAN:                account.Full,
		Last4:               account.Last4,
		OwnershipPercentage: asset.OwnershipPercentage,
		YearAmounts: collectYearAmounts(asset.YearlyData, taxYears,
			models.SelectValueJan1, models.SelectValueDec31),
	}
	fp.Hash = auditHash(fp)
	return fp
}

// GenerateRealEstateFingerprint derives the fingerprint of a property
// holding. The cadastral reference (explicit, or postcode plus house number)
// is the primary identifier; the normalized address is the fallback. Year
// amounts prefer the WOZ valuation.
func GenerateRealEstateFingerprint(asset *models.RealEstate, taxYears []int) *Fingerprint {
	fp := &Fingerprint{
		Category:            models.CategoryRealEstate,
		Institution:         normalize.UnknownInstitution,
		Address:             normalize.NormalizeAddress(asset.Address),
		CadastralID:         cadastralIdentifier(asset),
		OwnershipPercentage: asset.OwnershipPercentage,
		YearAmounts: collectYearAmounts(asset.YearlyData, taxYears,
			models.SelectWOZValue, models.SelectValueJan1),
	}
	fp.Hash = auditHash(fp)
	return fp
}

// GenerateOtherAssetFingerprint derives the fingerprint of an other-category
// asset. The normalized description is the only identifying field, and
// ownership defaults to 100 because the source schema has no ownership
// percentage for this category.
func GenerateOtherAssetFingerprint(asset *models.OtherAsset, taxYears []int) *Fingerprint {
	fp := &Fingerprint{
		Category:            models.CategoryOtherAsset,
		Institution:         normalize.UnknownInstitution,
		Descriptor:          normalize.NormalizeDescription(asset.Description),
		OwnershipPercentage: defaultOwnershipPercentage,
		YearAmounts: collectYearAmounts(asset.YearlyData, taxYears,
			models.SelectValueJan1, models.SelectValueDec31),
	}
	fp.Hash = auditHash(fp)
	return fp
}

// cadastralIdentifier builds the identifying token of a property: the
// explicit cadastral reference when present, otherwise normalized postcode
// plus house number when both are known.
func cadastralIdentifier(asset *models.RealEstate) string {
	if id := strings.TrimSpace(asset.CadastralID); id != "" {
		return strings.ToUpper(strings.Join(strings.Fields(id), ""))
	}

	postcode := normalize.NormalizePostcode(asset.Postcode)
	houseNumber := strings.ToUpper(strings.Join(strings.Fields(asset.HouseNumber), ""))
	if postcode == "" || houseNumber == "" {
		return ""
	}
	return postcode + "-" + houseNumber
}

// collectYearAmounts builds the year-keyed amount map by selecting the first
// available candidate value per requested tax year. Years with zero or
// missing amounts are omitted entirely: zero is treated as "no data", not
// "asset worth zero". That conflates a genuinely empty account with an
// unextracted one; the matcher compensates by never relying on amounts
// alone.
func collectYearAmounts(
	yearlyData map[int]*models.YearlyFinancials,
	taxYears []int,
	candidates ...func(*models.YearlyFinancials) *models.MonetaryValue,
) map[int]decimal.Decimal {
	amounts := make(map[int]decimal.Decimal)

	for _, year := range taxYears {
		yf, ok := yearlyData[year]
		if !ok {
			continue
		}

		value := yf.FirstAvailableValue(candidates...)
		if value == nil || value.Amount.IsZero() {
			continue
		}

		amounts[year] = value.Amount
	}

	return amounts
}

// auditHash computes the fingerprint_hash audit token over category, primary
// identifier, and ownership percentage. Debugging aid only: equality testing
// is done field by field in the matcher, since amounts compare with
// tolerance rather than exact hash equality.
func auditHash(fp *Fingerprint) string {
	payload := fmt.Sprintf("%s|%s|%.4f", fp.Category, fp.PrimaryIdentifier(), fp.OwnershipPercentage)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:16]
}

// SortedYears returns the fingerprint's tax years in ascending order.
// Iteration over YearAmounts must go through this to keep match output
// deterministic.
func (fp *Fingerprint) SortedYears() []int {
	years := make([]int, 0, len(fp.YearAmounts))
	for year := range fp.YearAmounts {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
