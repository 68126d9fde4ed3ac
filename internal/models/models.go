// Package models defines the Box 3 dossier data model consumed by the
// deduplication engine: the four asset category variants, debts, the
// Box3Blueprint collection, and the year-keyed monetary data attached to
// each asset.
//
// All monetary amounts use decimal.Decimal. Confidence and source annotations
// on monetary values are carried but never interpreted here; they belong to
// the upstream extraction layer.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetCategory identifies one of the four Box 3 asset categories.
type AssetCategory string

const (
	// CategoryBankSavings covers checking and savings accounts.
	CategoryBankSavings AssetCategory = "bank_savings"
	// CategoryInvestment covers brokerage and investment accounts.
	CategoryInvestment AssetCategory = "investments"
	// CategoryRealEstate covers property holdings valued by WOZ assessment.
	CategoryRealEstate AssetCategory = "real_estate"
	// CategoryOtherAsset covers everything else: claims, loans given out,
	// valuables, crypto, and similar positions.
	CategoryOtherAsset AssetCategory = "other_assets"
)

// String returns the string representation of AssetCategory
func (c AssetCategory) String() string {
	return string(c)
}

// IsValid checks if the asset category is one of the four known categories
func (c AssetCategory) IsValid() bool {
	switch c {
	case CategoryBankSavings, CategoryInvestment, CategoryRealEstate, CategoryOtherAsset:
		return true
	default:
		return false
	}
}

// AllCategories returns the four asset categories in their canonical order
func AllCategories() []AssetCategory {
	return []AssetCategory{
		CategoryBankSavings,
		CategoryInvestment,
		CategoryRealEstate,
		CategoryOtherAsset,
	}
}

// OwnerJoint is the owner reference for assets held jointly by the
// fiscal partners rather than by a single fiscal person.
const OwnerJoint = "joint"

// MonetaryValue is a single extracted monetary data point. Confidence and
// Source are opaque annotations from the extraction layer.
type MonetaryValue struct {
	Amount     decimal.Decimal `json:"amount"`
	Confidence string          `json:"confidence,omitempty"`
	Source     string          `json:"source,omitempty"`
}

// MarshalJSON renders the amount as a string to avoid float round-tripping
func (mv *MonetaryValue) MarshalJSON() ([]byte, error) {
	type Alias MonetaryValue
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		*Alias
	}{
		Amount: mv.Amount.String(),
		Alias:  (*Alias)(mv),
	})
}

// UnmarshalJSON accepts the amount as either a JSON number or a string
func (mv *MonetaryValue) UnmarshalJSON(data []byte) error {
	type Alias MonetaryValue
	aux := &struct {
		Amount json.Number `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(mv),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	mv.Amount, err = decimal.NewFromString(aux.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	return nil
}

// YearlyFinancials holds the monetary data points extracted for one tax year.
// Every field is optional; the extraction layer fills in what it found.
type YearlyFinancials struct {
	ValueJan1        *MonetaryValue `json:"value_jan_1,omitempty"`
	ValueDec31       *MonetaryValue `json:"value_dec_31,omitempty"`
	InterestReceived *MonetaryValue `json:"interest_received,omitempty"`
	DividendReceived *MonetaryValue `json:"dividend_received,omitempty"`
	WOZValue         *MonetaryValue `json:"woz_value,omitempty"`
}

// AssetBase carries the fields shared by every asset category variant.
type AssetBase struct {
	ID                  string                    `json:"id"`
	Owner               string                    `json:"owner,omitempty"`
	OwnershipPercentage float64                   `json:"ownership_percentage"`
	Description         string                    `json:"description,omitempty"`
	YearlyData          map[int]*YearlyFinancials `json:"yearly_data,omitempty"`
}

// Validate performs basic validation on the shared asset fields
func (a *AssetBase) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}

	if a.OwnershipPercentage < 0 || a.OwnershipPercentage > 100 {
		return fmt.Errorf("ownership percentage must be between 0 and 100: %v", a.OwnershipPercentage)
	}

	return nil
}

// BankAccount represents a bank or savings account extracted from source
// documents. AccountMasked may be a full IBAN, a masked account number, or
// free text; the fingerprint layer decides what is usable.
type BankAccount struct {
	AssetBase
	AccountMasked string `json:"account_masked,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	Country       string `json:"country,omitempty"`
}

// Investment represents a brokerage or investment account. InvestmentType is
// free-form extraction output ("stocks", "bonds", "other", ...).
type Investment struct {
	AssetBase
	AccountMasked  string `json:"account_masked,omitempty"`
	Institution    string `json:"institution,omitempty"`
	InvestmentType string `json:"investment_type,omitempty"`
}

// RealEstate represents a property holding. CadastralID is filled when a
// document carried an explicit cadastral reference; otherwise postcode plus
// house number serves as the identifying pair.
type RealEstate struct {
	AssetBase
	Address     string `json:"address,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	CadastralID string `json:"cadastral_id,omitempty"`
}

// OtherAsset represents any remaining Box 3 position (claims, loans given
// out, valuables). The source schema carries no ownership percentage for
// this category; the fingerprint generator defaults it to full household
// ownership.
type OtherAsset struct {
	ID          string                    `json:"id"`
	Owner       string                    `json:"owner,omitempty"`
	Description string                    `json:"description,omitempty"`
	AssetType   string                    `json:"asset_type,omitempty"`
	YearlyData  map[int]*YearlyFinancials `json:"yearly_data,omitempty"`
}

// Validate performs basic validation on the OtherAsset
func (o *OtherAsset) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	return nil
}

// Debt represents a Box 3 debt position. Debts pass through the
// deduplication engine unmatched in this version; they are only co-removed
// if a merge resolution references their id.
type Debt struct {
	ID          string                    `json:"id"`
	Owner       string                    `json:"owner,omitempty"`
	Description string                    `json:"description,omitempty"`
	Lender      string                    `json:"lender,omitempty"`
	YearlyData  map[int]*YearlyFinancials `json:"yearly_data,omitempty"`
}

// Box3Blueprint is the working asset collection for one dossier: everything
// the extraction passes have produced so far, grouped per category.
type Box3Blueprint struct {
	BankAccounts []*BankAccount `json:"bank_accounts,omitempty"`
	Investments  []*Investment  `json:"investments,omitempty"`
	RealEstate   []*RealEstate  `json:"real_estate,omitempty"`
	OtherAssets  []*OtherAsset  `json:"other_assets,omitempty"`
	Debts        []*Debt        `json:"debts,omitempty"`
}

// CategoryCount returns the number of assets in the given category
func (bp *Box3Blueprint) CategoryCount(category AssetCategory) int {
	switch category {
	case CategoryBankSavings:
		return len(bp.BankAccounts)
	case CategoryInvestment:
		return len(bp.Investments)
	case CategoryRealEstate:
		return len(bp.RealEstate)
	case CategoryOtherAsset:
		return len(bp.OtherAssets)
	default:
		return 0
	}
}

// TotalAssetCount returns the number of assets across all four categories
func (bp *Box3Blueprint) TotalAssetCount() int {
	total := 0
	for _, category := range AllCategories() {
		total += bp.CategoryCount(category)
	}
	return total
}

// AssetIDs returns the ids of every asset in the blueprint, in category order
func (bp *Box3Blueprint) AssetIDs() []string {
	ids := make([]string, 0, bp.TotalAssetCount())
	for _, a := range bp.BankAccounts {
		ids = append(ids, a.ID)
	}
	for _, a := range bp.Investments {
		ids = append(ids, a.ID)
	}
	for _, a := range bp.RealEstate {
		ids = append(ids, a.ID)
	}
	for _, a := range bp.OtherAssets {
		ids = append(ids, a.ID)
	}
	return ids
}

// Validate performs basic validation across the blueprint, checking per-asset
// fields and id uniqueness
func (bp *Box3Blueprint) Validate() error {
	seen := make(map[string]bool)

	check := func(id string, err error) error {
		if err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("duplicate asset id: %s", id)
		}
		seen[id] = true
		return nil
	}

	for _, a := range bp.BankAccounts {
		if err := check(a.ID, a.Validate()); err != nil {
			return fmt.Errorf("bank account: %w", err)
		}
	}
	for _, a := range bp.Investments {
		if err := check(a.ID, a.Validate()); err != nil {
			return fmt.Errorf("investment: %w", err)
		}
	}
	for _, a := range bp.RealEstate {
		if err := check(a.ID, a.Validate()); err != nil {
			return fmt.Errorf("real estate: %w", err)
		}
	}
	for _, a := range bp.OtherAssets {
		if err := check(a.ID, a.Validate()); err != nil {
			return fmt.Errorf("other asset: %w", err)
		}
	}

	return nil
}

// FirstAvailableValue returns the first non-nil monetary value among the
// ordered candidates for one tax year. Returns nil when the year has no
// data at all.
func (yf *YearlyFinancials) FirstAvailableValue(candidates ...func(*YearlyFinancials) *MonetaryValue) *MonetaryValue {
	if yf == nil {
		return nil
	}
	for _, candidate := range candidates {
		if v := candidate(yf); v != nil {
			return v
		}
	}
	return nil
}

// Value field selectors used by the fingerprint generators to express
// per-category candidate orderings.

// SelectValueJan1 selects the January 1 valuation
func SelectValueJan1(yf *YearlyFinancials) *MonetaryValue { return yf.ValueJan1 }

// SelectValueDec31 selects the December 31 valuation
func SelectValueDec31(yf *YearlyFinancials) *MonetaryValue { return yf.ValueDec31 }

// SelectWOZValue selects the government-assessed WOZ valuation
func SelectWOZValue(yf *YearlyFinancials) *MonetaryValue { return yf.WOZValue }
