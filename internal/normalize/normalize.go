// Package normalize turns free-text, human-entered identifiers into
// comparable canonical tokens: institution names, masked account numbers,
// and Dutch property addresses.
//
// Every function in this package is deterministic, side-effect free, and has
// a defined fallback for missing or malformed input. None of them return an
// error: absence of a usable identifier is a valid outcome, not a failure.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// UnknownInstitution is the canonical token for an absent or empty
// institution name. It deliberately never matches another UnknownInstitution
// during comparison; two assets with unknown banks share no evidence.
const UnknownInstitution = "UNKNOWN"

// maxInstitutionTokenLength bounds the fallback token for unrecognized names.
const maxInstitutionTokenLength = 20

// institutionAliases maps lower-cased name fragments to canonical bank
// tokens. Static lookup data; extend as new institutions show up in source
// documents.
var institutionAliases = map[string]string{
	"rabobank":              "RABO",
	"rabo":                  "RABO",
	"abn amro":              "ABNAMRO",
	"abnamro":               "ABNAMRO",
	"abn":                   "ABNAMRO",
	"ing bank":              "ING",
	"ing":                   "ING",
	"sns bank":              "SNS",
	"sns":                   "SNS",
	"asn bank":              "ASN",
	"asn":                   "ASN",
	"triodos bank":          "TRIODOS",
	"triodos":               "TRIODOS",
	"bunq":                  "BUNQ",
	"knab":                  "KNAB",
	"regiobank":             "REGIOBANK",
	"van lanschot":          "VANLANSCHOT",
	"nationale nederlanden": "NN",
	"nn bank":               "NN",
	"aegon":                 "AEGON",
	"degiro":                "DEGIRO",
	"de giro":               "DEGIRO",
	"binck":                 "BINCK",
	"binckbank":             "BINCK",
	"saxo":                  "SAXO",
	"saxo bank":             "SAXO",
	"interactive brokers":   "IBKR",
	"brand new day":         "BND",
	"meesman":               "MEESMAN",
	"n26":                   "N26",
	"revolut":               "REVOLUT",
	"ohpen":                 "OHPEN",
	"centraal beheer":       "CENTRAALBEHEER",
}

// aliasLookupOrder holds the alias keys sorted longest first, ties broken
// lexicographically. Substring containment must scan in a fixed order: short
// fragments like "ing" occur inside everyday Dutch words ("spaarrekening"),
// and longest-first lets the most specific alias win.
var aliasLookupOrder = func() []string {
	aliases := make([]string, 0, len(institutionAliases))
	for alias := range institutionAliases {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return aliases
}()

// streetSuffixes maps written-out Dutch street suffix words to their
// abbreviated forms so that semantically identical addresses compare equal.
var streetSuffixes = map[string]string{
	"straat": "str",
	"laan":   "ln",
	"weg":    "wg",
	"plein":  "pln",
}

var (
	fullIBANPattern    = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z]{4}[0-9]{10}`)
	maskedLast4Pattern = regexp.MustCompile(`\*+([0-9]{4})$`)
	trailingDigits     = regexp.MustCompile(`([0-9]{4})$`)
	nonAlphanumeric    = regexp.MustCompile(`[^A-Z0-9]`)
	addressPunctuation = regexp.MustCompile(`[.,;:'"()\-]`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// NormalizeInstitutionName maps a free-text bank or institution name to a
// canonical token. Lookup order: exact alias, longest alias contained in the
// name, then an uppercase alphanumeric fallback truncated to 20 characters.
// Empty input maps to UnknownInstitution.
func NormalizeInstitutionName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	if cleaned == "" {
		return UnknownInstitution
	}

	if token, ok := institutionAliases[cleaned]; ok {
		return token
	}

	for _, alias := range aliasLookupOrder {
		if strings.Contains(cleaned, alias) {
			return institutionAliases[alias]
		}
	}

	fallback := nonAlphanumeric.ReplaceAllString(strings.ToUpper(cleaned), "")
	if fallback == "" {
		return UnknownInstitution
	}
	if len(fallback) > maxInstitutionTokenLength {
		fallback = fallback[:maxInstitutionTokenLength]
	}
	return fallback
}

// AccountNumber is the result of extracting account identifiers from a
// masked or partial account string. Both fields may be empty.
type AccountNumber struct {
	Full  string
	Last4 string
}

// ExtractIBAN pulls whatever account identification survives masking out of
// an account string. Tries, in order: a full IBAN anywhere in the string, an
// asterisk-masked number with four trailing digits, then any trailing
// four-digit run. An empty result means the string carried no usable
// identifier.
func ExtractIBAN(masked string) AccountNumber {
	cleaned := strings.ToUpper(whitespaceRun.ReplaceAllString(masked, ""))
	if cleaned == "" {
		return AccountNumber{}
	}

	if iban := fullIBANPattern.FindString(cleaned); iban != "" {
		return AccountNumber{
			Full:  iban,
			Last4: iban[len(iban)-4:],
		}
	}

	if m := maskedLast4Pattern.FindStringSubmatch(cleaned); m != nil {
		return AccountNumber{Last4: m[1]}
	}

	if m := trailingDigits.FindStringSubmatch(cleaned); m != nil {
		return AccountNumber{Last4: m[1]}
	}

	return AccountNumber{}
}

// NormalizeAddress canonicalizes a Dutch property address: lower-case,
// punctuation stripped, whitespace collapsed, and common street suffix words
// abbreviated ("Hoofdstraat 12" and "hoofdstr. 12" compare equal).
func NormalizeAddress(address string) string {
	cleaned := strings.ToLower(strings.TrimSpace(address))
	if cleaned == "" {
		return ""
	}

	cleaned = addressPunctuation.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	for suffix, abbreviation := range streetSuffixes {
		cleaned = strings.ReplaceAll(cleaned, suffix, abbreviation)
	}

	return cleaned
}

// NormalizePostcode canonicalizes a Dutch postcode ("1234 ab" -> "1234AB").
func NormalizePostcode(postcode string) string {
	return strings.ToUpper(whitespaceRun.ReplaceAllString(strings.TrimSpace(postcode), ""))
}

// NormalizeDescription canonicalizes a free-text asset description for use
// as the primary identifier of other-category assets. Same treatment as
// addresses; descriptions are the only identifying field that category has.
func NormalizeDescription(description string) string {
	cleaned := strings.ToLower(strings.TrimSpace(description))
	if cleaned == "" {
		return ""
	}

	cleaned = addressPunctuation.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
