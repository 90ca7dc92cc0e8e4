package core

// analysis.go holds the four data-quality analyzers. Each is a pure
// function of the record sequence; none of them mutates a record.

import (
	"strconv"
	"strings"
)

// Default column names for the category and amount analyzers.
const (
	DefaultCategoryKey = "Mes"
	DefaultAmountKey   = "Cantidad"
)

// Keys names the columns the analyzers read.
type Keys struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// DefaultKeys returns {"Mes", "Cantidad"}.
func DefaultKeys() Keys {
	return Keys{Category: DefaultCategoryKey, Amount: DefaultAmountKey}
}

// Tuple is a record's values in column order.
type Tuple []string

// Counts maps a category to how often it occurs, in first-seen order.
type Counts = OrderedMap[int]

// Totals maps a category to its summed amount, in first-seen order.
type Totals = OrderedMap[*Total]

// DetectDuplicates returns every value tuple that occurs more than once.
// Each tuple is reported once, in the order its first repeat is seen.
// Key names play no part in the comparison.
func DetectDuplicates(records []Record) []Tuple {
	seen := make(map[string]struct{}, len(records))
	reported := make(map[string]struct{})
	var repeated []Tuple

	for i := range records {
		values := records[i].Values()
		id := tupleKey(values)

		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			continue
		}
		if _, ok := reported[id]; ok {
			continue
		}
		reported[id] = struct{}{}
		repeated = append(repeated, Tuple(values))
	}

	return repeated
}

// tupleKey encodes values so that distinct tuples never share a key.
func tupleKey(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// CountCategories counts the non-empty values of the category column.
func CountCategories(records []Record, categoryKey string) *Counts {
	counts := NewOrderedMap[int](0)
	for i := range records {
		category := categoryOf(records[i], categoryKey)
		if category == "" {
			continue
		}
		n, _ := counts.Get(category)
		counts.Set(category, n+1)
	}
	return counts
}

// DetectInvalidAmounts returns the records whose amount is missing, empty,
// or one of the "n/a" / "na" sentinels once normalized.
//
// Only missing values are caught here. Arbitrary non-numeric text such as
// "abc" is not flagged; SumByCategory skips it silently instead.
func DetectInvalidAmounts(records []Record, amountKey string) []Record {
	var invalid []Record
	for i := range records {
		if isMissingAmount(amountOf(records[i], amountKey)) {
			invalid = append(invalid, records[i])
		}
	}
	return invalid
}

// SumByCategory totals the amount column per category. Records with an
// empty category are skipped. An unparseable amount contributes nothing,
// but its category still appears with a zero total.
func SumByCategory(records []Record, keys Keys) *Totals {
	totals := NewOrderedMap[*Total](0)
	for i := range records {
		category := categoryOf(records[i], keys.Category)
		if category == "" {
			continue
		}
		amount := foldDigits(amountOf(records[i], keys.Amount))
		total := totalFor(totals, category)

		if isASCIIDigits(amount) {
			total.AddDigits(amount)
			continue
		}
		if f, ok := parseDecimal(amount); ok {
			total.AddFloat(f)
		}
	}
	return totals
}

func totalFor(totals *Totals, category string) *Total {
	if t, ok := totals.Get(category); ok {
		return t
	}
	t := &Total{}
	totals.Set(category, t)
	return t
}

// categoryOf reads the category column and drops one surrounding quote on
// each side. A missing column reads as empty.
func categoryOf(rec Record, key string) string {
	v, _ := rec.Get(key)
	v = strings.TrimPrefix(v, `"`)
	return strings.TrimSuffix(v, `"`)
}

// amountOf reads and normalizes the amount column.
func amountOf(rec Record, key string) string {
	v, _ := rec.Get(key)
	return NormalizeAmount(v)
}

var amountReplacer = strings.NewReplacer(`"`, "", "$", "", ",", "")

// NormalizeAmount removes every double quote, dollar sign and comma, then
// trims surrounding whitespace: `"$50,000"` becomes "50000".
func NormalizeAmount(s string) string {
	return strings.TrimSpace(amountReplacer.Replace(s))
}

func isMissingAmount(normalized string) bool {
	return normalized == "" ||
		strings.EqualFold(normalized, "n/a") ||
		strings.EqualFold(normalized, "na")
}
