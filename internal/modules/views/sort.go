package views

import (
	"cmp"
	"slices"
	"time"

	"github.com/aristath/marketpulse/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey identifies one of the supported orderings.
// The set is closed; use ParseSortKey to resolve identifiers coming from requests.
type SortKey int

const (
	// SortNone keeps the input order
	SortNone SortKey = iota
	SortChangeDesc
	SortChangeAsc
	SortPriceDesc
	SortPriceAsc
	SortVolumeDesc
	SortMarketCapDesc
	SortSymbol
	SortNewest
	SortOldest
	SortPercentageDesc
	SortValueDesc
)

type valueKind uint8

const (
	kindNumber valueKind = iota
	kindText
	kindTime
)

type sortSpec struct {
	name  string
	field string
	kind  valueKind
	desc  bool
}

var sortSpecs = [...]sortSpec{
	SortNone:           {name: "none"},
	SortChangeDesc:     {name: "change-desc", field: domain.FieldChangePercent, kind: kindNumber, desc: true},
	SortChangeAsc:      {name: "change-asc", field: domain.FieldChangePercent, kind: kindNumber},
	SortPriceDesc:      {name: "price-desc", field: domain.FieldCurrentPrice, kind: kindNumber, desc: true},
	SortPriceAsc:       {name: "price-asc", field: domain.FieldCurrentPrice, kind: kindNumber},
	SortVolumeDesc:     {name: "volume-desc", field: domain.FieldVolume, kind: kindNumber, desc: true},
	SortMarketCapDesc:  {name: "market-cap-desc", field: domain.FieldMarketCap, kind: kindNumber, desc: true},
	SortSymbol:         {name: "symbol", field: domain.FieldSymbol, kind: kindText},
	SortNewest:         {name: "newest", field: domain.FieldTimestamp, kind: kindTime, desc: true},
	SortOldest:         {name: "oldest", field: domain.FieldTimestamp, kind: kindTime},
	SortPercentageDesc: {name: "percentage-desc", field: domain.FieldPercentage, kind: kindNumber, desc: true},
	SortValueDesc:      {name: "value-desc", field: domain.FieldValue, kind: kindNumber, desc: true},
}

// String returns the identifier used in requests
func (k SortKey) String() string {
	if int(k) < len(sortSpecs) {
		return sortSpecs[k].name
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler
func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseSortKey resolves a sort identifier. ok is false for unknown identifiers.
func ParseSortKey(name string) (SortKey, bool) {
	for i, spec := range sortSpecs {
		if spec.name == name {
			return SortKey(i), true
		}
	}
	return SortNone, false
}

// SortBy returns a stably sorted copy of list.
// Missing numeric fields compare as 0, missing text as "" and missing or
// unparsable timestamps as the zero time. Text uses English collation.
func SortBy[T Record](list []T, key SortKey) []T {
	out := slices.Clone(list)
	if key == SortNone || int(key) >= len(sortSpecs) {
		return out
	}

	spec := sortSpecs[key]
	compare := comparator(spec)
	slices.SortStableFunc(out, func(a, b T) int {
		if spec.desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func comparator(spec sortSpec) func(a, b Record) int {
	switch spec.kind {
	case kindText:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English)
		return func(a, b Record) int {
			return col.CompareString(textValue(a, spec.field), textValue(b, spec.field))
		}
	case kindTime:
		return func(a, b Record) int {
			return timeValue(a, spec.field).Compare(timeValue(b, spec.field))
		}
	default:
		return func(a, b Record) int {
			return cmp.Compare(numberValue(a, spec.field), numberValue(b, spec.field))
		}
	}
}

func numberValue(r Record, field string) float64 {
	if v, ok := r.Lookup(field); ok {
		if f, isNum := v.(float64); isNum {
			return f
		}
	}
	return 0
}

func textValue(r Record, field string) string {
	if v, ok := r.Lookup(field); ok {
		if s, isText := v.(string); isText {
			return s
		}
	}
	return ""
}

func timeValue(r Record, field string) time.Time {
	s := textValue(r, field)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
