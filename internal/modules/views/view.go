package views

import (
	"net/url"
	"slices"

	"github.com/aristath/marketpulse/internal/domain"
)

// View is the per-page configuration of the composer: which field filters,
// which fields are searched, which orderings are offered and how to group.
type View struct {
	Name         string
	FilterField  string
	FilterValues []string
	SearchFields []string
	Sorts        []SortKey
	DefaultSort  SortKey
	GroupField   string
	GroupOrder   []string
}

// Query carries the user's choices for one view
type Query struct {
	Filter string
	Search string
	Sort   string
}

// Descriptor describes a view's options for clients
type Descriptor struct {
	Name         string    `json:"name"`
	FilterField  string    `json:"filterField,omitempty"`
	FilterValues []string  `json:"filterValues,omitempty"`
	SearchFields []string  `json:"searchFields,omitempty"`
	Sorts        []SortKey `json:"sorts"`
	DefaultSort  SortKey   `json:"defaultSort"`
	GroupField   string    `json:"groupField,omitempty"`
	GroupOrder   []string  `json:"groupOrder,omitempty"`
}

var (
	// AssetsView drives the stocks and crypto table
	AssetsView = View{
		Name:         "assets",
		FilterField:  domain.FieldAssetType,
		FilterValues: []string{string(domain.AssetTypeStock), string(domain.AssetTypeCrypto)},
		SearchFields: []string{domain.FieldSymbol, domain.FieldName},
		Sorts: []SortKey{
			SortChangeDesc, SortChangeAsc, SortPriceDesc, SortPriceAsc,
			SortVolumeDesc, SortMarketCapDesc, SortSymbol,
		},
		DefaultSort: SortChangeDesc,
	}

	// NewsView drives the news radar, newest first
	NewsView = View{
		Name:         "news",
		FilterField:  domain.FieldCategory,
		FilterValues: domain.NewsCategories,
		SearchFields: []string{domain.FieldTitle, domain.FieldSource, domain.FieldAffectedAssets},
		Sorts:        []SortKey{SortNewest, SortOldest},
		DefaultSort:  SortNewest,
	}

	// AlertsView drives the alert stacks grouped by severity
	AlertsView = View{
		Name:         "alerts",
		FilterField:  domain.FieldSeverity,
		FilterValues: domain.SeverityOrder,
		SearchFields: []string{domain.FieldMessage, domain.FieldAsset},
		Sorts:        []SortKey{SortNone, SortNewest, SortOldest},
		DefaultSort:  SortNone,
		GroupField:   domain.FieldSeverity,
		GroupOrder:   domain.SeverityOrder,
	}

	// AllocationView drives the portfolio allocation breakdown
	AllocationView = View{
		Name:         "allocation",
		SearchFields: []string{domain.FieldAssetID},
		Sorts:        []SortKey{SortNone, SortPercentageDesc, SortValueDesc, SortSymbol},
		DefaultSort:  SortNone,
	}

	// HoldingsView drives the portfolio holdings table
	HoldingsView = View{
		Name:         "holdings",
		SearchFields: []string{domain.FieldAssetID},
		Sorts:        []SortKey{SortNone, SortValueDesc, SortChangeDesc, SortChangeAsc, SortSymbol},
		DefaultSort:  SortNone,
	}
)

// Registry lists every configured view
var Registry = []View{AssetsView, NewsView, AlertsView, AllocationView, HoldingsView}

// ResolveSort maps a requested sort identifier to one the view offers,
// falling back to the view default.
func (v View) ResolveSort(name string) SortKey {
	key, ok := ParseSortKey(name)
	if !ok || !slices.Contains(v.Sorts, key) {
		return v.DefaultSort
	}
	return key
}

// ParseQuery reads filter, search and sort from request parameters.
// The filter may also be given under the view's filter field name
// (for example ?severity=high on the alerts view).
func (v View) ParseQuery(values url.Values) Query {
	q := Query{
		Filter: values.Get("filter"),
		Search: values.Get("search"),
		Sort:   values.Get("sort"),
	}
	if q.Filter == "" && v.FilterField != "" {
		q.Filter = values.Get(v.FilterField)
	}
	if q.Search == "" {
		q.Search = values.Get("q")
	}
	return q
}

// Describe returns the client-facing options of the view
func (v View) Describe() Descriptor {
	return Descriptor{
		Name:         v.Name,
		FilterField:  v.FilterField,
		FilterValues: v.FilterValues,
		SearchFields: v.SearchFields,
		Sorts:        v.Sorts,
		DefaultSort:  v.DefaultSort,
		GroupField:   v.GroupField,
		GroupOrder:   v.GroupOrder,
	}
}

// Apply runs filter, search and sort for the view
func Apply[T Record](v View, list []T, q Query) []T {
	out := FilterByField(list, v.FilterField, q.Filter)
	out = SearchText(out, q.Search, v.SearchFields...)
	return SortBy(out, v.ResolveSort(q.Sort))
}

// Grouped runs Apply and buckets the result by the view's group field.
// ordered follows the canonical order; rest holds any other buckets.
func Grouped[T Record](v View, list []T, q Query) (ordered, rest []Bucket[T]) {
	g := GroupBy(Apply(v, list, q), v.GroupField)
	return g.Ordered(v.GroupOrder), g.Rest(v.GroupOrder)
}

// Top returns at most n records of list
func Top[T any](list []T, n int) []T {
	if n < 0 || len(list) <= n {
		return list
	}
	return list[:n]
}
