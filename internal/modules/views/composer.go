// Package views provides the filter, search, sort and group primitives shared by
// every list view (assets, news, alerts, portfolio allocation and holdings).
//
// All operations are pure: they never modify their input and return a new slice
// (or the input itself when the operation is a no-op). They are safe to call
// concurrently on shared inputs.
package views

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// All is the filter value meaning "no filtering"
const All = "all"

// Unknown is the bucket for records whose group field is absent
const Unknown = "unknown"

// Record is a row the composer can inspect by field name.
// Values are string, float64 or []string; ok is false when the field is absent.
type Record interface {
	Lookup(field string) (value any, ok bool)
}

// FilterByField returns the records whose field equals value exactly.
// For list fields a record matches when any element equals value.
// The value All (or an empty value) returns list unchanged.
func FilterByField[T Record](list []T, field, value string) []T {
	if value == All || value == "" || field == "" {
		return list
	}

	out := make([]T, 0, len(list))
	for _, rec := range list {
		v, ok := rec.Lookup(field)
		if !ok {
			continue
		}
		if matchesExact(v, value) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesExact(v any, value string) bool {
	switch tv := v.(type) {
	case string:
		return tv == value
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64) == value
	case []string:
		for _, s := range tv {
			if s == value {
				return true
			}
		}
	}
	return false
}

// SearchText keeps the records where any of fields contains query,
// ignoring case. The query is trimmed; a blank query returns list unchanged.
// Absent and numeric fields never match.
func SearchText[T Record](list []T, query string, fields ...string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}

	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]T, 0, len(list))
	for _, rec := range list {
		if recordContains(rec, needle, fields, folder) {
			out = append(out, rec)
		}
	}
	return out
}

func recordContains(rec Record, needle string, fields []string, folder cases.Caser) bool {
	for _, field := range fields {
		v, ok := rec.Lookup(field)
		if !ok {
			continue
		}
		switch tv := v.(type) {
		case string:
			if strings.Contains(folder.String(tv), needle) {
				return true
			}
		case []string:
			for _, s := range tv {
				if strings.Contains(folder.String(s), needle) {
					return true
				}
			}
		}
	}
	return false
}

// groupKey renders a field value as a bucket key
func groupKey(v any, ok bool) string {
	if !ok {
		return Unknown
	}
	switch tv := v.(type) {
	case string:
		if tv == "" {
			return Unknown
		}
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case []string:
		if len(tv) == 0 {
			return Unknown
		}
		return strings.Join(tv, ",")
	}
	return Unknown
}
