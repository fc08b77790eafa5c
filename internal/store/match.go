package store

import (
	"sort"
	"strings"
)

// Matches reports whether every filter key equals the record's value.
// Numbers are compared by value so JSON-decoded floats match int filters.
func Matches(rec Record, filter Filter) bool {
	for key, want := range filter {
		got, ok := rec[key]
		if !ok {
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// SortRecords orders records in place by the given field. Records missing the
// field sort first. A nil order leaves the slice untouched.
func SortRecords(records []Record, order *Order) {
	if order == nil || order.Field == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		cmp := compareValues(records[i][order.Field], records[j][order.Field])
		if order.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return ToFloat64(a) == ToFloat64(b)
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return a == b
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if isNumber(a) && isNumber(b) {
		fa, fb := ToFloat64(a), ToFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(ToString(a), ToString(b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}

// pushdown extracts the indexed keys a backend can filter on natively.
type pushdown struct {
	id       string
	clientID string
}

func pushdownOf(filter Filter) pushdown {
	var p pushdown
	if v, ok := filter[FieldID].(string); ok {
		p.id = v
	}
	if v, ok := filter[FieldClientID].(string); ok {
		p.clientID = v
	}
	return p
}

func cloneFilter(src Filter) Filter {
	if src == nil {
		return nil
	}
	dst := make(Filter, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
