package recordstore

import (
	"sort"
	"strings"
)

type condition struct {
	field string
	value any
}

// Predicate is a conjunction of field equality conditions.
// The zero value matches every record of the queried type.
type Predicate struct {
	conds []condition
}

// All matches every record of the queried type
func All() Predicate {
	return Predicate{}
}

// Equals matches records whose field equals value. References compare
// by target record id.
func Equals(field string, value any) Predicate {
	return Predicate{conds: []condition{{field: field, value: value}}}
}

// And adds another equality condition
func (p Predicate) And(field string, value any) Predicate {
	conds := make([]condition, len(p.conds), len(p.conds)+1)
	copy(conds, p.conds)
	return Predicate{conds: append(conds, condition{field: field, value: value})}
}

// Sort orders query results by a field
type Sort struct {
	Field      string
	Descending bool
}

// Ascending sorts by field ascending
func Ascending(field string) Sort {
	return Sort{Field: field}
}

func sortRecords(records []*Record, sorts []Sort) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, s := range sorts {
			c := compareField(records[i], records[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareField orders unset fields last
func compareField(a, b *Record, field string) int {
	av, aok := a.Get(field)
	bv, bok := b.Get(field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	switch x := av.(type) {
	case string:
		if y, ok := bv.(string); ok {
			return strings.Compare(x, y)
		}
	case int64, float64:
		xf, _ := a.GetFloat(field)
		if yf, ok := b.GetFloat(field); ok {
			switch {
			case xf < yf:
				return -1
			case xf > yf:
				return 1
			}
			return 0
		}
	case bool:
		if y, ok := bv.(bool); ok && x != y {
			if !x {
				return -1
			}
			return 1
		}
		return 0
	}
	return 0
}
