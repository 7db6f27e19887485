package query

import (
	"strconv"
	"strings"
	"sync"

	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/compare"
)

var (
	primersMu sync.RWMutex
	primers   = map[string]datasource.Primer{
		"lower":  Lower,
		"upper":  Upper,
		"trim":   Trim,
		"number": Number,
		"date":   Date,
	}
)

// RegisterPrimer makes p available to query documents under name,
// replacing any primer of the same name.
func RegisterPrimer(name string, p datasource.Primer) {
	primersMu.Lock()
	defer primersMu.Unlock()
	primers[name] = p
}

// LookupPrimer returns the primer registered under name.
func LookupPrimer(name string) (datasource.Primer, bool) {
	primersMu.RLock()
	defer primersMu.RUnlock()
	p, ok := primers[name]
	return p, ok
}

// Lower lower-cases strings and passes other values through.
func Lower(v any) any {
	if s, ok := v.(string); ok {
		return compare.Lower(s)
	}
	return v
}

// Upper upper-cases strings and passes other values through.
func Upper(v any) any {
	if s, ok := v.(string); ok {
		return compare.Upper(s)
	}
	return v
}

// Trim strips surrounding white space from strings.
func Trim(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

// Number converts numeric strings to float64. Unparseable strings become nil
// so they sort with missing values.
func Number(v any) any {
	switch s := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		return f
	default:
		if f, ok := compare.ToFloat(v); ok {
			return f
		}
		return v
	}
}

// Date parses date strings (RFC 3339, "2006-01-02 15:04:05", "2006-01-02")
// into time.Time. Unparseable strings become nil.
func Date(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, ok := compare.ParseTime(s)
	if !ok {
		return nil
	}
	return t
}
