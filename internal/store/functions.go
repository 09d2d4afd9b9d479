package store

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the SQL functions the query builder relies on.
// Registration is process-wide and applies to connections opened afterwards.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("casefold", 1, casefold)
		if registerErr != nil {
			registerErr = fmt.Errorf("register casefold: %w", registerErr)
		}
	})
	return registerErr
}

// casefold(x) returns the Unicode case-folded form of a text value, so that
// comparisons of folded strings are case-insensitive beyond ASCII. NULL and
// non-text values pass through unchanged.
func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return v, nil
	}
}

// fold uses a fresh Caser per call; Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(s)
}
