// Package validate coerces raw query-string values into typed inputs and
// checks struct constraints, reporting every violation as a readable message.
package validate

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/HerbHall/wakdex/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// engine returns the shared validator. Field names in messages come from the
// `query` struct tag so they match what the client sent.
func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates s and appends one message per failing field to v.
func Struct(s any, v *apperr.Violations) {
	err := engine().Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.Add("%v", err)
		return
	}
	for _, fe := range fieldErrs {
		v.Add("%s", message(fe))
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gt":
		if fe.Param() == "0" {
			return field + " must be a positive integer"
		}
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "dive":
		return field + " contains an invalid value"
	default:
		return fmt.Sprintf("%s failed the %q constraint", field, fe.Tag())
	}
}

// Int reads an optional integer query parameter. Absent or empty values
// return nil. Strings that are not numbers, or numbers with a fractional
// part, are recorded as violations and also return nil.
func Int(q url.Values, key string, v *apperr.Violations) *int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	n, ok := parseInt(raw)
	if !ok {
		v.Add("%s must be an integer", key)
		return nil
	}
	return &n
}

// IntList reads an optional integer list. Both repeated keys (ids=1&ids=2)
// and comma-separated values (ids=1,2) are accepted; blanks are skipped.
func IntList(q url.Values, key string, v *apperr.Violations) []int {
	var out []int
	bad := false
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, ok := parseInt(part)
			if !ok {
				bad = true
				continue
			}
			out = append(out, n)
		}
	}
	if bad {
		v.Add("%s must be a list of integers", key)
		return nil
	}
	return out
}

// maxExactFloat is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactFloat = 1 << 53

// parseInt accepts decimal integers and integral floats ("3", "3.0"). Range
// checks belong to the validate tags of the caller.
func parseInt(raw string) (int, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > maxExactFloat {
		return 0, false
	}
	return int(f), true
}
