package rate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"fxconvert/internal/domain"
)

// NormalizeCode trims and uppercases a currency code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// lookupRate resolves pair against doc. Identity pairs are not special-cased.
func lookupRate(doc domain.RateDocument, pair domain.RatePair) (float64, error) {
	if pair.Base == "" || pair.Quote == "" {
		return 0, &domain.ValidationError{Err: domain.ErrCodeRequired}
	}

	rec, ok := doc[pair.Base]
	if !ok {
		return 0, &domain.ValidationError{
			Code: pair.Base,
			Msg:  fmt.Sprintf("currency %s is not a base currency. Available: %s", pair.Base, strings.Join(sortedKeys(doc), ", ")),
			Err:  domain.ErrBaseNotCached,
		}
	}

	value, ok := rec.Rates[pair.Quote]
	if !ok {
		return 0, &domain.ValidationError{
			Code: pair.Quote,
			Msg:  fmt.Sprintf("currency %s not found", pair.Quote),
			Err:  domain.ErrQuoteNotFound,
		}
	}
	return value, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
