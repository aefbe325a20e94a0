package domain

// RateRecord is the body returned by the rates API for one base currency.
type RateRecord struct {
	Result             string             `json:"result,omitempty"`
	Provider           string             `json:"provider,omitempty"`
	Documentation      string             `json:"documentation,omitempty"`
	TermsOfUse         string             `json:"terms_of_use,omitempty"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix,omitempty"`
	TimeLastUpdateUTC  string             `json:"time_last_update_utc,omitempty"`
	TimeNextUpdateUnix int64              `json:"time_next_update_unix,omitempty"`
	TimeNextUpdateUTC  string             `json:"time_next_update_utc,omitempty"`
	TimeEOLUnix        int64              `json:"time_eol_unix,omitempty"`
	BaseCode           string             `json:"base_code,omitempty"`
	Rates              map[string]float64 `json:"rates"`
}

// RateDocument maps a base currency code to its record. It is always replaced as a whole.
type RateDocument map[string]RateRecord

// Validate checks that every record carries a rates table.
func (d RateDocument) Validate() error {
	for base, rec := range d {
		if rec.Rates == nil {
			return &MalformedCacheError{Base: base, Reason: "missing rates"}
		}
	}
	return nil
}

// RatePair identifies a conversion from Base into Quote.
type RatePair struct {
	Base  string
	Quote string
}
