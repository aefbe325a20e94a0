package adapters

import (
	"context"
	"time"

	"fxconvert/internal/domain"
)

type RateClient interface {
	FetchRate(ctx context.Context, base string) (domain.RateRecord, error)
}

// RateStore persists the whole rate document in one place.
type RateStore interface {
	Write(doc domain.RateDocument) error
	Read() (domain.RateDocument, error)
	Exists() bool
	ModTime() (time.Time, error)
}
