package rate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const DefaultMaxAge = 24 * time.Hour

type Options struct {
	// Bases are fetched in this order on every refresh.
	Bases  []string
	MaxAge time.Duration
	Clock  clockwork.Clock
}

// Manager owns the local rates document: refreshing it from the API and answering lookups from it.
type Manager struct {
	client adapters.RateClient
	store  adapters.RateStore
	bases  []string
	maxAge time.Duration
	clock  clockwork.Clock
}

func NewManager(client adapters.RateClient, store adapters.RateStore, opts Options) *Manager {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	bases := make([]string, 0, len(opts.Bases))
	for _, b := range opts.Bases {
		bases = append(bases, NormalizeCode(b))
	}
	return &Manager{client: client, store: store, bases: bases, maxAge: maxAge, clock: clock}
}

func (m *Manager) Bases() []string {
	return slices.Clone(m.bases)
}

// FetchRate returns the upstream record for base as decoded from the API.
func (m *Manager) FetchRate(ctx context.Context, base string) (domain.RateRecord, error) {
	return m.client.FetchRate(ctx, NormalizeCode(base))
}

// RefreshAll fetches every configured base and replaces the stored document.
// Any fetch failure aborts the refresh and leaves the stored document untouched.
func (m *Manager) RefreshAll(ctx context.Context) error {
	execID := uuid.NewString()
	log := logrus.WithField("execID", execID)
	log.Infof("Refreshing rates for %d base currencies", len(m.bases))

	doc := make(domain.RateDocument, len(m.bases))
	for _, base := range m.bases {
		rec, err := m.FetchRate(ctx, base)
		if err != nil {
			log.WithError(err).Warnf("Refresh aborted at base '%s'", base)
			return err
		}
		doc[base] = rec
	}

	if err := m.store.Write(doc); err != nil {
		log.WithError(err).Error("Failed to persist refreshed rates")
		return err
	}
	log.Info("✅ Rates refreshed")
	return nil
}

func (m *Manager) ReadCache() (domain.RateDocument, error) {
	return m.store.Read()
}

// ListAvailableCurrencies returns the quote currencies of the first base record, sorted.
func (m *Manager) ListAvailableCurrencies() ([]string, error) {
	doc, err := m.ReadCache()
	if err != nil {
		return nil, err
	}
	base, ok := m.firstBase(doc)
	if !ok {
		return nil, domain.ErrNoBases
	}
	return sortedKeys(doc[base].Rates), nil
}

// firstBase picks the first configured base present in doc, falling back to the smallest key.
func (m *Manager) firstBase(doc domain.RateDocument) (string, bool) {
	if len(doc) == 0 {
		return "", false
	}
	for _, b := range m.bases {
		if _, ok := doc[b]; ok {
			return b, true
		}
	}
	return sortedKeys(doc)[0], true
}

// Convert multiplies amount by the cached from->to rate. The amount itself is not validated.
func (m *Manager) Convert(amount float64, from, to string) (float64, error) {
	doc, err := m.ReadCache()
	if err != nil {
		return 0, err
	}
	value, err := lookupRate(doc, domain.RatePair{Base: NormalizeCode(from), Quote: NormalizeCode(to)})
	if err != nil {
		return 0, err
	}
	return amount * value, nil
}

func (m *Manager) Rate(from, to string) (float64, error) {
	return m.Convert(1, from, to)
}

// Age is how long ago the stored document was last written.
func (m *Manager) Age() (time.Duration, error) {
	modTime, err := m.store.ModTime()
	if err != nil {
		return 0, err
	}
	return m.clock.Since(modTime), nil
}

func (m *Manager) IsStale() bool {
	if !m.store.Exists() {
		return true
	}
	age, err := m.Age()
	if err != nil {
		logrus.WithError(err).Warn("Cannot determine rates cache age, treating as stale")
		return true
	}
	return age > m.maxAge
}

// EnsureFresh refreshes the document when it is stale and reports whether it did.
func (m *Manager) EnsureFresh(ctx context.Context) (bool, error) {
	if !m.IsStale() {
		return false, nil
	}
	if err := m.RefreshAll(ctx); err != nil {
		return false, fmt.Errorf("refresh stale rates: %w", err)
	}
	return true, nil
}
