// Package matching resolves which cached job offer a candidate record refers to.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/logger"
	"github.com/seeg/onehcm/internal/normalize"
	"github.com/seeg/onehcm/internal/store"
)

// MatchType tells which rule of the priority chain produced a match.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchTitle    MatchType = "title_based"
	MatchPartial  MatchType = "partial"
	MatchFallback MatchType = "fallback"
	// MatchProvided marks a job offer id supplied by the caller; no lookup was done.
	MatchProvided MatchType = "provided"
)

const (
	ConfidenceExact    = 1.0
	ConfidenceTitle    = 0.8
	ConfidencePartial  = 0.6
	ConfidenceFallback = 0.3
	ConfidenceProvided = 1.0

	// PartialThreshold must be strictly exceeded by the word overlap.
	PartialThreshold = 0.7

	// DefaultTTL is the nominal cache lifetime reported by IsStale.
	DefaultTTL = 5 * time.Minute
)

var (
	// ErrNoOffers is returned when the cache would be built from zero offers.
	ErrNoOffers = errors.New("no job offers to cache")
	// ErrNotInitialized is returned when matching is attempted before a successful Initialize.
	ErrNotInitialized = errors.New("job offer matcher is not initialized")
)

// Match is the resolved job offer for a candidate.
type Match struct {
	JobOfferID string    `json:"job_offer_id"`
	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"`
}

// NeedsReview reports whether the match is a low-confidence guess that a
// recruiter should confirm.
func (m Match) NeedsReview() bool {
	return m.MatchType == MatchPartial || m.MatchType == MatchFallback
}

// OfferSource lists the job offers to cache, in insertion order.
type OfferSource interface {
	ListJobOffers(ctx context.Context) ([]store.JobOffer, error)
}

type snapshot struct {
	order     []string
	offers    map[string]store.JobOffer
	titles    map[string]string
	titleKeys []string
	loadedAt  time.Time
}

// Matcher holds an in-memory job offer cache. The cache is replaced as a
// whole on Initialize, so readers always see a complete snapshot.
type Matcher struct {
	mu     sync.RWMutex
	snap   *snapshot
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewMatcher creates an empty matcher. A non-positive ttl uses DefaultTTL.
func NewMatcher(ttl time.Duration, l *zap.Logger) *Matcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Matcher{
		ttl:    ttl,
		now:    time.Now,
		logger: logger.WithFields(l),
	}
}

// Initialize builds the cache from offers. Offers without an id are skipped
// and the first occurrence of a duplicate id or normalized title wins.
// The previous cache is kept when no usable offer is supplied.
func (m *Matcher) Initialize(offers []store.JobOffer) error {
	snap := &snapshot{
		order:  make([]string, 0, len(offers)),
		offers: make(map[string]store.JobOffer, len(offers)),
		titles: make(map[string]string, len(offers)),
	}

	for _, offer := range offers {
		id := strings.TrimSpace(offer.ID)
		if id == "" {
			continue
		}
		if _, exists := snap.offers[id]; exists {
			continue
		}
		snap.order = append(snap.order, id)
		snap.offers[id] = offer

		title := normalize.Title(offer.Title)
		if title == "" {
			continue
		}
		if _, exists := snap.titles[title]; !exists {
			snap.titles[title] = id
			snap.titleKeys = append(snap.titleKeys, title)
		}
	}

	if len(snap.order) == 0 {
		return ErrNoOffers
	}

	snap.loadedAt = m.now()

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	m.logger.Info("job offer cache initialized",
		zap.Int("offers", len(snap.order)),
		zap.Int("titles", len(snap.titleKeys)),
	)

	return nil
}

// Refresh reloads the cache from src.
func (m *Matcher) Refresh(ctx context.Context, src OfferSource) error {
	offers, err := src.ListJobOffers(ctx)
	if err != nil {
		return fmt.Errorf("list job offers: %w", err)
	}
	return m.Initialize(offers)
}

// FindMatchingJobOffer resolves the job offer referenced by c. The rules are
// tried in order: exact id, normalized title, word overlap, first cached offer.
func (m *Matcher) FindMatchingJobOffer(c *candidate.Data) (Match, error) {
	snap := m.current()
	if snap == nil {
		return Match{}, ErrNotInitialized
	}
	if c == nil {
		return Match{}, fmt.Errorf("%w: record is nil", candidate.ErrInvalid)
	}

	fields := logger.RecordFields("", c.ID, "")

	if ref := strings.TrimSpace(c.Offre.Reference); ref != "" {
		if _, ok := snap.offers[ref]; ok {
			return m.found(Match{JobOfferID: ref, MatchType: MatchExact, Confidence: ConfidenceExact}, fields), nil
		}
	}

	if title := normalize.Title(c.Offre.Intitule); title != "" {
		if id, ok := snap.titles[title]; ok {
			return m.found(Match{JobOfferID: id, MatchType: MatchTitle, Confidence: ConfidenceTitle}, fields), nil
		}

		for _, cached := range snap.titleKeys {
			if normalize.Overlap(title, cached) > PartialThreshold {
				match := Match{JobOfferID: snap.titles[cached], MatchType: MatchPartial, Confidence: ConfidencePartial}
				return m.found(match, fields), nil
			}
		}
	}

	match := Match{JobOfferID: snap.order[0], MatchType: MatchFallback, Confidence: ConfidenceFallback}
	m.logger.Warn("falling back to first cached job offer",
		append(fields,
			zap.String("job_offer_id", match.JobOfferID),
			zap.String("claimed_reference", c.Offre.Reference),
			zap.String("claimed_title", c.Offre.Intitule),
			zap.String("hint", "fallback matches need recruiter confirmation"),
		)...,
	)
	return match, nil
}

func (m *Matcher) found(match Match, fields []zap.Field) Match {
	m.logger.Debug("job offer matched",
		append(fields,
			zap.String("job_offer_id", match.JobOfferID),
			zap.String("match_type", string(match.MatchType)),
			zap.Float64("confidence", match.Confidence),
		)...,
	)
	return match
}

// Offer returns the cached job offer with the given id.
func (m *Matcher) Offer(id string) (store.JobOffer, bool) {
	snap := m.current()
	if snap == nil {
		return store.JobOffer{}, false
	}
	offer, ok := snap.offers[id]
	return offer, ok
}

// Size returns the number of cached offers.
func (m *Matcher) Size() int {
	snap := m.current()
	if snap == nil {
		return 0
	}
	return len(snap.order)
}

// CachedAt returns when the current cache was built, or the zero time.
func (m *Matcher) CachedAt() time.Time {
	snap := m.current()
	if snap == nil {
		return time.Time{}
	}
	return snap.loadedAt
}

// IsStale reports whether the cache is missing or older than the TTL.
// Nothing is evicted; callers decide whether to Refresh.
func (m *Matcher) IsStale() bool {
	snap := m.current()
	if snap == nil {
		return true
	}
	return m.now().Sub(snap.loadedAt) > m.ttl
}

func (m *Matcher) current() *snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
