package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/store"
)

func testOffers() []store.JobOffer {
	return []store.JobOffer{
		{ID: "job-1", Title: "Responsable Maintenance Réseau Électrique"},
		{ID: "job-42", Title: "Chef de Projet"},
		{ID: "job-7", Title: "Comptable Principal"},
	}
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m := NewMatcher(0, zap.NewNop())
	if err := m.Initialize(testOffers()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return m
}

func TestFindMatchingJobOffer(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)

	tests := []struct {
		name       string
		offre      candidate.Offre
		expectID   string
		expectType MatchType
		expectConf float64
	}{
		{
			name:       "exact reference wins regardless of title",
			offre:      candidate.Offre{Reference: "job-42", Intitule: "Comptable Principal"},
			expectID:   "job-42",
			expectType: MatchExact,
			expectConf: 1.0,
		},
		{
			name:       "title match ignores case and punctuation",
			offre:      candidate.Offre{Reference: "legacy-9", Intitule: "  chef   de projet!! "},
			expectID:   "job-42",
			expectType: MatchTitle,
			expectConf: 0.8,
		},
		{
			name:       "partial match with three of four words",
			offre:      candidate.Offre{Intitule: "Responsable maintenance réseau hydraulique"},
			expectID:   "job-1",
			expectType: MatchPartial,
			expectConf: 0.6,
		},
		{
			name:       "one of four words falls back",
			offre:      candidate.Offre{Intitule: "Responsable achats logistique transport"},
			expectID:   "job-1",
			expectType: MatchFallback,
			expectConf: 0.3,
		},
		{
			name:       "repeated words do not inflate overlap",
			offre:      candidate.Offre{Intitule: "Comptable comptable comptable directeur"},
			expectID:   "job-1",
			expectType: MatchFallback,
			expectConf: 0.3,
		},
		{
			name:       "decomposed accents still match the title",
			offre:      candidate.Offre{Intitule: "Responsable Maintenance Re\u0301seau E\u0301lectrique"},
			expectID:   "job-1",
			expectType: MatchTitle,
			expectConf: 0.8,
		},
		{
			name:       "empty record falls back to first offer",
			offre:      candidate.Offre{},
			expectID:   "job-1",
			expectType: MatchFallback,
			expectConf: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := m.FindMatchingJobOffer(&candidate.Data{ID: "c1", Offre: tt.offre})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if match.JobOfferID != tt.expectID || match.MatchType != tt.expectType || match.Confidence != tt.expectConf {
				t.Fatalf("expected %s/%s/%v, got %+v", tt.expectID, tt.expectType, tt.expectConf, match)
			}
		})
	}
}

func TestFindMatchingJobOfferNotInitialized(t *testing.T) {
	t.Parallel()

	m := NewMatcher(time.Minute, nil)

	if err := m.Initialize(nil); !errors.Is(err, ErrNoOffers) {
		t.Fatalf("expected ErrNoOffers, got %v", err)
	}

	if err := m.Initialize([]store.JobOffer{{ID: "  ", Title: "blank id"}}); !errors.Is(err, ErrNoOffers) {
		t.Fatalf("expected ErrNoOffers for offers without ids, got %v", err)
	}

	match, err := m.FindMatchingJobOffer(&candidate.Data{ID: "c1", Offre: candidate.Offre{Reference: "job-42"}})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if match.JobOfferID != "" {
		t.Fatalf("expected no fabricated id, got %q", match.JobOfferID)
	}
}

func TestInitializeKeepsPreviousCacheOnEmpty(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	if err := m.Initialize(nil); !errors.Is(err, ErrNoOffers) {
		t.Fatalf("expected ErrNoOffers, got %v", err)
	}
	if m.Size() != 3 {
		t.Fatalf("expected previous cache to be kept, got size %d", m.Size())
	}
}

func TestInitializeFirstDuplicateWins(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0, nil)
	err := m.Initialize([]store.JobOffer{
		{ID: "a", Title: "Analyste Crédit"},
		{ID: "b", Title: "analyste crédit"},
		{ID: "a", Title: "Autre"},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if m.Size() != 2 {
		t.Fatalf("expected 2 offers, got %d", m.Size())
	}

	offer, ok := m.Offer("a")
	if !ok || offer.Title != "Analyste Crédit" {
		t.Fatalf("expected first offer kept, got %+v", offer)
	}

	match, err := m.FindMatchingJobOffer(&candidate.Data{Offre: candidate.Offre{Intitule: "ANALYSTE CRÉDIT"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.JobOfferID != "a" || match.MatchType != MatchTitle {
		t.Fatalf("expected first title owner, got %+v", match)
	}
}

func TestFindMatchingJobOfferNilCandidate(t *testing.T) {
	t.Parallel()

	_, err := newTestMatcher(t).FindMatchingJobOffer(nil)
	if !errors.Is(err, candidate.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFallbackIsLogged(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	m := NewMatcher(0, zap.New(core))
	if err := m.Initialize(testOffers()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	match, err := m.FindMatchingJobOffer(&candidate.Data{ID: "c9", Offre: candidate.Offre{Intitule: "Pilote"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !match.NeedsReview() {
		t.Fatalf("expected fallback to need review")
	}

	entries := observed.FilterMessage("falling back to first cached job offer").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["candidate_id"] != "c9" {
		t.Fatalf("expected candidate id in log context, got %v", entries[0].ContextMap())
	}
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMatcher(5*time.Minute, nil)
	m.now = func() time.Time { return now }

	if !m.IsStale() {
		t.Fatalf("expected uninitialized cache to be stale")
	}

	if err := m.Initialize(testOffers()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !m.CachedAt().Equal(now) {
		t.Fatalf("unexpected cached at %v", m.CachedAt())
	}

	now = now.Add(4 * time.Minute)
	if m.IsStale() {
		t.Fatalf("expected fresh cache")
	}

	now = now.Add(2 * time.Minute)
	if !m.IsStale() {
		t.Fatalf("expected stale cache after ttl")
	}
	if m.Size() != 3 {
		t.Fatalf("stale cache must not be evicted")
	}
}

type stubSource struct {
	offers []store.JobOffer
	err    error
}

func (s *stubSource) ListJobOffers(context.Context) ([]store.JobOffer, error) {
	return s.offers, s.err
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)

	if err := m.Refresh(context.Background(), &stubSource{offers: []store.JobOffer{{ID: "job-99", Title: "Juriste"}}}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := m.Offer("job-42"); ok {
		t.Fatalf("expected cache to be rebuilt")
	}
	if m.Size() != 1 {
		t.Fatalf("expected 1 offer, got %d", m.Size())
	}

	boom := errors.New("db down")
	if err := m.Refresh(context.Background(), &stubSource{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestConcurrentRefreshAndMatch(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Initialize(testOffers())
		}()
		go func() {
			defer wg.Done()
			match, err := m.FindMatchingJobOffer(&candidate.Data{Offre: candidate.Offre{Reference: "job-7"}})
			if err != nil || match.MatchType != MatchExact {
				t.Errorf("unexpected match %+v, err %v", match, err)
			}
		}()
	}
	wg.Wait()
}
