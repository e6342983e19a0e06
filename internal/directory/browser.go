// Package directory implements the doctor browse and search view: a cached
// full listing, server-side search, and lazily loaded per-doctor ratings.
package directory

import (
	"context"
	"strings"
	"sync"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// Gateway is the slice of the API client the directory needs.
type Gateway interface {
	Doctors(ctx context.Context) ([]api.Doctor, error)
	SearchDoctors(ctx context.Context, term string) ([]api.Doctor, error)
	DoctorRatings(ctx context.Context, doctorID int64) ([]api.Rating, error)
}

// Browser holds the directory state. Searches are fenced with a generation
// counter so a slow response for an old term cannot overwrite results for
// the current one. Clearing the term restores the cached full listing
// without another fetch.
type Browser struct {
	gw     Gateway
	logger *logging.Logger

	mu        sync.Mutex
	all       []api.Doctor // full listing cache, nil until Load
	doctors   []api.Doctor // currently displayed
	term      string
	searchGen uint64
	ratings   map[int64][]api.Rating
	expanded  map[int64]bool
	errMsg    string
}

func NewBrowser(gw Gateway, logger *logging.Logger) *Browser {
	if logger == nil {
		logger = logging.Default()
	}
	return &Browser{
		gw:       gw,
		logger:   logger.WithComponent("directory"),
		ratings:  make(map[int64][]api.Rating),
		expanded: make(map[int64]bool),
	}
}

// Load fetches the full doctor listing and caches it for term-clearing.
func (b *Browser) Load(ctx context.Context) error {
	doctors, err := b.gw.Doctors(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.errMsg = api.Message(err, "Failed to load doctors")
		return err
	}
	b.all = doctors
	b.doctors = doctors
	b.term = ""
	b.errMsg = ""
	return nil
}

// Search applies a term. A blank term restores the cached full listing with
// no network call; anything else is a server-side search.
func (b *Browser) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	b.mu.Lock()
	b.term = term
	b.searchGen++
	gen := b.searchGen
	if term == "" {
		b.doctors = b.all
		b.errMsg = ""
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	doctors, err := b.gw.SearchDoctors(ctx, term)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.searchGen {
		b.logger.Debug("discarding stale search response", "term", term)
		return nil
	}
	if err != nil {
		b.errMsg = api.Message(err, "Failed to search doctors")
		return err
	}
	b.doctors = doctors
	b.errMsg = ""
	return nil
}

// ToggleRatings expands or collapses one doctor's reviews. The first expand
// fetches them; later expands reuse the cached list.
func (b *Browser) ToggleRatings(ctx context.Context, doctorID int64) error {
	b.mu.Lock()
	if b.expanded[doctorID] {
		b.expanded[doctorID] = false
		b.mu.Unlock()
		return nil
	}
	_, cached := b.ratings[doctorID]
	b.mu.Unlock()

	if !cached {
		ratings, err := b.gw.DoctorRatings(ctx, doctorID)
		if err != nil {
			b.mu.Lock()
			b.errMsg = api.Message(err, "Failed to load ratings")
			b.mu.Unlock()
			return err
		}
		b.mu.Lock()
		b.ratings[doctorID] = ratings
		b.mu.Unlock()
	}

	b.mu.Lock()
	b.expanded[doctorID] = true
	b.mu.Unlock()
	return nil
}

func (b *Browser) Doctors() []api.Doctor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Doctor(nil), b.doctors...)
}

func (b *Browser) Term() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.term
}

// Ratings returns the expanded reviews for a doctor, or nil when collapsed.
func (b *Browser) Ratings(doctorID int64) []api.Rating {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.expanded[doctorID] {
		return nil
	}
	return append([]api.Rating(nil), b.ratings[doctorID]...)
}

func (b *Browser) ErrorMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}
