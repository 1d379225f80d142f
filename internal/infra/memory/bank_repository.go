package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-session-service/internal/domain"
)

// BankLoader fetches question banks from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context, language domain.Language) (domain.Bank, error)
}

// BankRepository keeps one TTL-cached bank per language. The language
// set is tiny and fixed, so the cache never evicts; entries just go
// stale and get reloaded through singleflight.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu      sync.RWMutex
	entries map[domain.Language]*bankEntry
}

type bankEntry struct {
	bank     domain.Bank
	deadline time.Time
}

func (e *bankEntry) fresh(now time.Time) bool {
	return e != nil && now.Before(e.deadline)
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[domain.Language]*bankEntry),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, language domain.Language) (domain.Bank, error) {
	if bank, ok := r.lookup(language); ok {
		return bank, nil
	}
	return r.reload(ctx, language)
}

func (r *BankRepository) lookup(language domain.Language) (domain.Bank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry := r.entries[language]; entry.fresh(r.clock()) {
		return entry.bank, true
	}
	return domain.Bank{}, false
}

// reload collapses concurrent misses for the same language into one
// loader call.
func (r *BankRepository) reload(ctx context.Context, language domain.Language) (domain.Bank, error) {
	result, err, _ := r.sf.Do(string(language), func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		if bank, ok := r.lookup(language); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, language)
		if err != nil {
			return domain.Bank{}, err
		}

		r.mu.Lock()
		r.entries[language] = &bankEntry{
			bank:     bank,
			deadline: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.Bank{}, err
	}
	return result.(domain.Bank), nil
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves the built-in banks. Loaded banks are handed
// out with a copied question slice; a bank is shared across every
// connection and must never be mutated through a session.
type StaticBankLoader struct {
	banks map[domain.Language]domain.Bank
}

func NewStaticBankLoader(banks map[domain.Language]domain.Bank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, language domain.Language) (domain.Bank, error) {
	bank, ok := l.banks[language]
	if !ok {
		return domain.Bank{}, domain.ErrBankNotFound
	}
	out := bank
	out.Questions = make([]domain.Question, len(bank.Questions))
	copy(out.Questions, bank.Questions)
	return out, nil
}
