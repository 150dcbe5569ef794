// Package memory implements in-memory stores for development and testing.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ketotrack/internal/domain"
)

// KV implements domain.LocalStore in memory.
type KV struct {
	mu       sync.Mutex
	values   map[string]string
	maxValue int
}

// NewKV creates an empty in-memory key/value store. A positive maxValue
// rejects larger values with domain.ErrQuotaExceeded.
func NewKV(maxValue int) *KV {
	return &KV{values: make(map[string]string), maxValue: maxValue}
}

// DB implements the remote document store and account repository in memory.
type DB struct {
	mu       sync.Mutex
	profiles map[string]profileDoc
	metrics  map[string]map[string]metricDoc
	accounts map[string]domain.Account
}

type profileDoc struct {
	profile   domain.UserProfile
	updatedAt time.Time
}

type metricDoc struct {
	metric    domain.DailyMetric
	updatedAt time.Time
}

// New creates a new in-memory remote database.
func New() *DB {
	return &DB{
		profiles: make(map[string]profileDoc),
		metrics:  make(map[string]map[string]metricDoc),
		accounts: make(map[string]domain.Account),
	}
}

// Ensure interfaces are met.
var _ domain.LocalStore = (*KV)(nil)
var _ domain.RemoteStore = (*DB)(nil)
var _ domain.AccountRepository = (*DB)(nil)

// --- LocalStore ---

// Get returns the value for key.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.maxValue > 0 && len(value) > kv.maxValue {
		return domain.ErrQuotaExceeded
	}
	kv.values[key] = value
	return nil
}

// --- RemoteStore ---

// GetProfile returns the stored profile for uid.
func (db *DB) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	doc, ok := db.profiles[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := doc.profile
	return &p, nil
}

// PutProfile merges p into the stored profile. Zero fields keep the stored value.
func (db *DB) PutProfile(ctx context.Context, uid string, p domain.UserProfile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	merged := db.profiles[uid].profile
	if p.StartDate != "" {
		merged.StartDate = p.StartDate
	}
	if p.CurrentPhase != 0 {
		merged.CurrentPhase = p.CurrentPhase
	}
	if p.PhaseStartDate != "" {
		merged.PhaseStartDate = p.PhaseStartDate
	}
	if p.TargetRatio != 0 {
		merged.TargetRatio = p.TargetRatio
	}
	db.profiles[uid] = profileDoc{profile: merged, updatedAt: time.Now().UTC()}
	return nil
}

// PutMetric overwrites the document for m.Date.
func (db *DB) PutMetric(ctx context.Context, uid string, m domain.DailyMetric) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	docs, ok := db.metrics[uid]
	if !ok {
		docs = make(map[string]metricDoc)
		db.metrics[uid] = docs
	}
	docs[m.Date] = metricDoc{metric: m, updatedAt: time.Now().UTC()}
	return nil
}

// ListMetrics returns uid's metrics newest first.
func (db *DB) ListMetrics(ctx context.Context, uid string) ([]domain.DailyMetric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.DailyMetric, 0, len(db.metrics[uid]))
	for _, doc := range db.metrics[uid] {
		result = append(result, doc.metric)
	}
	domain.SortByDateDesc(result)
	return result, nil
}

// --- AccountRepository ---

// GetByEmail retrieves an account by email, case-insensitively.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.accounts[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// Create stores a new account.
func (db *DB) Create(ctx context.Context, a domain.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := strings.ToLower(a.Email)
	if _, exists := db.accounts[key]; exists {
		return domain.ErrAccountExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	db.accounts[key] = a
	return nil
}
