package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"log"
	"sync"
	"time"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
	"ethicrawler/internal/repository"

	"github.com/google/uuid"
)

// KeyRefreshInterval bounds how long a ring trusts its cached keys before
// re-reading the store, and how often an unknown kid may trigger a reload.
const KeyRefreshInterval = 30 * time.Second

var (
	ErrNoSigningKey = errors.New("no active signing key")
	ErrUnknownKey   = errors.New("unknown or retired signing key")
)

// KeyStore is the signing-key slot of the store.
type KeyStore interface {
	ActiveSigningKey(ctx context.Context) (*models.SigningKey, error)
	ListSigningKeys(ctx context.Context) ([]models.SigningKey, error)
	RotateSigningKey(ctx context.Context, next *models.SigningKey, now int64) error
}

// KeyRing caches the signing keys held in the store. A rotated key keeps
// verifying tokens for the retention window after its rotation.
type KeyRing struct {
	store     KeyStore
	clock     domain.Clock
	retention time.Duration

	mu       sync.RWMutex
	active   *models.SigningKey
	byKID    map[string]models.SigningKey
	list     []models.SigningKey
	loadedAt time.Time
	loaded   bool
}

func NewKeyRing(store KeyStore, clock domain.Clock, retention time.Duration) *KeyRing {
	return &KeyRing{
		store:     store,
		clock:     clock,
		retention: retention,
		byKID:     make(map[string]models.SigningKey),
	}
}

// Ensure loads the keys and creates the first one if the slot is empty.
func (k *KeyRing) Ensure(ctx context.Context) error {
	if err := k.reload(ctx); err != nil {
		return err
	}
	k.mu.RLock()
	has := k.active != nil
	k.mu.RUnlock()
	if has {
		return nil
	}
	_, err := k.Rotate(ctx)
	return err
}

// Rotate generates a new Ed25519 key and makes it the active one.
func (k *KeyRing) Rotate(ctx context.Context) (*models.SigningKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	now := k.clock.Now().Unix()
	next := &models.SigningKey{
		KID:       uuid.NewString(),
		Seed:      priv.Seed(),
		PublicKey: pub,
		CreatedAt: now,
	}
	if err := k.store.RotateSigningKey(ctx, next, now); err != nil {
		return nil, err
	}
	log.Printf("[Keys] rotated signing key, active kid=%s", next.KID)
	if err := k.reload(ctx); err != nil {
		return nil, err
	}
	return next, nil
}

// Active returns the key new tokens are signed with.
func (k *KeyRing) Active(ctx context.Context) (*models.SigningKey, error) {
	if err := k.refresh(ctx); err != nil {
		return nil, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.active == nil {
		return nil, ErrNoSigningKey
	}
	return k.active, nil
}

// PublicKey returns the verification key for kid if it is still accepted.
// Unknown kids are only looked up again once the cache is due a refresh.
func (k *KeyRing) PublicKey(ctx context.Context, kid string) (ed25519.PublicKey, error) {
	if err := k.refresh(ctx); err != nil {
		return nil, err
	}
	k.mu.RLock()
	key, ok := k.byKID[kid]
	k.mu.RUnlock()
	if !ok || !k.accepted(&key) {
		return nil, ErrUnknownKey
	}
	return ed25519.PublicKey(key.PublicKey), nil
}

// Accepted lists the keys that still verify tokens, newest first.
func (k *KeyRing) Accepted(ctx context.Context) ([]models.SigningKey, error) {
	if err := k.refresh(ctx); err != nil {
		return nil, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]models.SigningKey, 0, len(k.list))
	for i := range k.list {
		if k.accepted(&k.list[i]) {
			out = append(out, k.list[i])
		}
	}
	return out, nil
}

func (k *KeyRing) accepted(key *models.SigningKey) bool {
	if key.Active() {
		return true
	}
	return k.clock.Now().Unix() <= key.RotatedAt+int64(k.retention/time.Second)
}

// refresh reloads the cache when it has never been loaded or is older
// than KeyRefreshInterval.
func (k *KeyRing) refresh(ctx context.Context) error {
	k.mu.RLock()
	fresh := k.loaded && k.clock.Now().Sub(k.loadedAt) < KeyRefreshInterval
	k.mu.RUnlock()
	if fresh {
		return nil
	}
	return k.reload(ctx)
}

func (k *KeyRing) reload(ctx context.Context) error {
	list, err := k.store.ListSigningKeys(ctx)
	if err != nil {
		return err
	}
	byKID := make(map[string]models.SigningKey, len(list))
	for _, key := range list {
		byKID[key.KID] = key
	}
	active, err := k.store.ActiveSigningKey(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	k.mu.Lock()
	k.byKID = byKID
	k.list = list
	k.active = active
	k.loadedAt = k.clock.Now()
	k.loaded = true
	k.mu.Unlock()
	return nil
}
