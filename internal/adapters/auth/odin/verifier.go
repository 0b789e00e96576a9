package odin

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"zoo-keeper/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

// DefaultCacheTTL: cuánto se reusa un token ya verificado antes de volver a Odin.
const DefaultCacheTTL = 30 * time.Second

type cachedClaims struct {
	claims  auth.Claims
	expires time.Time
}

// Verifier implementa auth.AuthVerifier usando Odin, con un cache corto
// por token (hash sha256, nunca el token en claro).
type Verifier struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[[sha256.Size]byte]cachedClaims
}

type VerifierOption func(*Verifier)

// WithCacheTTL; 0 desactiva el cache.
func WithCacheTTL(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.ttl = d }
}

func NewVerifier(client *Client, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		client: client,
		ttl:    DefaultCacheTTL,
		now:    time.Now,
		cache:  make(map[[sha256.Size]byte]cachedClaims),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	key := sha256.Sum256([]byte(token))
	if c, ok := v.cached(key); ok {
		return c, nil
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// El middleware decide si corta o no.
		return auth.Claims{}, fmt.Errorf("odin verify failed: %w", err)
	}

	if v.ttl > 0 {
		v.mu.Lock()
		v.cache[key] = cachedClaims{claims: claims, expires: v.now().Add(v.ttl)}
		v.mu.Unlock()
	}
	return claims, nil
}

func (v *Verifier) cached(key [sha256.Size]byte) (auth.Claims, bool) {
	if v.ttl <= 0 {
		return auth.Claims{}, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.cache[key]
	if !ok {
		return auth.Claims{}, false
	}
	if !v.now().Before(c.expires) {
		delete(v.cache, key)
		return auth.Claims{}, false
	}
	return c.claims, true
}
