// backend-go/internal/auth/verifier.go
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// ErrNotConfigured is returned when the verifier is missing its JWKS URL or
// issuer. Callers should surface it as a server misconfiguration, not as an
// invalid credential.
var ErrNotConfigured = errors.New("auth: verifier not configured")

const defaultKeySetTTL = time.Hour

// Verifier validates RS256 bearer tokens against a remote JWKS endpoint.
// The key set is process-wide state with an explicit lifecycle: fetched
// lazily on first use, held for a bounded TTL, refetched after expiry.
// Concurrent first uses share one fetch through singleflight.
type Verifier struct {
	jwksURL string
	issuer  string
	ttl     time.Duration
	client  *http.Client

	group singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewVerifier creates a verifier for the given JWKS endpoint and expected
// issuer. A non-positive ttl falls back to one hour.
func NewVerifier(jwksURL, issuer string, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = defaultKeySetTTL
	}

	return &Verifier{
		jwksURL: jwksURL,
		issuer:  issuer,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks the token signature, issuer and required claims, and returns
// the subject (the caller's user ID).
func (v *Verifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if v.jwksURL == "" || v.issuer == "" {
		return "", ErrNotConfigured
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("auth: token verification failed: %w", err)
	}

	if claims.IssuedAt == nil {
		return "", fmt.Errorf("auth: token missing iat claim")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("auth: token missing sub claim")
	}

	return claims.Subject, nil
}

func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}

		keys, err := v.keySet(ctx)
		if err != nil {
			return nil, err
		}

		key, ok := keys[kid]
		if !ok {
			// The signing key may have rotated since the last fetch.
			keys, err = v.refreshKeySet(ctx)
			if err != nil {
				return nil, err
			}
			if key, ok = keys[kid]; !ok {
				return nil, fmt.Errorf("no key found for kid %q", kid)
			}
		}

		return key, nil
	}
}

// keySet returns the cached keys while they are fresh, fetching otherwise.
func (v *Verifier) keySet(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	keys, fetchedAt := v.keys, v.fetchedAt
	v.mu.RUnlock()

	if keys != nil && time.Since(fetchedAt) < v.ttl {
		return keys, nil
	}

	return v.refreshKeySet(ctx)
}

func (v *Verifier) refreshKeySet(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	result, err, _ := v.group.Do("jwks", func() (interface{}, error) {
		keys, err := v.fetchKeySet(ctx)
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.keys = keys
		v.fetchedAt = time.Now()
		v.mu.Unlock()

		return keys, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(map[string]*rsa.PublicKey), nil
}

func (v *Verifier) fetchKeySet(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build jwks request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}

		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("parse jwk %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("jwks document contains no usable RSA keys")
	}

	return keys, nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}
	if exponent <= 0 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}
