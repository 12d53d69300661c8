package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultKeysMaxAge    = time.Hour
)

// FirebaseVerifier verifies Firebase ID tokens: RS256 JWTs signed by one of
// Google's rotating keys, issued for the configured project.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu         sync.Mutex
	keys       map[string]*rsa.PublicKey
	keysExpiry time.Time
}

type firebaseClaims struct {
	jwt.RegisteredClaims
	Email   string  `json:"email"`
	Name    *string `json:"name,omitempty"`
	Picture string  `json:"picture"`
}

func NewFirebaseVerifier(projectID, certsURL string, timeout time.Duration) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: strings.TrimSpace(projectID),
		certsURL:  certsURL,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v.projectID == "" {
		return Identity{}, apperr.AuthenticationFailed("firebase verification is not configured", nil)
	}

	var claims firebaseClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, apperr.AuthenticationFailed("token rejected", err)
	}
	if claims.Subject == "" {
		return Identity{}, apperr.AuthenticationFailed("token has no subject", nil)
	}
	if claims.Email == "" {
		return Identity{}, apperr.AuthenticationFailed("token has no email", nil)
	}

	return normalize(claims.Email, claims.Name, claims.Picture), nil
}

func (v *FirebaseVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		keys, err := v.publicKeys(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return key, nil
	}
}

// publicKeys returns the cached key set, refetching once it has expired.
func (v *FirebaseVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && v.now().Before(v.keysExpiry) {
		return v.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch signing keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch signing keys: %s", resp.Status)
	}

	var certs map[string]string
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&certs); err != nil {
		return nil, fmt.Errorf("decode signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemData := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
		if err != nil {
			return nil, fmt.Errorf("parse signing key %q: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.keysExpiry = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultKeysMaxAge
}
