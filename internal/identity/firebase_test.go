package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
)

const testProject = "datapath-test"

type firebaseFixture struct {
	key      *rsa.PrivateKey
	verifier *FirebaseVerifier
	fetches  *atomic.Int32
	now      time.Time
}

func newFirebaseFixture(t *testing.T) *firebaseFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	fetches := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=600, must-revalidate")
		json.NewEncoder(w).Encode(map[string]string{"k1": string(pemData)})
	}))
	t.Cleanup(srv.Close)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := NewFirebaseVerifier(testProject, srv.URL, time.Second)
	v.now = func() time.Time { return now }

	return &firebaseFixture{key: key, verifier: v, fetches: fetches, now: now}
}

func (f *firebaseFixture) sign(t *testing.T, kid string, mutate func(*firebaseClaims)) string {
	t.Helper()
	linus := "Linus"
	claims := firebaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    firebaseIssuerPrefix + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			Subject:   "firebase-uid-1",
			IssuedAt:  jwt.NewNumericDate(f.now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		},
		Email:   "linus@example.com",
		Name:    &linus,
		Picture: "https://img/linus.png",
	}
	if mutate != nil {
		mutate(&claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func TestFirebaseVerifier_ValidToken(t *testing.T) {
	f := newFirebaseFixture(t)
	ctx := context.Background()

	id, err := f.verifier.Verify(ctx, f.sign(t, "k1", nil))
	require.NoError(t, err)
	assert.Equal(t, Identity{Email: "linus@example.com", Name: "Linus", Picture: "https://img/linus.png"}, id)

	// Second verification is served from the cached key set.
	_, err = f.verifier.Verify(ctx, f.sign(t, "k1", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.fetches.Load())
}

func TestFirebaseVerifier_NameClaim(t *testing.T) {
	f := newFirebaseFixture(t)
	ctx := context.Background()

	id, err := f.verifier.Verify(ctx, f.sign(t, "k1", func(c *firebaseClaims) { c.Name = nil }))
	require.NoError(t, err)
	assert.Equal(t, "linus", id.Name)

	empty := ""
	id, err = f.verifier.Verify(ctx, f.sign(t, "k1", func(c *firebaseClaims) { c.Name = &empty }))
	require.NoError(t, err)
	assert.Empty(t, id.Name)
}

func TestFirebaseVerifier_Rejects(t *testing.T) {
	f := newFirebaseFixture(t)

	tests := []struct {
		name  string
		token func() string
	}{
		{name: "wrong audience", token: func() string {
			return f.sign(t, "k1", func(c *firebaseClaims) { c.Audience = jwt.ClaimStrings{"other-project"} })
		}},
		{name: "wrong issuer", token: func() string {
			return f.sign(t, "k1", func(c *firebaseClaims) { c.Issuer = "https://evil.example.com" })
		}},
		{name: "expired", token: func() string {
			return f.sign(t, "k1", func(c *firebaseClaims) { c.ExpiresAt = jwt.NewNumericDate(f.now.Add(-time.Minute)) })
		}},
		{name: "missing subject", token: func() string {
			return f.sign(t, "k1", func(c *firebaseClaims) { c.Subject = "" })
		}},
		{name: "missing email", token: func() string {
			return f.sign(t, "k1", func(c *firebaseClaims) { c.Email = "" })
		}},
		{name: "unknown kid", token: func() string { return f.sign(t, "k9", nil) }},
		{name: "hmac signed", token: func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})
			tok.Header["kid"] = "k1"
			s, err := tok.SignedString([]byte("secret"))
			require.NoError(t, err)
			return s
		}},
		{name: "garbage", token: func() string { return "not-a-jwt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tt.token())
			require.Error(t, err)
			assert.Equal(t, apperr.KindAuthenticationFailed, apperr.KindOf(err))
		})
	}
}

func TestFirebaseVerifier_NotConfigured(t *testing.T) {
	v := NewFirebaseVerifier("", "http://127.0.0.1:0", time.Second)

	_, err := v.Verify(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthenticationFailed, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "not configured")
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 600*time.Second, maxAge("public, max-age=600, must-revalidate"))
	assert.Equal(t, defaultKeysMaxAge, maxAge("no-cache"))
	assert.Equal(t, defaultKeysMaxAge, maxAge("max-age=abc"))
	assert.Equal(t, defaultKeysMaxAge, maxAge(""))
}
