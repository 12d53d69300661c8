package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
)

// SessionIDHeader carries the hosted-session id both inbound and upstream.
const SessionIDHeader = "X-Session-ID"

// EmergentVerifier exchanges a hosted session id for the session data
// held by the hosted auth service.
type EmergentVerifier struct {
	endpoint string
	client   *http.Client
}

type emergentSessionData struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    *string `json:"name"`
	Picture string  `json:"picture"`
}

func NewEmergentVerifier(endpoint string, timeout time.Duration) *EmergentVerifier {
	return &EmergentVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *EmergentVerifier) Verify(ctx context.Context, sessionID string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return Identity{}, apperr.AuthenticationFailed("build session request", err)
	}
	req.Header.Set(SessionIDHeader, sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, apperr.AuthenticationFailed("session exchange failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Identity{}, apperr.AuthenticationFailed(fmt.Sprintf("session exchange returned %s", resp.Status), nil)
	}

	var data emergentSessionData
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data); err != nil {
		return Identity{}, apperr.AuthenticationFailed("decode session data", err)
	}
	if data.Email == "" {
		return Identity{}, apperr.AuthenticationFailed("session data has no email", nil)
	}

	return normalize(data.Email, data.Name, data.Picture), nil
}
