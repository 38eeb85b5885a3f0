package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SupabaseVerifier validates access tokens against the Supabase auth API.
// Successful lookups are cached for the configured TTL.
type SupabaseVerifier struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	cache      *gocache.Cache
}

func NewSupabaseVerifier(baseURL, anonKey string, ttl time.Duration) *SupabaseVerifier {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SupabaseVerifier{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      gocache.New(ttl, 2*ttl),
	}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthorized
	}
	key := cacheKey(token)
	if cached, ok := v.cache.Get(key); ok {
		if u, ok := cached.(User); ok {
			u.Token = token
			return u, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return User{}, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return User{}, fmt.Errorf("fetch user: status %d: %s", resp.StatusCode, string(body))
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return User{}, ErrUnauthorized
	}
	v.cache.Set(key, u, gocache.DefaultExpiration)
	u.Token = token
	return u, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
