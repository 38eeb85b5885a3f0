package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SupabaseStore talks to the lesson_plans table through PostgREST. Requests
// carry the caller's access token so row-level security scopes them to the
// user; the user_id filter is applied as well.
type SupabaseStore struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewSupabaseStore(baseURL, anonKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenKey struct{}

// WithToken attaches the user's access token to ctx for SupabaseStore calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (s *SupabaseStore) newRequest(ctx context.Context, method, query string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/rest/v1/lesson_plans"+query, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	bearer := s.anonKey
	if tok, ok := ctx.Value(tokenKey{}).(string); ok && tok != "" {
		bearer = tok
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (s *SupabaseStore) do(req *http.Request, op string, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func (s *SupabaseStore) Create(ctx context.Context, p *Plan) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row := map[string]any{
		"user_id":    p.UserID,
		"title":      p.Title,
		"kind":       p.Kind,
		"content":    p.Content,
		"created_at": p.CreatedAt,
	}
	if p.ID != "" {
		row["id"] = p.ID
	}
	if len(p.Request) > 0 {
		row["request"] = json.RawMessage(p.Request)
	}
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	var created []Plan
	if err := s.do(req, "create plan", &created); err != nil {
		return err
	}
	if len(created) == 1 {
		*p = created[0]
	}
	return nil
}

func (s *SupabaseStore) List(ctx context.Context, userID string) ([]Plan, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "created_at.desc")
	req, err := s.newRequest(ctx, http.MethodGet, "?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var plans []Plan
	if err := s.do(req, "list plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id, userID string) (*Plan, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)
	req, err := s.newRequest(ctx, http.MethodGet, "?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var plans []Plan
	if err := s.do(req, "get plan", &plans); err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrNotFound
	}
	return &plans[0], nil
}

func (s *SupabaseStore) Delete(ctx context.Context, id, userID string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)
	req, err := s.newRequest(ctx, http.MethodDelete, "?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	var deleted []Plan
	if err := s.do(req, "delete plan", &deleted); err != nil {
		return err
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}
