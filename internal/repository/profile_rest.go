package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eduverse/eduverse-backend/internal/model"
)

// RESTProfileStore reads and writes profile rows through a Supabase
// project's PostgREST endpoint (/rest/v1/profiles). Per-user calls carry
// the user's bearer token so the platform's row-level security applies;
// the anon key is used when no user token is available.
type RESTProfileStore struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewRESTProfileStore(baseURL, anonKey string) *RESTProfileStore {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &RESTProfileStore{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *RESTProfileStore) GetByID(ctx context.Context, authToken, id string) (model.Profile, error) {
	path := "/rest/v1/profiles?select=*&id=eq." + url.QueryEscape(id)
	body, err := s.do(ctx, http.MethodGet, path, authToken, nil, "")
	if err != nil {
		return model.Profile{}, err
	}

	// PostgREST answers filtered selects with a JSON array; an empty array
	// is the no-rows condition.
	var rows []model.Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return model.Profile{}, fmt.Errorf("decode profile rows: %w", err)
	}
	if len(rows) == 0 {
		return model.Profile{}, ErrProfileNotFound
	}
	return rows[0], nil
}

// Insert posts the row with resolution=ignore-duplicates so a concurrent
// insert for the same id is a no-op instead of a conflict error.
func (s *RESTProfileStore) Insert(ctx context.Context, authToken string, p model.Profile) error {
	payload, err := json.Marshal([]model.Profile{p})
	if err != nil {
		return err
	}
	_, err = s.do(ctx, http.MethodPost, "/rest/v1/profiles", authToken, payload,
		"resolution=ignore-duplicates")
	return err
}

func (s *RESTProfileStore) Sample(ctx context.Context) ([]model.Profile, error) {
	body, err := s.do(ctx, http.MethodGet, "/rest/v1/profiles?select=*&limit=1", "", nil, "")
	if err != nil {
		return nil, err
	}
	var rows []model.Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode profile rows: %w", err)
	}
	return rows, nil
}

func (s *RESTProfileStore) do(ctx context.Context, method, path, bearer string, payload []byte, prefer string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.anonKey)
	if bearer == "" {
		bearer = s.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			return nil, fmt.Errorf("profile store request failed with status %d", resp.StatusCode)
		}
		return nil, errors.New(e.Message)
	}
	return raw, nil
}
