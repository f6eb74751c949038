// Backing store client.
//
// The store speaks a PostgREST-style REST dialect: tables under /rest/v1,
// filters as query parameters (invite_code=eq.X, id=in.(a,b)), JSON array
// responses, apikey + bearer auth. Records are read-only here; a missing
// record or a timeout is a degradation handled by the caller, never a hard
// failure on the serving path.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Challenge is the primary record behind /c and /r links.
type Challenge struct {
	InviteCode       string `json:"invite_code"`
	ChallengerID     string `json:"challenger_id"`
	OpponentID       string `json:"opponent_id"`
	WinnerID         string `json:"winner_id"`
	Status           string `json:"status"`
	QuestionCount    int    `json:"question_count"`
	ChallengerScore  int    `json:"challenger_score"`
	OpponentScore    int    `json:"opponent_score"`
	ChallengerTimeMs int    `json:"challenger_time_ms"`
	OpponentTimeMs   int    `json:"opponent_time_ms"`
}

// StoreProfile is the player record behind /p links and challenge sides.
type StoreProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	DailyStreak int    `json:"daily_streak"`
	BestIQ      int    `json:"best_iq"`
}

// Name returns the preferred display label for a profile.
func (p StoreProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

type Store struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// newStore returns nil when the endpoint or credentials are not configured,
// which puts every handler into universal fallback mode.
func newStore(cfg *Config) *Store {
	if cfg.storeURL == "" || cfg.storeKey == "" {
		return nil
	}
	return &Store{
		baseURL: strings.TrimSuffix(cfg.storeURL, "/"),
		apiKey:  cfg.storeKey,
		timeout: cfg.storeTimeout,
		client:  &http.Client{},
	}
}

func (s *Store) get(ctx context.Context, table string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := s.baseURL + "/rest/v1/" + table + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("store returned %d for %s", resp.StatusCode, table)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var errNotFound = fmt.Errorf("record not found")

// challengeByInviteCode fetches one challenge record, bounded by the store
// timeout. errNotFound is a degradation, not an error condition.
func (s *Store) challengeByInviteCode(ctx context.Context, code string) (*Challenge, error) {
	query := url.Values{}
	query.Set("invite_code", "eq."+code)
	query.Set("select", "invite_code,challenger_id,opponent_id,winner_id,status,question_count,challenger_score,opponent_score,challenger_time_ms,opponent_time_ms")
	query.Set("limit", "1")

	var rows []Challenge
	if err := s.get(ctx, "challenges", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNotFound
	}

	return &rows[0], nil
}

// profilesByIDs batches all referenced profiles into a single lookup.
func (s *Store) profilesByIDs(ctx context.Context, ids []string) (map[string]StoreProfile, error) {
	profiles := make(map[string]StoreProfile, len(ids))

	filtered := ids[:0:0]
	for _, id := range ids {
		if id != "" {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return profiles, nil
	}

	query := url.Values{}
	query.Set("id", "in.("+strings.Join(filtered, ",")+")")
	query.Set("select", "id,username,display_name,avatar_url,daily_streak,best_iq")

	var rows []StoreProfile
	if err := s.get(ctx, "profiles", query, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		profiles[row.ID] = row
	}

	return profiles, nil
}

// profileByID is the single-record variant used by /p links.
func (s *Store) profileByID(ctx context.Context, id string) (*StoreProfile, error) {
	profiles, err := s.profilesByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	profile, ok := profiles[id]
	if !ok {
		return nil, errNotFound
	}

	return &profile, nil
}
