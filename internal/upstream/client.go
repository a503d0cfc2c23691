package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiKeyHeader = "x-api-key"

// Client wraps the aggregator's HTTP API. Every call attaches the shared API
// key, serializes a JSON body, and runs under a bounded timeout. There are no
// automatic retries; each call is attempted once per logical operation.
type Client struct {
	baseURL        string
	apiKey         string
	callTimeout    time.Duration
	historyTimeout time.Duration
	http           *http.Client
	logger         *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	APIKey         string
	CallTimeout    time.Duration
	HistoryTimeout time.Duration
	// SkipTLSVerify disables certificate validation toward the aggregator.
	// The endpoint is a fixed, trusted private partner host; this mirrors the
	// partner's own integration guide rather than a lax default.
	SkipTLSVerify bool
	Logger        *slog.Logger
}

// NewClient builds an aggregator client.
func NewClient(opts Options) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- fixed partner endpoint
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.HistoryTimeout <= 0 {
		opts.HistoryTimeout = opts.CallTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		callTimeout:    opts.CallTimeout,
		historyTimeout: opts.HistoryTimeout,
		http:           &http.Client{Transport: transport},
		logger:         logger,
	}
}

// MintSession asks the aggregator to provision the player and issue a session
// token. The aggregator returns the token as a bare JSON string; any other
// shape is an invalid response.
func (c *Client) MintSession(ctx context.Context, username, gameCode string) (string, error) {
	const op = "mintSession"
	payload := map[string]any{
		"username":          username,
		"gameCode":          gameCode,
		"isPlayerSetting":   true,
		"setting":           []any{},
		"buyFeatureSetting": []any{},
	}
	raw, err := c.post(ctx, op, "/api/setGameSetting", payload, c.callTimeout)
	if err != nil {
		return "", err
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil || token == "" {
		return "", &Error{Kind: KindInvalidResponse, Op: op, Detail: "expected bare string token"}
	}
	return token, nil
}

// CreateSession provisions the player upstream without binding a game.
func (c *Client) CreateSession(ctx context.Context, username string) (string, error) {
	const op = "createSession"
	raw, err := c.post(ctx, op, "/api/createSession", map[string]any{"username": username}, c.callTimeout)
	if err != nil {
		return "", err
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil || token == "" {
		return "", &Error{Kind: KindInvalidResponse, Op: op, Detail: "expected bare string token"}
	}
	return token, nil
}

// GameURLRequest carries the inputs for a launch URL issued by the aggregator.
type GameURLRequest struct {
	Username string
	GameCode string
	Provider string
	GameID   string
}

// GameURL is the aggregator-issued launch URL, possibly with a refreshed
// session token that replaces the local copy.
type GameURL struct {
	URL          string
	SessionToken string
}

// GetGameURL requests a provider launch URL for the player.
func (c *Client) GetGameURL(ctx context.Context, req GameURLRequest) (GameURL, error) {
	const op = "getGameUrl"
	payload := map[string]any{
		"username":          req.Username,
		"gameCode":          req.GameCode,
		"provider":          req.Provider,
		"gameId":            req.GameID,
		"isPlayerSetting":   true,
		"setting":           []any{},
		"buyFeatureSetting": []any{},
	}
	raw, err := c.post(ctx, op, "/api/getGameUrl", payload, c.callTimeout)
	if err != nil {
		return GameURL{}, err
	}
	var body struct {
		GameURL      string `json:"gameUrl"`
		URL          string `json:"url"`
		SessionToken string `json:"sessionToken"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return GameURL{}, &Error{Kind: KindInvalidResponse, Op: op, Err: err}
	}
	launch := body.GameURL
	if launch == "" {
		launch = body.URL
	}
	if launch == "" {
		return GameURL{}, &Error{Kind: KindInvalidResponse, Op: op, Detail: "response missing gameUrl"}
	}
	return GameURL{URL: launch, SessionToken: body.SessionToken}, nil
}

// HistoryFilters narrows a transaction history query.
type HistoryFilters struct {
	StartDate string
	EndDate   string
	Type      string
}

// HistoryPage is one page of aggregator-held transaction history. Entries are
// kept raw; this service never interprets them.
type HistoryPage struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

// History fetches the aggregator's transaction history for the player. The
// aggregator is the system of record; callers degrade to an empty page on
// failure rather than surfacing the error.
func (c *Client) History(ctx context.Context, username string, filters HistoryFilters, page, limit int) (HistoryPage, error) {
	const op = "history"
	payload := map[string]any{
		"username":  username,
		"startDate": filters.StartDate,
		"endDate":   filters.EndDate,
		"type":      filters.Type,
		"page":      page,
		"limit":     limit,
	}
	raw, err := c.post(ctx, op, "/api/history", payload, c.historyTimeout)
	if err != nil {
		return HistoryPage{}, err
	}
	var result HistoryPage
	if err := json.Unmarshal(raw, &result); err != nil {
		return HistoryPage{}, &Error{Kind: KindInvalidResponse, Op: op, Err: err}
	}
	return result, nil
}

// Game is one catalog entry from the aggregator's game list.
type Game struct {
	GameCode string `json:"game_code"`
	GameID   string `json:"game_id"`
	GameName string `json:"game_name"`
	Provider string `json:"provider"`
}

// GameList returns the aggregator catalog for one provider.
func (c *Client) GameList(ctx context.Context, provider string) ([]Game, error) {
	const op = "gamelist"
	endpoint := fmt.Sprintf("%s/api/gamelist?provider=%s", c.baseURL, url.QueryEscape(provider))
	raw, err := c.do(ctx, op, http.MethodGet, endpoint, nil, c.callTimeout)
	if err != nil {
		return nil, err
	}
	var body struct {
		Games []Game `json:"games"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Op: op, Err: err}
	}
	return body.Games, nil
}

// Login is the legacy diagnostic login call. The exact payload shape is still
// unconfirmed with the partner; this sends the one canonical shape and, when
// the username carries an agent prefix, retries once with the bare suffix.
func (c *Client) Login(ctx context.Context, username, gameCode, sessionToken string) (GameURL, error) {
	const op = "login"
	attempt := func(name string) (GameURL, error) {
		payload := map[string]any{
			"username":     name,
			"gameCode":     gameCode,
			"language":     "th",
			"sessionToken": sessionToken,
		}
		raw, err := c.post(ctx, op, "/api/login", payload, c.callTimeout)
		if err != nil {
			return GameURL{}, err
		}
		var body struct {
			URL          string `json:"url"`
			GameURL      string `json:"gameUrl"`
			SessionToken string `json:"sessionToken"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return GameURL{}, &Error{Kind: KindInvalidResponse, Op: op, Err: err}
		}
		launch := body.URL
		if launch == "" {
			launch = body.GameURL
		}
		if launch == "" {
			return GameURL{}, &Error{Kind: KindInvalidResponse, Op: op, Detail: "response missing url"}
		}
		return GameURL{URL: launch, SessionToken: body.SessionToken}, nil
	}

	result, err := attempt(username)
	if err == nil {
		return result, nil
	}
	if idx := strings.LastIndex(username, "-"); idx > 0 && idx < len(username)-1 {
		c.logger.Debug("login retry with bare username", "username", username)
		return attempt(username[idx+1:])
	}
	return GameURL{}, err
}

func (c *Client) post(ctx context.Context, op, path string, payload any, timeout time.Duration) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodPost, c.baseURL+path, payload, timeout)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Kind: KindInvalidResponse, Op: op, Err: err}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Op: op, Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(op, resp.StatusCode, raw)
	}
	return raw, nil
}
