// Package launch resolves provider game-launch URLs, preferring the
// aggregator-issued URL and falling back to a deterministic local encoding
// when upstream is unreachable.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/lucentplay/seamless-wallet/internal/session"
	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

// ErrURLConstruction indicates the fallback template produced an unusable
// URL. The resolver never returns an empty or malformed URL on success.
var ErrURLConstruction = errors.New("launch url construction failed")

// URLFetcher is the aggregator call the resolver prefers.
type URLFetcher interface {
	GetGameURL(ctx context.Context, req upstream.GameURLRequest) (upstream.GameURL, error)
}

// Request carries validated launch input.
type Request struct {
	Username string
	Provider Provider
	GameCode string
	GameID   string
}

// Result is the resolved launch URL. UsedFallback reports that the URL was
// synthesized locally because the aggregator call failed or returned an
// invalid payload.
type Result struct {
	URL          string
	SessionToken string
	UsedFallback bool
}

// Resolver produces launch URLs from upstream or, failing that, from the
// provider template table.
type Resolver struct {
	sessions      *session.Manager
	gateway       URLFetcher
	descriptors   map[Provider]Descriptor
	operatorToken string
	overrides     map[Provider]map[string]string
	logger        *slog.Logger
}

// NewResolver builds a resolver over the injected provider table.
func NewResolver(sessions *session.Manager, gateway URLFetcher, descriptors map[Provider]Descriptor, overrides map[Provider]map[string]string, operatorToken string, logger *slog.Logger) *Resolver {
	return &Resolver{
		sessions:      sessions,
		gateway:       gateway,
		descriptors:   descriptors,
		operatorToken: operatorToken,
		overrides:     overrides,
		logger:        logger,
	}
}

// Resolve returns a launch URL for the player. The provider must be a member
// of the closed set; an unknown provider fails before any session or network
// work happens.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	desc, ok := r.descriptors[req.Provider]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, req.Provider)
	}

	sess, err := r.sessions.Ensure(ctx, req.Username, req.GameCode)
	if err != nil {
		return Result{}, err
	}

	issued, err := r.gateway.GetGameURL(ctx, upstream.GameURLRequest{
		Username: req.Username,
		GameCode: req.GameCode,
		Provider: string(req.Provider),
		GameID:   req.GameID,
	})
	if err == nil {
		token := sess.Token
		if issued.SessionToken != "" && issued.SessionToken != sess.Token {
			if adoptErr := r.sessions.Adopt(ctx, req.Username, issued.SessionToken); adoptErr != nil {
				return Result{}, adoptErr
			}
			token = issued.SessionToken
		}
		return Result{URL: issued.URL, SessionToken: token, UsedFallback: false}, nil
	}

	r.logger.Warn("upstream launch url unavailable, using fallback",
		"username", req.Username, "provider", req.Provider, "game_code", req.GameCode, "error", err)

	fallback, err := r.fallbackURL(desc, req, sess.Token)
	if err != nil {
		return Result{}, err
	}
	return Result{URL: fallback, SessionToken: sess.Token, UsedFallback: true}, nil
}

func (r *Resolver) fallbackURL(desc Descriptor, req Request, token string) (string, error) {
	gameID := req.GameID
	if byCode, ok := r.overrides[req.Provider]; ok {
		if mapped, ok := byCode[req.GameCode]; ok {
			gameID = mapped
		}
	}
	if gameID == "" {
		gameID = req.GameCode
	}
	if gameID == "" || token == "" {
		return "", fmt.Errorf("%w: missing game id or session token", ErrURLConstruction)
	}

	base, err := url.Parse(desc.Template.BaseURL)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("%w: bad template base for provider %s", ErrURLConstruction, desc.Code)
	}
	base.Path = fmt.Sprintf("/%s/index.html", gameID)

	q := url.Values{}
	q.Set("language", desc.Template.Language)
	q.Set("bet_type", desc.Template.BetType)
	q.Set("operator_token", r.operatorToken)
	q.Set("operator_player_session", token)
	q.Set("or", desc.Template.CDNHost)
	base.RawQuery = q.Encode()

	return base.String(), nil
}
