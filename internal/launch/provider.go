package launch

import (
	"errors"
	"fmt"
	"strings"
)

// Provider is one of the closed set of slot providers the wallet can launch.
type Provider string

const (
	ProviderA Provider = "A"
	ProviderB Provider = "B"
	ProviderC Provider = "C"
	ProviderD Provider = "D"
)

// ErrUnsupportedProvider rejects launch input outside the closed provider set.
// Callers must validate membership before the resolver touches the network.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ParseProvider validates a provider code from request input.
func ParseProvider(code string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(code)))
	switch p {
	case ProviderA, ProviderB, ProviderC, ProviderD:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, code)
	}
}

// Descriptor is static provider configuration; it is never persisted per user.
type Descriptor struct {
	Code        Provider
	DisplayName string
	Template    Template
}

// Template describes how to synthesize a launch URL locally when the
// aggregator cannot issue one. All values are injected at startup so the
// resolver stays pure and testable without network access.
type Template struct {
	// BaseURL hosts the game bundles, e.g. "https://m.slots-a.example.cloud".
	BaseURL string
	// CDNHost is passed to the game client as its asset origin.
	CDNHost string
	Language string
	BetType  string
}

// DefaultDescriptors returns the built-in provider table. Deployments override
// hosts per environment; the set of providers itself is closed.
func DefaultDescriptors() map[Provider]Descriptor {
	return map[Provider]Descriptor{
		ProviderA: {
			Code:        ProviderA,
			DisplayName: "Provider A",
			Template:    Template{BaseURL: "https://m.slots-a.gamehub.cloud", CDNHost: "cdn.slots-a.gamehub.cloud", Language: "th", BetType: "1"},
		},
		ProviderB: {
			Code:        ProviderB,
			DisplayName: "Provider B",
			Template:    Template{BaseURL: "https://play.slots-b.gamehub.cloud", CDNHost: "cdn.slots-b.gamehub.cloud", Language: "th", BetType: "1"},
		},
		ProviderC: {
			Code:        ProviderC,
			DisplayName: "Provider C",
			Template:    Template{BaseURL: "https://launch.slots-c.gamehub.cloud", CDNHost: "cdn.slots-c.gamehub.cloud", Language: "th", BetType: "1"},
		},
		ProviderD: {
			Code:        ProviderD,
			DisplayName: "Provider D",
			Template:    Template{BaseURL: "https://m.slots-d.gamehub.cloud", CDNHost: "cdn.slots-d.gamehub.cloud", Language: "th", BetType: "1"},
		},
	}
}

// DefaultGameIDOverrides maps known game codes to the upstream-specific game
// id used in fallback URLs. The override only affects the local template path;
// the aggregator receives raw game codes and resolves ids itself.
func DefaultGameIDOverrides() map[Provider]map[string]string {
	return map[Provider]map[string]string{
		ProviderA: {
			"fortune-tiger":   "126",
			"fortune-ox":      "98",
			"fortune-mouse":   "68",
			"lucky-neko":      "89",
			"treasures-aztec": "87",
		},
		ProviderB: {
			"roma-legacy": "1102",
		},
	}
}
