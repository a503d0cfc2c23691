package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucentplay/seamless-wallet/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		CallTimeout: 2 * time.Second,
		Logger:      logging.Discard(),
	})
}

func TestMintSession_BareStringToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/setGameSetting" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["username"] != "alice" {
			t.Errorf("unexpected username %v", body["username"])
		}
		json.NewEncoder(w).Encode("session-abc")
	})

	token, err := client.MintSession(context.Background(), "alice", "game-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if token != "session-abc" {
		t.Fatalf("expected session-abc, got %s", token)
	}
}

func TestMintSession_ObjectBodyIsInvalidResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "session-abc"})
	})

	_, err := client.MintSession(context.Background(), "alice", "game-1")
	if KindOf(err) != KindInvalidResponse {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestClassification_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.MintSession(context.Background(), "alice", "game-1")
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestClassification_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetGameURL(context.Background(), GameURLRequest{Username: "alice"})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClassification_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	client := NewClient(Options{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		CallTimeout: 100 * time.Millisecond,
		Logger:      logging.Discard(),
	})

	_, err := client.MintSession(context.Background(), "alice", "game-1")
	if KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClassification_Unreachable(t *testing.T) {
	client := NewClient(Options{
		BaseURL:     "http://127.0.0.1:1",
		APIKey:      "test-key",
		CallTimeout: time.Second,
		Logger:      logging.Discard(),
	})

	_, err := client.MintSession(context.Background(), "alice", "game-1")
	if KindOf(err) != KindUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestGetGameURL_MissingURLIsInvalidResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sessionToken": "abc"})
	})

	_, err := client.GetGameURL(context.Background(), GameURLRequest{Username: "alice"})
	if KindOf(err) != KindInvalidResponse {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestGetGameURL_AcceptsGameUrlField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"gameUrl": "https://launch.example/g", "sessionToken": "fresh"})
	})

	result, err := client.GetGameURL(context.Background(), GameURLRequest{Username: "alice", Provider: "A", GameCode: "g"})
	if err != nil {
		t.Fatalf("get game url: %v", err)
	}
	if result.URL != "https://launch.example/g" || result.SessionToken != "fresh" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCreateSession_BareStringToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/createSession" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode("session-xyz")
	})

	token, err := client.CreateSession(context.Background(), "alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if token != "session-xyz" {
		t.Fatalf("expected session-xyz, got %s", token)
	}
}

func TestLogin_RetriesWithBareSuffix(t *testing.T) {
	var attempts []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		name, _ := body["username"].(string)
		attempts = append(attempts, name)
		if name != "alice01" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://launch.example/g", "sessionToken": "fresh"})
	})

	result, err := client.Login(context.Background(), "AG77-alice01", "g", "tok")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.URL != "https://launch.example/g" {
		t.Fatalf("unexpected url: %s", result.URL)
	}
	if len(attempts) != 2 || attempts[0] != "AG77-alice01" || attempts[1] != "alice01" {
		t.Fatalf("expected canonical attempt then bare-suffix retry, got %v", attempts)
	}
}

func TestLogin_NoRetryWithoutHyphen(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Login(context.Background(), "alice", "g", "tok")
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("plain usernames must not retry, got %d calls", calls)
	}
}

func TestHistory_ReturnsPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data":  []map[string]any{{"id": "t1"}, {"id": "t2"}},
			"total": 2,
		})
	})

	page, err := client.History(context.Background(), "alice", HistoryFilters{}, 1, 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Data) != 2 || page.Total != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestGameList_QueriesProvider(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/gamelist" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("provider"); got != "A" {
			t.Errorf("expected provider A, got %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"games": []map[string]string{{"game_code": "fortune-tiger", "game_name": "Fortune Tiger"}},
		})
	})

	games, err := client.GameList(context.Background(), "A")
	if err != nil {
		t.Fatalf("game list: %v", err)
	}
	if len(games) != 1 || games[0].GameCode != "fortune-tiger" {
		t.Fatalf("unexpected games: %+v", games)
	}
}
