package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/history"
	"github.com/lucentplay/seamless-wallet/internal/logging"
	"github.com/lucentplay/seamless-wallet/internal/settlement"
	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

const testSecret = "agent-secret"

type failingFetcher struct{}

func (failingFetcher) History(_ context.Context, _ string, _ upstream.HistoryFilters, _, _ int) (upstream.HistoryPage, error) {
	return upstream.HistoryPage{}, &upstream.Error{Kind: upstream.KindUnreachable, Op: "history"}
}

func newTestApp(t *testing.T) (*fiber.App, account.Store) {
	t.Helper()
	store := account.NewMemoryStore()
	if err := store.Create(context.Background(), account.Account{
		ID:       "id-alice",
		Username: "alice",
		Balance:  decimal.NewFromInt(100),
		Currency: "THB",
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	logger := logging.Discard()
	engine := settlement.NewEngine(store, settlement.NewMemoryRegistry(), nil, logger)
	hist := history.NewService(failingFetcher{}, logger)
	handler := NewHandler(testSecret, store, engine, hist, logger)

	app := fiber.New()
	app.Post("/api/checkBalance", handler.CheckBalance)
	app.Post("/api/settleBets", handler.SettleBets)
	app.Post("/api/history", handler.History)
	return app, store
}

func call(t *testing.T, app *fiber.App, path, key string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestCheckBalance(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, "/api/checkBalance", testSecret, map[string]string{"username": "alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["balance"] != "100.00" || body["currency"] != "THB" {
		t.Fatalf("unexpected body: %v", body)
	}

	resp, _ = call(t, app, "/api/checkBalance", "wrong-key", map[string]string{"username": "alice"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad key, got %d", resp.StatusCode)
	}

	resp, _ = call(t, app, "/api/checkBalance", testSecret, map[string]string{"username": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestSettleBets_Success(t *testing.T) {
	app, store := newTestApp(t)

	resp, body := call(t, app, "/api/settleBets", testSecret, map[string]any{
		"username": "alice",
		"id":       "w1",
		"txns":     []map[string]any{{"betAmount": 100, "payoutAmount": 0}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true || body["statusCode"] != float64(0) {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["balanceBefore"] != "100.00" || body["balanceAfter"] != "0.00" {
		t.Fatalf("unexpected balances: %v", body)
	}

	acct, _ := store.Get(context.Background(), "alice")
	if !acct.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", acct.Balance)
	}
}

func TestSettleBets_InsufficientBalance(t *testing.T) {
	app, store := newTestApp(t)

	resp, body := call(t, app, "/api/settleBets", testSecret, map[string]any{
		"username": "alice",
		"id":       "w1",
		"txns":     []map[string]any{{"betAmount": 150, "payoutAmount": 0}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("business rejection must be HTTP 200, got %d", resp.StatusCode)
	}
	if body["success"] != false || body["statusCode"] != float64(30002) {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["balanceBefore"] != "100.00" || body["balanceAfter"] != "100.00" {
		t.Fatalf("rejection must not move the balance: %v", body)
	}

	acct, _ := store.Get(context.Background(), "alice")
	if !acct.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", acct.Balance)
	}
}

func TestSettleBets_UnknownUserAndBadKey(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, "/api/settleBets", testSecret, map[string]any{
		"username": "ghost",
		"id":       "w1",
		"txns":     []map[string]any{{"betAmount": 10, "payoutAmount": 0}},
	})
	if resp.StatusCode != http.StatusNotFound || body["statusCode"] != float64(30001) {
		t.Fatalf("expected 404/30001, got %d/%v", resp.StatusCode, body["statusCode"])
	}

	resp, body = call(t, app, "/api/settleBets", "wrong", map[string]any{
		"username": "alice",
		"id":       "w1",
		"txns":     []map[string]any{{"betAmount": 10, "payoutAmount": 0}},
	})
	if resp.StatusCode != http.StatusUnauthorized || body["statusCode"] != float64(30001) {
		t.Fatalf("expected 401/30001, got %d/%v", resp.StatusCode, body["statusCode"])
	}
}

func TestSettleBets_OnlyFirstTxnProcessed(t *testing.T) {
	app, store := newTestApp(t)

	resp, _ := call(t, app, "/api/settleBets", testSecret, map[string]any{
		"username": "alice",
		"id":       "w1",
		"txns": []map[string]any{
			{"betAmount": 10, "payoutAmount": 0},
			{"betAmount": 90, "payoutAmount": 0},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	acct, _ := store.Get(context.Background(), "alice")
	if !acct.Balance.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected only first txn applied (balance 90), got %s", acct.Balance)
	}
}

func TestSettleBets_ReplaySameWagerID(t *testing.T) {
	app, store := newTestApp(t)

	payload := map[string]any{
		"username": "alice",
		"id":       "w-dup",
		"txns":     []map[string]any{{"betAmount": 60, "payoutAmount": 0}},
	}
	resp, _ := call(t, app, "/api/settleBets", testSecret, payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first settle: %d", resp.StatusCode)
	}
	resp, body := call(t, app, "/api/settleBets", testSecret, payload)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("replay must succeed: %d %v", resp.StatusCode, body)
	}

	acct, _ := store.Get(context.Background(), "alice")
	if !acct.Balance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("replay moved the balance: %s", acct.Balance)
	}
}

func TestHistory_DegradesToEmptySuccess(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := call(t, app, "/api/history", testSecret, map[string]any{"username": "alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true {
		t.Fatalf("degraded history must still report success: %v", body)
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 0 {
		t.Fatalf("expected empty data, got %v", body["data"])
	}
}
