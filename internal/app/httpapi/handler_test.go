package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Custodia-Network/wallet_layer/internal/app"
)

const testWallet = "0x1234567890abcdef1234567890abcdef12345678"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	srv := httptest.NewServer(NewHandler(application, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestAuthCreatesThenAuthenticates(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": testWallet})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for first auth, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User created successfully" {
		t.Errorf("unexpected message %v", body["message"])
	}
	token, _ := body["token"].(string)
	if len(token) != 64 {
		t.Errorf("expected 64 hex char token, got %q", token)
	}
	first, _ := body["user"].(map[string]any)

	resp = postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": testWallet})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for repeat auth, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "User authenticated" {
		t.Errorf("unexpected message %v", body["message"])
	}
	second, _ := body["user"].(map[string]any)
	if first["id"] != second["id"] {
		t.Errorf("repeat auth must return the same user, got ids %v and %v", first["id"], second["id"])
	}
}

func TestAuthRejectsInvalidAddress(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": "0xnothex"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] == nil {
		t.Error("expected an error field")
	}
}

func TestBalanceUnknownWallet(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/balance?wallet_address=" + testWallet)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if _, present := body["bank_balance"]; present {
		t.Error("404 response must not carry a balance field")
	}
}

func TestBalanceMissingParam(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/balance")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDepositUpdatesBalanceWithdrawalDoesNot(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": testWallet})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/transactions", map[string]any{
		"wallet_address": testWallet,
		"type":           "deposit",
		"amount":         50,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for deposit, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Transaction recorded successfully" {
		t.Errorf("unexpected message %v", body["message"])
	}

	if got := fetchBalance(t, srv); got != 50 {
		t.Errorf("expected balance 50 after deposit, got %v", got)
	}

	resp = postJSON(t, srv.URL+"/transactions", map[string]any{
		"wallet_address": testWallet,
		"type":           "withdrawal",
		"amount":         20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for withdrawal, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if got := fetchBalance(t, srv); got != 50 {
		t.Errorf("withdrawal must leave balance unchanged, got %v", got)
	}
}

func TestTransactionMissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/transactions", map[string]any{
		"wallet_address": testWallet,
		"type":           "deposit",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing amount, got %d", resp.StatusCode)
	}
}

func TestTransactionUnknownUser(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/transactions", map[string]any{
		"wallet_address": testWallet,
		"type":           "deposit",
		"amount":         10,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": testWallet})
	resp.Body.Close()

	for i := 1; i <= 3; i++ {
		resp = postJSON(t, srv.URL+"/transactions", map[string]any{
			"wallet_address":   testWallet,
			"type":             "transfer",
			"amount":           float64(i),
			"transaction_hash": fmt.Sprintf("0xhash%d", i),
		})
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/transactions?wallet_address=" + testWallet)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := decodeBody(t, resp)
	txs, _ := body["transactions"].([]any)
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	newest, _ := txs[0].(map[string]any)
	if newest["amount"] != 3.0 {
		t.Errorf("expected newest first, got amount %v", newest["amount"])
	}
}

func TestLoanOrigination(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth", map[string]any{"wallet_address": testWallet})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/loans", map[string]any{
		"wallet_address": testWallet,
		"amount":         1000,
		"term":           30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Loan approved successfully" {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["total_repayment"] != 1050.0 {
		t.Errorf("expected repayment 1050 for 30 day term, got %v", body["total_repayment"])
	}
	if body["interest_rate"] != 5.0 {
		t.Errorf("expected rate 5, got %v", body["interest_rate"])
	}

	if got := fetchBalance(t, srv); got != 1000 {
		t.Errorf("loan should credit the principal, got balance %v", got)
	}

	resp, err := http.Get(srv.URL + "/loans?wallet_address=" + testWallet)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body = decodeBody(t, resp)
	lns, _ := body["loans"].([]any)
	if len(lns) != 1 {
		t.Fatalf("expected 1 loan, got %d", len(lns))
	}
	ln, _ := lns[0].(map[string]any)
	if ln["status"] != "approved" {
		t.Errorf("new loans must be approved, got %v", ln["status"])
	}
}

func TestLoanMissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/loans", map[string]any{
		"wallet_address": testWallet,
		"amount":         1000,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing term, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/balance", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/auth")
	if err != nil {
		t.Fatalf("GET /auth failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /auth, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func fetchBalance(t *testing.T, srv *httptest.Server) float64 {
	t.Helper()
	resp, err := http.Get(srv.URL + "/balance?wallet_address=" + testWallet)
	if err != nil {
		t.Fatalf("GET /balance failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /balance, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	balance, ok := body["bank_balance"].(float64)
	if !ok {
		t.Fatalf("missing bank_balance in %v", body)
	}
	return balance
}
