// Package httpapi exposes the wallet services over HTTP/JSON.
package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Custodia-Network/wallet_layer/internal/app"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/metrics"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/transactions"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/users"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler builds the HTTP route table over the application services.
func NewHandler(a *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: a, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/auth", h.auth)
	r.HandleFunc("/balance", h.balance)
	r.HandleFunc("/transactions", h.transactions)
	r.HandleFunc("/loans", h.loans)
	r.HandleFunc("/healthz", h.healthz)
	r.Handle("/metrics", metrics.Handler())
	return r
}

type authRequest struct {
	WalletAddress string `json:"wallet_address"`
	Email         string `json:"email"`
}

// auth looks a user up by wallet address, creating one on first sight,
// and returns a fresh opaque token. The token is not persisted and no
// other endpoint verifies it.
func (h *handler) auth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req authRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ValidWalletAddress(req.WalletAddress) {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	u, created, err := h.app.Users.Register(r.Context(), req.WalletAddress, req.Email)
	if err != nil {
		h.log.WithError(err).WithField("wallet", req.WalletAddress).Error("user registration failed")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := generateToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	message := "User authenticated"
	status := http.StatusOK
	if created {
		message = "User created successfully"
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"message": message,
		"user":    u,
		"token":   token,
	})
}

// balance returns the cached balance for a wallet.
func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	u, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet_address": u.WalletAddress,
		"bank_balance":   u.BankBalance,
		"last_updated":   u.UpdatedAt,
	})
}

type transactionRequest struct {
	WalletAddress    string   `json:"wallet_address"`
	Type             string   `json:"type"`
	Amount           *float64 `json:"amount"`
	RecipientAddress string   `json:"recipient_address"`
	Hash             string   `json:"transaction_hash"`
	Status           string   `json:"status"`
	Details          string   `json:"details"`
}

func (h *handler) transactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTransactions(w, r)
	case http.MethodPost:
		h.recordTransaction(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}
	txs, err := h.app.Transactions.ListForUser(r.Context(), u.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", u.ID).Error("transaction list failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []transaction.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *handler) recordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.WalletAddress == "" || req.Type == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "wallet_address, type and amount are required")
		return
	}

	u, ok := h.lookupUser(w, r, req.WalletAddress)
	if !ok {
		return
	}

	tx, err := h.app.Transactions.Record(r.Context(), u, transactions.Record{
		Type:             req.Type,
		Amount:           *req.Amount,
		RecipientAddress: req.RecipientAddress,
		Hash:             req.Hash,
		Status:           req.Status,
		Details:          req.Details,
	})
	if err != nil {
		h.log.WithError(err).WithField("user_id", u.ID).Error("transaction record failed")
		writeError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Transaction recorded successfully",
		"transaction_id": tx.ID,
	})
}

type loanRequest struct {
	WalletAddress string   `json:"wallet_address"`
	Amount        *float64 `json:"amount"`
	Term          *int     `json:"term"`
}

func (h *handler) loans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listLoans(w, r)
	case http.MethodPost:
		h.originateLoan(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *handler) listLoans(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}
	lns, err := h.app.Loans.ListForUser(r.Context(), u.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", u.ID).Error("loan list failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch loans")
		return
	}
	if lns == nil {
		lns = []loan.Loan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": lns})
}

func (h *handler) originateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.WalletAddress == "" || req.Amount == nil || req.Term == nil {
		writeError(w, http.StatusBadRequest, "wallet_address, amount and term are required")
		return
	}
	if *req.Amount <= 0 || *req.Term <= 0 {
		writeError(w, http.StatusBadRequest, "amount and term must be positive")
		return
	}

	u, ok := h.lookupUser(w, r, req.WalletAddress)
	if !ok {
		return
	}

	ln, err := h.app.Loans.Originate(r.Context(), u, *req.Amount, *req.Term)
	if err != nil {
		h.log.WithError(err).WithField("user_id", u.ID).Error("loan origination failed")
		writeError(w, http.StatusInternalServerError, "failed to process loan")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "Loan approved successfully",
		"loan_id":         ln.ID,
		"amount":          ln.Amount,
		"interest_rate":   ln.InterestRate,
		"total_repayment": ln.TotalRepayment,
		"due_days":        ln.TermDays,
		"due_date":        ln.DueDate,
	})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userFromQuery resolves the wallet_address query parameter to a user,
// writing the error response itself when it cannot.
func (h *handler) userFromQuery(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	addr := r.URL.Query().Get("wallet_address")
	if addr == "" {
		writeError(w, http.StatusBadRequest, "wallet_address is required")
		return user.User{}, false
	}
	return h.lookupUser(w, r, addr)
}

func (h *handler) lookupUser(w http.ResponseWriter, r *http.Request, addr string) (user.User, bool) {
	u, err := h.app.Users.GetByWallet(r.Context(), addr)
	if errors.Is(err, users.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return user.User{}, false
	}
	if err != nil {
		h.log.WithError(err).WithField("wallet", addr).Error("user lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return user.User{}, false
	}
	return u, true
}

// generateToken returns 32 random bytes, hex encoded. Nothing stores or
// verifies the value after it leaves the response.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
