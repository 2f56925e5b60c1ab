// Package users implements the user registry over a UserStore.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

// ErrNotFound is returned when no user matches a wallet address.
var ErrNotFound = errors.New("user not found")

// Service manages registered wallet owners and their cached balance.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user registry service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Register returns the user for a wallet address, creating it on first
// sight. Repeated calls with the same address return the same user; the
// boolean reports whether a row was created.
func (s *Service) Register(ctx context.Context, walletAddress, email string) (user.User, bool, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return user.User{}, false, fmt.Errorf("wallet_address is required")
	}

	existing, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return user.User{}, false, err
	}

	created, err := s.store.CreateUser(ctx, walletAddress, strings.TrimSpace(email))
	if err != nil {
		return user.User{}, false, err
	}
	s.log.WithField("user_id", created.ID).
		WithField("wallet", walletAddress).
		Info("user registered")
	return created, true, nil
}

// GetByWallet looks up a user by wallet address. Absence is reported as
// ErrNotFound, not a storage error.
func (s *Service) GetByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	u, err := s.store.GetUserByWallet(ctx, strings.TrimSpace(walletAddress))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	return u, err
}

// UpdateBalance overwrites the cached balance. Last writer wins; there is
// no optimistic concurrency check.
func (s *Service) UpdateBalance(ctx context.Context, walletAddress string, balance float64) error {
	err := s.store.UpdateBalance(ctx, walletAddress, balance)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Credit adds amount to the balance cached on u and writes the result
// back. The read and the write are separate storage calls, so concurrent
// credits against the same wallet can lose an update.
func (s *Service) Credit(ctx context.Context, u user.User, amount float64) (float64, error) {
	newBalance := u.BankBalance + amount
	if err := s.UpdateBalance(ctx, u.WalletAddress, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}
