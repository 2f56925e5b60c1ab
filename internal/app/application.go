// Package app assembles the wallet services over a storage backend and
// manages their lifecycle.
package app

import (
	"context"

	"github.com/Custodia-Network/wallet_layer/internal/app/services/loans"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/transactions"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/users"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage/memory"
	"github.com/Custodia-Network/wallet_layer/internal/app/system"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

// Stores carries the storage backends for each service. Nil fields fall
// back to a shared in-memory store, which keeps tests and local runs free
// of a database.
type Stores struct {
	Users        storage.UserStore
	Transactions storage.TransactionStore
	Loans        storage.LoanStore
}

// Options tunes application behavior.
type Options struct {
	// OverdueSchedule is the cron expression for the overdue loan sweep.
	// Empty selects the default.
	OverdueSchedule string
}

// Application wires the user registry, transaction ledger and loan
// originator together and owns their background services.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users        *users.Service
	Transactions *transactions.Service
	Loans        *loans.Service
	Monitor      *loans.Monitor
}

// New constructs the application. Any nil store falls back to a single
// shared in-memory backend.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Users == nil || stores.Transactions == nil || stores.Loans == nil {
		mem := memory.New()
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Transactions == nil {
			stores.Transactions = mem
		}
		if stores.Loans == nil {
			stores.Loans = mem
		}
	}

	userSvc := users.New(stores.Users, log.WithComponent("users"))
	txSvc := transactions.New(stores.Transactions, userSvc, log.WithComponent("transactions"))
	loanSvc := loans.New(stores.Loans, userSvc, log.WithComponent("loans"))
	monitor := loans.NewMonitor(loanSvc, opts.OverdueSchedule, log.WithComponent("loan-monitor"))

	a := &Application{
		manager:      system.NewManager(),
		log:          log,
		Users:        userSvc,
		Transactions: txSvc,
		Loans:        loanSvc,
		Monitor:      monitor,
	}
	if err := a.manager.Register(monitor); err != nil {
		return nil, err
	}
	return a, nil
}

// Start launches background services.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	a.log.Info("application started")
	return nil
}

// Stop shuts background services down in reverse start order.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	if err == nil {
		a.log.Info("application stopped")
	}
	return err
}
