package repository

import (
	"context"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
)

// Repositories bundles the store-backed repositories shared by every unit of work
type Repositories struct {
	Accounts *AccountStore
	Matches  *MatchRegistry
	Fees     *FeeLedger
	Disputes *DisputeRepository
}

// NewRepositories builds all repositories over one store
func NewRepositories(store storage.Store, minEntryFee int64, opts Options) *Repositories {
	return &Repositories{
		Accounts: NewAccountStore(store, opts),
		Matches:  NewMatchRegistry(store, minEntryFee, opts),
		Fees:     NewFeeLedger(store),
		Disputes: NewDisputeRepository(store),
	}
}

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	repos            *Repositories
	ctx              context.Context
	emitter          events.Emitter
	transactionalBus *events.TransactionalBus
}

type unitOfWorkFactory struct {
	repos   *Repositories
	emitter events.Emitter
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(repos *Repositories, emitter events.Emitter) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		repos:   repos,
		emitter: emitter,
	}
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		repos:   f.repos,
		emitter: f.emitter,
	}
}

// Begin opens the event buffer for this operation
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.transactionalBus != nil {
		return fmt.Errorf("unit of work already started")
	}
	u.ctx = ctx
	u.transactionalBus = events.NewTransactionalBus(u.emitter)
	return nil
}

// Commit releases pending events
func (u *unitOfWork) Commit() error {
	if u.transactionalBus == nil {
		return fmt.Errorf("no unit of work to commit")
	}
	u.transactionalBus.Flush(u.ctx)
	u.transactionalBus = nil
	return nil
}

// Rollback drops pending events. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.transactionalBus == nil {
		return nil
	}
	u.transactionalBus.Discard()
	u.transactionalBus = nil
	return nil
}

func (u *unitOfWork) AccountStore() interfaces.AccountStore {
	return u.repos.Accounts
}

func (u *unitOfWork) MatchRegistry() interfaces.MatchRegistry {
	return u.repos.Matches
}

func (u *unitOfWork) FeeLedger() interfaces.FeeLedger {
	return u.repos.Fees
}

func (u *unitOfWork) DisputeRepository() interfaces.DisputeRepository {
	return u.repos.Disputes
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
