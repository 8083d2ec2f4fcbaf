package repository

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	approvedGroupRepo service.ApprovedGroupRepository
	giveawayPostRepo  service.GiveawayPostRepository
	entryRepo         service.EntryRepository
	winnerHistoryRepo service.WinnerHistoryRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.approvedGroupRepo = newApprovedGroupRepositoryWithTx(tx)
	u.giveawayPostRepo = newGiveawayPostRepositoryWithTx(tx)
	u.entryRepo = newEntryRepositoryWithTx(tx)
	u.winnerHistoryRepo = newWinnerHistoryRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		_ = u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// Publish stashes an event to be emitted after a successful commit
func (u *unitOfWork) Publish(event events.Event) {
	u.transactionalBus.Publish(event)
}

// ApprovedGroupRepository returns the approved group repository for this unit of work
func (u *unitOfWork) ApprovedGroupRepository() service.ApprovedGroupRepository {
	if u.approvedGroupRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.approvedGroupRepo
}

// GiveawayPostRepository returns the giveaway post repository for this unit of work
func (u *unitOfWork) GiveawayPostRepository() service.GiveawayPostRepository {
	if u.giveawayPostRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.giveawayPostRepo
}

// EntryRepository returns the entry repository for this unit of work
func (u *unitOfWork) EntryRepository() service.EntryRepository {
	if u.entryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.entryRepo
}

// WinnerHistoryRepository returns the winner history repository for this unit of work
func (u *unitOfWork) WinnerHistoryRepository() service.WinnerHistoryRepository {
	if u.winnerHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.winnerHistoryRepo
}
