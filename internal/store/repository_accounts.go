package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/models"
)

type accountRepository struct {
	replicaBookkeeping
}

func NewAccountRepository(db *DB) AccountRepository {
	return &accountRepository{
		replicaBookkeeping: replicaBookkeeping{db: db, table: "accounts"},
	}
}

func (r *accountRepository) Save(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, saveAccount,
		account.ID,
		account.Name,
		account.Kind,
		account.Currency,
		account.Balance,
		account.CreatedAt,
		account.UpdatedAt,
		account.SyncedAt,
		account.PendingSync,
		account.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.Save").
			Str("id", account.ID).
			Msg("failed to insert account")
		return fmt.Errorf("failed to save account (id=%s): %w", account.ID, err)
	}

	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	row := r.db.QueryRowContext(ctx, getAccount, id)
	err := scanAccount(row.Scan, &account)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to scan account row: %w", err)
	}
	return account, nil
}

func (r *accountRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getAllAccounts)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.GetAll").
			Msg("failed to query accounts")
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if scanErr := scanAccount(rows.Scan, &account); scanErr != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", scanErr)
		}
		accounts = append(accounts, account)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", rowsErr)
	}

	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateAccount,
		account.Name,
		account.Kind,
		account.Currency,
		account.Balance,
		time.Now().UTC(),
		account.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.Update").
			Str("id", account.ID).
			Msg("failed to update account")
		return fmt.Errorf("failed to update account (id=%s): %w", account.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", account.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteAccount, id); err != nil {
		return fmt.Errorf("failed to delete account (id=%s): %w", id, err)
	}
	return nil
}

func (r *accountRepository) BulkPut(ctx context.Context, accounts []models.Account, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk put: %w", err)
	}
	defer tx.Rollback()

	for _, account := range accounts {
		_, err = tx.ExecContext(ctx, bulkPutAccount,
			account.ID,
			account.Name,
			account.Kind,
			account.Currency,
			account.Balance,
			account.CreatedAt,
			account.UpdatedAt,
			syncedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to bulk put account (id=%s): %w", account.ID, err)
		}
	}

	return tx.Commit()
}

func scanAccount(scan func(dest ...any) error, account *models.Account) error {
	return scan(
		&account.ID,
		&account.Name,
		&account.Kind,
		&account.Currency,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.SyncedAt,
		&account.PendingSync,
		&account.LocalID,
	)
}
