package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type Repo interface {
	Store(ctx context.Context, userId int, tx Transaction) (int, error)
	Get(ctx context.Context, userId int, id int) (Transaction, error)
	// ListInWindow returns transactions with from <= date <= to, ordered by date.
	ListInWindow(ctx context.Context, userId int, from, to time.Time) ([]Transaction, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, userId int, tx Transaction) (int, error) {
	query := `INSERT INTO transaction (user_id, uid, date, amount, label, category_id)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		userId,
		tx.Uid,
		tx.Date,
		tx.Amount,
		tx.Label,
		tx.CategoryId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	query := `SELECT id, uid, date, amount, label, category_id FROM transaction WHERE id = $1 AND user_id = $2`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	return tx, nil
}

func (r *RepoImpl) ListInWindow(ctx context.Context, userId int, from, to time.Time) ([]Transaction, error) {
	query := `SELECT id, uid, date, amount, label, category_id FROM transaction
				WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, userId, from, to)
	if err != nil {
		err := fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			err := fmt.Errorf("could not scan transaction: %w", err)
			log.Error(err)
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transaction WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete transaction: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var tx Transaction
	var categoryId sql.NullInt64
	if err := row.Scan(&tx.Id, &tx.Uid, &tx.Date, &tx.Amount, &tx.Label, &categoryId); err != nil {
		return Transaction{}, err
	}
	tx.Date = tx.Date.UTC()
	if categoryId.Valid {
		c := int(categoryId.Int64)
		tx.CategoryId = &c
	}
	return tx, nil
}
