package savings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrBalanceNotFound = errors.New("savings balance not found")

type Repo interface {
	// Get returns the balance for a definition, ErrBalanceNotFound when no
	// tick or payment has touched it yet.
	Get(ctx context.Context, definitionId int) (Balance, error)
	// Upsert creates or replaces the balance row of a definition.
	Upsert(ctx context.Context, balance Balance) error
	// ListForUser returns the balances of all the user's definitions.
	ListForUser(ctx context.Context, userId int) ([]Balance, error)
	Delete(ctx context.Context, definitionId int) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewSavingsRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Get(ctx context.Context, definitionId int) (Balance, error) {
	query := `SELECT definition_id, saved, paid, last_year, last_month
				FROM savings_balance WHERE definition_id = $1`
	balance, err := scanBalance(r.db.QueryRowContext(ctx, query, definitionId))
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get savings balance: %w", err)
		log.Error(err)
		return Balance{}, err
	}
	return balance, nil
}

func (r *RepoImpl) Upsert(ctx context.Context, balance Balance) error {
	query := `INSERT INTO savings_balance (definition_id, saved, paid, last_year, last_month)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (definition_id) DO UPDATE
				SET saved = $2, paid = $3, last_year = $4, last_month = $5`
	_, err := r.db.ExecContext(ctx, query,
		balance.DefinitionId,
		balance.Saved,
		balance.Paid,
		balance.LastYear,
		int(balance.LastMonth),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert savings balance: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepoImpl) ListForUser(ctx context.Context, userId int) ([]Balance, error) {
	query := `SELECT b.definition_id, b.saved, b.paid, b.last_year, b.last_month
				FROM savings_balance b
				JOIN obligation_definition d ON d.id = b.definition_id
				WHERE d.user_id = $1 ORDER BY b.definition_id`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query savings balances: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			err := fmt.Errorf("could not scan savings balance: %w", err)
			log.Error(err)
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, definitionId int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_balance WHERE definition_id = $1`, definitionId)
	if err != nil {
		err := fmt.Errorf("could not delete savings balance: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (Balance, error) {
	var balance Balance
	var lastMonth int
	err := row.Scan(&balance.DefinitionId, &balance.Saved, &balance.Paid, &balance.LastYear, &lastMonth)
	if err != nil {
		return Balance{}, err
	}
	balance.LastMonth = time.Month(lastMonth)
	return balance, nil
}
