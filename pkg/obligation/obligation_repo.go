package obligation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/pkg/schedule"
)

type Repo interface {
	StoreDefinition(ctx context.Context, userId int, def Definition) (int, error)
	GetDefinition(ctx context.Context, userId int, id int) (Definition, error)
	ListDefinitions(ctx context.Context, userId int) ([]Definition, error)
	// ListAllDefinitions returns every user's definitions. Used by the
	// monthly savings tick, which runs outside any request context.
	ListAllDefinitions(ctx context.Context) ([]Definition, error)
	UpdateDefinition(ctx context.Context, userId int, def Definition) (bool, error)
	// DeleteDefinition removes the definition; its occurrences go with it.
	DeleteDefinition(ctx context.Context, userId int, id int) (bool, error)
	// ListOccurrences returns the definition's occurrences ordered by
	// scheduled date.
	ListOccurrences(ctx context.Context, userId int, definitionId int) ([]Occurrence, error)
	GetOccurrence(ctx context.Context, userId int, occurrenceId int) (Occurrence, error)
	UpdateOccurrence(ctx context.Context, userId int, occ Occurrence) (bool, error)
	// ApplyDiff persists a synchronization diff in one transaction.
	ApplyDiff(ctx context.Context, userId int, definitionId int, diff Diff) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewObligationRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) StoreDefinition(ctx context.Context, userId int, def Definition) (int, error) {
	query := `INSERT INTO obligation_definition
				(user_id, name, amount, interval_months, first_due_date, lead_time_months,
				 pattern, adjustment, saving_strategy, custom_monthly_amount, category_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		userId,
		def.Name,
		def.Amount,
		def.IntervalMonths,
		def.FirstDueDate,
		def.LeadTimeMonths,
		schedule.FormatPattern(def.Pattern),
		string(def.Adjustment),
		string(def.Strategy),
		def.CustomMonthlyAmount,
		def.CategoryId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store obligation definition: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) GetDefinition(ctx context.Context, userId int, id int) (Definition, error) {
	query := `SELECT id, name, amount, interval_months, first_due_date, lead_time_months,
				pattern, adjustment, saving_strategy, custom_monthly_amount, category_id
				FROM obligation_definition WHERE id = $1 AND user_id = $2`
	def, err := scanDefinition(r.db.QueryRowContext(ctx, query, id, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return Definition{}, ErrDefinitionNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get obligation definition: %w", err)
		log.Error(err)
		return Definition{}, err
	}
	return def, nil
}

func (r *RepoImpl) ListDefinitions(ctx context.Context, userId int) ([]Definition, error) {
	query := `SELECT id, name, amount, interval_months, first_due_date, lead_time_months,
				pattern, adjustment, saving_strategy, custom_monthly_amount, category_id
				FROM obligation_definition WHERE user_id = $1 ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query obligation definitions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var definitions []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			err := fmt.Errorf("could not scan obligation definition: %w", err)
			log.Error(err)
			return nil, err
		}
		definitions = append(definitions, def)
	}
	return definitions, rows.Err()
}

func (r *RepoImpl) ListAllDefinitions(ctx context.Context) ([]Definition, error) {
	query := `SELECT id, name, amount, interval_months, first_due_date, lead_time_months,
				pattern, adjustment, saving_strategy, custom_monthly_amount, category_id
				FROM obligation_definition ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query obligation definitions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var definitions []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			err := fmt.Errorf("could not scan obligation definition: %w", err)
			log.Error(err)
			return nil, err
		}
		definitions = append(definitions, def)
	}
	return definitions, rows.Err()
}

func (r *RepoImpl) UpdateDefinition(ctx context.Context, userId int, def Definition) (bool, error) {
	query := `UPDATE obligation_definition
				SET name = $1, amount = $2, interval_months = $3, first_due_date = $4,
					lead_time_months = $5, pattern = $6, adjustment = $7,
					saving_strategy = $8, custom_monthly_amount = $9, category_id = $10
				WHERE id = $11 AND user_id = $12`
	result, err := r.db.ExecContext(ctx, query,
		def.Name,
		def.Amount,
		def.IntervalMonths,
		def.FirstDueDate,
		def.LeadTimeMonths,
		schedule.FormatPattern(def.Pattern),
		string(def.Adjustment),
		string(def.Strategy),
		def.CustomMonthlyAmount,
		def.CategoryId,
		def.Id,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update obligation definition: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) DeleteDefinition(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM obligation_definition WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete obligation definition: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) ListOccurrences(ctx context.Context, userId int, definitionId int) ([]Occurrence, error) {
	query := `SELECT o.id, o.definition_id, o.scheduled_date, o.expected_amount, o.status,
				o.actual_date, o.actual_amount, o.transaction_id
				FROM obligation_occurrence o
				JOIN obligation_definition d ON d.id = o.definition_id
				WHERE o.definition_id = $1 AND d.user_id = $2
				ORDER BY o.scheduled_date, o.id`
	rows, err := r.db.QueryContext(ctx, query, definitionId, userId)
	if err != nil {
		err := fmt.Errorf("could not query occurrences: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var occurrences []Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			err := fmt.Errorf("could not scan occurrence: %w", err)
			log.Error(err)
			return nil, err
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences, rows.Err()
}

func (r *RepoImpl) GetOccurrence(ctx context.Context, userId int, occurrenceId int) (Occurrence, error) {
	query := `SELECT o.id, o.definition_id, o.scheduled_date, o.expected_amount, o.status,
				o.actual_date, o.actual_amount, o.transaction_id
				FROM obligation_occurrence o
				JOIN obligation_definition d ON d.id = o.definition_id
				WHERE o.id = $1 AND d.user_id = $2`
	occ, err := scanOccurrence(r.db.QueryRowContext(ctx, query, occurrenceId, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return Occurrence{}, ErrOccurrenceNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get occurrence: %w", err)
		log.Error(err)
		return Occurrence{}, err
	}
	return occ, nil
}

func (r *RepoImpl) UpdateOccurrence(ctx context.Context, userId int, occ Occurrence) (bool, error) {
	query := `UPDATE obligation_occurrence o
				SET scheduled_date = $1, expected_amount = $2, status = $3,
					actual_date = $4, actual_amount = $5, transaction_id = $6
				FROM obligation_definition d
				WHERE o.id = $7 AND o.definition_id = d.id AND d.user_id = $8`
	result, err := r.db.ExecContext(ctx, query,
		occ.ScheduledDate,
		occ.ExpectedAmount,
		string(occ.Status),
		occ.ActualDate,
		nullDecimal(occ.ActualAmount),
		occ.TransactionId,
		occ.Id,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update occurrence: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) ApplyDiff(ctx context.Context, userId int, definitionId int, diff Diff) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Ownership is checked once; every statement below is scoped to this
	// definition.
	var owned int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM obligation_definition WHERE id = $1 AND user_id = $2`,
		definitionId, userId,
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("could not verify definition ownership: %w", err)
	}
	if owned == 0 {
		return ErrDefinitionNotFound
	}

	for _, occ := range diff.Creates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO obligation_occurrence (definition_id, scheduled_date, expected_amount, status)
				VALUES ($1, $2, $3, $4)`,
			definitionId,
			occ.ScheduledDate,
			occ.ExpectedAmount,
			string(occ.Status),
		)
		if err != nil {
			return fmt.Errorf("could not create occurrence: %w", err)
		}
	}
	for _, occ := range diff.Updates {
		_, err := tx.ExecContext(ctx,
			`UPDATE obligation_occurrence SET scheduled_date = $1, expected_amount = $2, status = $3
				WHERE id = $4 AND definition_id = $5`,
			occ.ScheduledDate,
			occ.ExpectedAmount,
			string(occ.Status),
			occ.Id,
			definitionId,
		)
		if err != nil {
			return fmt.Errorf("could not update occurrence: %w", err)
		}
	}
	for _, id := range diff.Deletes {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM obligation_occurrence WHERE id = $1 AND definition_id = $2`,
			id, definitionId)
		if err != nil {
			return fmt.Errorf("could not delete occurrence: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit occurrence diff: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (Definition, error) {
	var def Definition
	var patternString, adjustmentString, strategyString string
	var categoryId sql.NullInt64
	err := row.Scan(&def.Id, &def.Name, &def.Amount, &def.IntervalMonths, &def.FirstDueDate,
		&def.LeadTimeMonths, &patternString, &adjustmentString, &strategyString,
		&def.CustomMonthlyAmount, &categoryId)
	if err != nil {
		return Definition{}, err
	}
	def.FirstDueDate = def.FirstDueDate.UTC()
	if def.Pattern, err = schedule.ParsePattern(patternString); err != nil {
		return Definition{}, fmt.Errorf("could not parse pattern: %w", err)
	}
	if def.Adjustment, err = schedule.ParseAdjustmentPolicy(adjustmentString); err != nil {
		return Definition{}, fmt.Errorf("could not parse adjustment policy: %w", err)
	}
	def.Strategy = SavingStrategy(strategyString)
	if categoryId.Valid {
		c := int(categoryId.Int64)
		def.CategoryId = &c
	}
	return def, nil
}

func scanOccurrence(row rowScanner) (Occurrence, error) {
	var occ Occurrence
	var statusString string
	var actualDate sql.NullTime
	var actualAmount decimal.NullDecimal
	var transactionId sql.NullInt64
	err := row.Scan(&occ.Id, &occ.DefinitionId, &occ.ScheduledDate, &occ.ExpectedAmount, &statusString,
		&actualDate, &actualAmount, &transactionId)
	if err != nil {
		return Occurrence{}, err
	}
	occ.ScheduledDate = occ.ScheduledDate.UTC()
	occ.Status = Status(statusString)
	if actualDate.Valid {
		date := actualDate.Time.UTC()
		occ.ActualDate = &date
	}
	if actualAmount.Valid {
		amount := actualAmount.Decimal
		occ.ActualAmount = &amount
	}
	if transactionId.Valid {
		t := int(transactionId.Int64)
		occ.TransactionId = &t
	}
	return occ, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
