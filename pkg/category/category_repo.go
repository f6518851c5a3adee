package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("category not found")

type Repo interface {
	Store(ctx context.Context, userId int, category Category) (int, error)
	Get(ctx context.Context, userId int, id int) (Category, error)
	GetAll(ctx context.Context, userId int) ([]Category, error)
	Exists(ctx context.Context, userId int, id int) (bool, error)
	Update(ctx context.Context, userId int, category Category) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, userId int, category Category) (int, error) {
	query := `INSERT INTO category (user_id, name, parent_id, icon) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query, userId, category.Name, category.ParentId, category.Icon).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store category: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) Get(ctx context.Context, userId int, id int) (Category, error) {
	query := `SELECT id, name, parent_id, icon FROM category WHERE id = $1 AND user_id = $2`
	var category Category
	var parentId sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id, userId).
		Scan(&category.Id, &category.Name, &parentId, &category.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	if parentId.Valid {
		p := int(parentId.Int64)
		category.ParentId = &p
	}
	return category, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, userId int) ([]Category, error) {
	query := `SELECT id, name, parent_id, icon FROM category WHERE user_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		var parentId sql.NullInt64
		if err := rows.Scan(&category.Id, &category.Name, &parentId, &category.Icon); err != nil {
			err := fmt.Errorf("could not scan category: %w", err)
			log.Error(err)
			return nil, err
		}
		if parentId.Valid {
			p := int(parentId.Int64)
			category.ParentId = &p
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *RepoImpl) Exists(ctx context.Context, userId int, id int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM category WHERE id = $1 AND user_id = $2`, id, userId).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not check category existence: %w", err)
		log.Error(err)
		return false, err
	}
	return count > 0, nil
}

func (r *RepoImpl) Update(ctx context.Context, userId int, category Category) (bool, error) {
	query := `UPDATE category SET name = $1, parent_id = $2, icon = $3 WHERE id = $4 AND user_id = $5`
	result, err := r.db.ExecContext(ctx, query, category.Name, category.ParentId, category.Icon, category.Id, userId)
	if err != nil {
		err := fmt.Errorf("could not update category: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM category WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete category: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}
