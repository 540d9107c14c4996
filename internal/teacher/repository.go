package teacher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/schoolhub/school-api/internal/database"
)

var ErrNotFound = errors.New("teacher not found")

// Repository handles teacher persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, in Input) (*Teacher, error) {
	row := &database.Teacher{
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) List(ctx context.Context) ([]Teacher, error) {
	var rows []database.Teacher
	err := r.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	teachers := make([]Teacher, 0, len(rows))
	for i := range rows {
		teachers = append(teachers, *mapRow(&rows[i]))
	}
	return teachers, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Teacher, error) {
	row := new(database.Teacher)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) Update(ctx context.Context, id int64, in Input) (*Teacher, error) {
	row := &database.Teacher{
		ID:         id,
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
	}

	result, err := r.db.NewUpdate().
		Model(row).
		Column("name", "email", "department").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update teacher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapRow(row), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Teacher)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapRow(row *database.Teacher) *Teacher {
	return &Teacher{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Department: row.Department,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
