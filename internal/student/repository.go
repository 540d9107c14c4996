package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/schoolhub/school-api/internal/database"
)

var ErrNotFound = errors.New("student not found")

// Repository handles student persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, in Input) (*Student, error) {
	row := &database.Student{
		Name:  in.Name,
		Email: in.Email,
	}
	if in.EnrollmentDate != nil {
		row.EnrollmentDate = *in.EnrollmentDate
	} else {
		row.EnrollmentDate = time.Now()
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) List(ctx context.Context) ([]Student, error) {
	var rows []database.Student
	err := r.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	students := make([]Student, 0, len(rows))
	for i := range rows {
		students = append(students, *mapRow(&rows[i]))
	}
	return students, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Student, error) {
	row := new(database.Student)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) Update(ctx context.Context, id int64, in Input) (*Student, error) {
	row := &database.Student{
		ID:    id,
		Name:  in.Name,
		Email: in.Email,
	}
	if in.EnrollmentDate != nil {
		row.EnrollmentDate = *in.EnrollmentDate
	}

	query := r.db.NewUpdate().
		Model(row).
		Column("name", "email").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")
	if in.EnrollmentDate != nil {
		query = query.Column("enrollment_date")
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
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
		Model((*database.Student)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
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

func mapRow(row *database.Student) *Student {
	return &Student{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		EnrollmentDate: row.EnrollmentDate,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
