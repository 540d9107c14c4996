package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/schoolhub/school-api/internal/database"
)

var ErrNotFound = errors.New("course not found")

// Repository handles course persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, in Input) (*Course, error) {
	row := &database.Course{
		Name:      in.Name,
		Code:      in.Code,
		Credits:   in.Credits,
		TeacherID: in.TeacherID,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) List(ctx context.Context) ([]Course, error) {
	var rows []database.Course
	err := r.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	courses := make([]Course, 0, len(rows))
	for i := range rows {
		courses = append(courses, *mapRow(&rows[i]))
	}
	return courses, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	row := new(database.Course)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return mapRow(row), nil
}

func (r *Repository) Update(ctx context.Context, id int64, in Input) (*Course, error) {
	row := &database.Course{
		ID:        id,
		Name:      in.Name,
		Code:      in.Code,
		Credits:   in.Credits,
		TeacherID: in.TeacherID,
	}

	result, err := r.db.NewUpdate().
		Model(row).
		Column("name", "code", "credits", "teacher_id").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
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
		Model((*database.Course)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
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

func mapRow(row *database.Course) *Course {
	return &Course{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		Credits:   row.Credits,
		TeacherID: row.TeacherID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
