package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
)

const categoryColumns = `id, name, icon, color, type, parent_id, is_active`

// CreateCategory inserts a new active category. A parent, when given, must
// exist and share the category's type.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, input model.CategoryInput) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	if input.ParentID != "" {
		parent, err := s.getCategoryByID(ctx, s.db, input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != input.Type {
			return nil, common.NewValidationError("parent",
				fmt.Sprintf("parent category %q is %s, not %s", parent.ID, parent.Type, input.Type))
		}
	}

	category := &model.Category{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Icon:     input.Icon,
		Color:    input.Color,
		Type:     input.Type,
		ParentID: input.ParentID,
		IsActive: true,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		category.ID, category.Name, category.Icon, category.Color, string(category.Type),
		nullString(category.ParentID),
	)
	if err != nil {
		return nil, common.NewStorageError("insert category", err)
	}

	slog.Info("created category", "id", category.ID, "name", category.Name, "type", category.Type)
	return category, nil
}

// DeactivateCategory hides a category from listings and from new
// transactions. Existing transactions keep their reference.
func (s *SQLiteStorage) DeactivateCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return common.NewStorageError("deactivate category", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return common.NewStorageError("deactivate category", err)
	}
	if affected == 0 {
		return common.NewReferentialError("category", id)
	}

	slog.Info("deactivated category", "id", id)
	return nil
}

// GetCategories returns active categories ordered by type and then name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategories(ctx, s.db)
}

// GetCategoryByID returns a category, active or not, or a ReferentialError.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategories(ctx context.Context, q querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_active = 1
		ORDER BY type ASC, name ASC, id ASC`)
	if err != nil {
		return nil, common.NewStorageError("query categories", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate categories", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, q querier, id string) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewReferentialError("category", id)
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func scanCategory(row scanner) (*model.Category, error) {
	var (
		category     model.Category
		categoryType string
		parentID     sql.NullString
	)
	err := row.Scan(&category.ID, &category.Name, &category.Icon, &category.Color,
		&categoryType, &parentID, &category.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewStorageError("scan category", err)
	}
	category.Type = model.CategoryType(categoryType)
	category.ParentID = parentID.String
	return &category, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
