package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
)

const personColumns = `id, name, email, avatar, is_owner, created_at, updated_at`

// CreatePerson inserts a new household member.
func (s *SQLiteStorage) CreatePerson(ctx context.Context, input model.PersonInput) (*model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePersonInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	person := &model.Person{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Avatar:    input.Avatar,
		IsOwner:   input.IsOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.Name, person.Email, person.Avatar, person.IsOwner,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, common.NewStorageError("insert person", err)
	}

	slog.Info("created person", "id", person.ID, "name", person.Name)
	return person, nil
}

// GetPersons returns every person, owner first and then by name.
func (s *SQLiteStorage) GetPersons(ctx context.Context) ([]model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPersons(ctx, s.db)
}

// GetPersonByID returns a person or a ReferentialError when it does not exist.
func (s *SQLiteStorage) GetPersonByID(ctx context.Context, id string) (*model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPersonByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getPersons(ctx context.Context, q querier) ([]model.Person, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons
		ORDER BY is_owner DESC, name ASC, id ASC`)
	if err != nil {
		return nil, common.NewStorageError("query persons", err)
	}
	defer func() { _ = rows.Close() }()

	var persons []model.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate persons", err)
	}

	slog.Debug("retrieved persons", "count", len(persons))
	return persons, nil
}

func (s *SQLiteStorage) getPersonByID(ctx context.Context, q querier, id string) (*model.Person, error) {
	row := q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ?`, id)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewReferentialError("person", id)
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*model.Person, error) {
	var (
		person             model.Person
		createdAt, updated string
	)
	err := row.Scan(&person.ID, &person.Name, &person.Email, &person.Avatar, &person.IsOwner, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewStorageError("scan person", err)
	}
	if person.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, common.NewStorageError("scan person", err)
	}
	if person.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, common.NewStorageError("scan person", err)
	}
	return &person, nil
}
