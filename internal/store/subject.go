package store

import (
	"context"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/exam"
)

var subjectColumns = []string{"id", "name", "description", "created_at"}

type subjectRepo struct {
	conn
}

func scanSubject(sc scanner) (*exam.Subject, error) {
	var s exam.Subject
	if err := sc.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subjectRepo) GetOrCreate(ctx context.Context, name, description string) (*exam.Subject, error) {
	sel := r.builder().Select(subjectColumns...).
		From(entsql.Table(tableSubjects)).
		Where(entsql.EQ("name", name))
	s, err := scanSubject(r.queryRow(ctx, sel))
	if err == nil {
		return s, nil
	}
	if err = notFound(err); !errors.Is(err, exam.ErrNotFound) {
		return nil, fmt.Errorf("query subject: %w", err)
	}

	s = &exam.Subject{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now(),
	}
	ins := r.builder().Insert(tableSubjects).
		Columns(subjectColumns...).
		Values(s.ID, s.Name, s.Description, s.CreatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	return s, nil
}

func (r *subjectRepo) Get(ctx context.Context, id string) (*exam.Subject, error) {
	sel := r.builder().Select(subjectColumns...).
		From(entsql.Table(tableSubjects)).
		Where(entsql.EQ("id", id))
	s, err := scanSubject(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *subjectRepo) List(ctx context.Context) ([]*exam.Subject, error) {
	sel := r.builder().Select(subjectColumns...).
		From(entsql.Table(tableSubjects)).
		OrderBy("name")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var out []*exam.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
