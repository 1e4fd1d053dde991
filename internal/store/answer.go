package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/exam"
)

var answerColumns = []string{
	"id", "session_id", "question_id", "answer_text",
	"is_correct", "points_earned", "created_at", "updated_at",
}

type answerRepo struct {
	conn
}

func scanAnswer(sc scanner) (*exam.Answer, error) {
	var (
		a       exam.Answer
		correct sql.NullBool
	)
	err := sc.Scan(
		&a.ID, &a.SessionID, &a.QuestionID, &a.Text,
		&correct, &a.PointsEarned, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if correct.Valid {
		v := correct.Bool
		a.IsCorrect = &v
	}
	return &a, nil
}

func (r *answerRepo) Upsert(ctx context.Context, sessionID, questionID, text string, at time.Time) (*exam.Answer, error) {
	at = utc(at)
	sel := r.builder().Select(answerColumns...).
		From(entsql.Table(tableAnswers)).
		Where(entsql.And(
			entsql.EQ("session_id", sessionID),
			entsql.EQ("question_id", questionID),
		))
	a, err := scanAnswer(r.queryRow(ctx, sel))
	switch {
	case err == nil:
		upd := r.builder().Update(tableAnswers).
			Set("answer_text", text).
			Set("updated_at", at).
			Where(entsql.EQ("id", a.ID))
		if _, err := r.exec(ctx, upd); err != nil {
			return nil, fmt.Errorf("update answer: %w", err)
		}
		a.Text = text
		a.UpdatedAt = at
		return a, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("query answer: %w", err)
	}

	a = &exam.Answer{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		QuestionID: questionID,
		Text:       text,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	ins := r.builder().Insert(tableAnswers).
		Columns(answerColumns...).
		Values(a.ID, a.SessionID, a.QuestionID, a.Text, nil, 0, a.CreatedAt, a.UpdatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	return a, nil
}

func (r *answerRepo) ListBySession(ctx context.Context, sessionID string) ([]*exam.Answer, error) {
	sel := r.builder().Select(answerColumns...).
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("created_at")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []*exam.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *answerRepo) SetGrade(ctx context.Context, id string, isCorrect *bool, points int) error {
	upd := r.builder().Update(tableAnswers).
		Set("points_earned", points).
		Where(entsql.EQ("id", id))
	if isCorrect == nil {
		upd.SetNull("is_correct")
	} else {
		upd.Set("is_correct", *isCorrect)
	}
	if _, err := r.exec(ctx, upd); err != nil {
		return fmt.Errorf("grade answer: %w", err)
	}
	return nil
}
