package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/exam"
)

var examColumns = []string{
	"id", "title", "description", "subject_id", "creator_id", "difficulty",
	"duration_minutes", "total_questions", "published", "active",
	"created_at", "updated_at",
}

var questionColumns = []string{
	"id", "exam_id", "text", "type",
	"option_a", "option_b", "option_c", "option_d",
	"correct_answer", "points", "order_index", "created_at",
}

type examRepo struct {
	conn
}

func scanExam(sc scanner) (*exam.Exam, error) {
	var e exam.Exam
	err := sc.Scan(
		&e.ID, &e.Title, &e.Description, &e.SubjectID, &e.CreatorID, &e.Difficulty,
		&e.DurationMinutes, &e.TotalQuestions, &e.Published, &e.Active,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanQuestion(sc scanner) (*exam.Question, error) {
	var (
		q     exam.Question
		qtype string
	)
	err := sc.Scan(
		&q.ID, &q.ExamID, &q.Text, &qtype,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3],
		&q.CorrectAnswer, &q.Points, &q.OrderIndex, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Type = exam.QuestionType(qtype)
	return &q, nil
}

func (r *examRepo) Create(ctx context.Context, e *exam.Exam) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	ins := r.builder().Insert(tableExams).
		Columns(examColumns...).
		Values(
			e.ID, e.Title, e.Description, e.SubjectID, e.CreatorID, e.Difficulty,
			e.DurationMinutes, e.TotalQuestions, e.Published, e.Active,
			e.CreatedAt, e.UpdatedAt,
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}
	return nil
}

func (r *examRepo) Get(ctx context.Context, id string) (*exam.Exam, error) {
	sel := r.builder().Select(examColumns...).
		From(entsql.Table(tableExams)).
		Where(entsql.EQ("id", id))
	e, err := scanExam(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *examRepo) List(ctx context.Context, f ExamFilter) ([]*exam.Exam, error) {
	sel := r.builder().Select(examColumns...).
		From(entsql.Table(tableExams)).
		OrderBy(entsql.Desc("created_at"))
	if f.CreatorID != "" {
		sel.Where(entsql.EQ("creator_id", f.CreatorID))
	}
	if f.AvailableOnly {
		sel.Where(entsql.And(entsql.EQ("published", true), entsql.EQ("active", true)))
	}

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query exams: %w", err)
	}
	defer rows.Close()

	var out []*exam.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *examRepo) SetPublished(ctx context.Context, id string, published bool) error {
	return r.setFlag(ctx, id, "published", published)
}

func (r *examRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.setFlag(ctx, id, "active", active)
}

func (r *examRepo) setFlag(ctx context.Context, id, column string, v bool) error {
	upd := r.builder().Update(tableExams).
		Set(column, v).
		Set("updated_at", now()).
		Where(entsql.EQ("id", id))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update exam %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update exam %s: %w", column, err)
	}
	if n == 0 {
		return exam.ErrNotFound
	}
	return nil
}

func (r *examRepo) ReplaceQuestions(ctx context.Context, examID string, qs []*exam.Question) error {
	del := r.builder().Delete(tableQuestions).Where(entsql.EQ("exam_id", examID))
	if _, err := r.exec(ctx, del); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	if len(qs) == 0 {
		return nil
	}

	created := now()
	ins := r.builder().Insert(tableQuestions).Columns(questionColumns...)
	for i, q := range qs {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.ExamID = examID
		q.OrderIndex = i
		q.CreatedAt = created
		ins.Values(
			q.ID, q.ExamID, q.Text, string(q.Type),
			q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			q.CorrectAnswer, q.Points, q.OrderIndex, q.CreatedAt,
		)
	}
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

func (r *examRepo) Questions(ctx context.Context, examID string) ([]*exam.Question, error) {
	sel := r.builder().Select(questionColumns...).
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("exam_id", examID)).
		OrderBy("order_index")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []*exam.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *examRepo) Question(ctx context.Context, id string) (*exam.Question, error) {
	sel := r.builder().Select(questionColumns...).
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("id", id))
	q, err := scanQuestion(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return q, nil
}
