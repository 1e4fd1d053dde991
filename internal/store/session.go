package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/exam"
)

var sessionColumns = []string{
	"id", "exam_id", "student_id", "start_time", "end_time",
	"submitted", "evaluated", "total_points", "score", "created_at",
}

type sessionRepo struct {
	conn
}

func scanSession(sc scanner) (*exam.Session, error) {
	var (
		s   exam.Session
		end sql.NullTime
	)
	err := sc.Scan(
		&s.ID, &s.ExamID, &s.StudentID, &s.StartTime, &end,
		&s.Submitted, &s.Evaluated, &s.TotalPoints, &s.Score, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return &s, nil
}

func (r *sessionRepo) selectSessions() *entsql.Selector {
	return r.builder().Select(sessionColumns...).From(entsql.Table(tableSessions))
}

func (r *sessionRepo) Create(ctx context.Context, s *exam.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.StartTime = utc(s.StartTime)
	s.CreatedAt = now()

	var end any
	if s.EndTime != nil {
		end = utc(*s.EndTime)
	}
	ins := r.builder().Insert(tableSessions).
		Columns(sessionColumns...).
		Values(
			s.ID, s.ExamID, s.StudentID, s.StartTime, end,
			s.Submitted, s.Evaluated, s.TotalPoints, s.Score, s.CreatedAt,
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*exam.Session, error) {
	s, err := scanSession(r.queryRow(ctx, r.selectSessions().Where(entsql.EQ("id", id))))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *sessionRepo) GetForUpdate(ctx context.Context, id string) (*exam.Session, error) {
	sel := r.selectSessions().Where(entsql.EQ("id", id))
	if r.postgres() {
		sel.ForUpdate()
	}
	s, err := scanSession(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *sessionRepo) FindActive(ctx context.Context, examID, studentID string) (*exam.Session, error) {
	sel := r.selectSessions().Where(entsql.And(
		entsql.EQ("exam_id", examID),
		entsql.EQ("student_id", studentID),
		entsql.EQ("submitted", false),
	))
	s, err := scanSession(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *sessionRepo) List(ctx context.Context, f SessionFilter) ([]*exam.Session, error) {
	sel := r.selectSessions()
	if f.ExamID != "" {
		sel.Where(entsql.EQ("exam_id", f.ExamID))
	}
	if f.StudentID != "" {
		sel.Where(entsql.EQ("student_id", f.StudentID))
	}
	if f.Submitted != nil {
		sel.Where(entsql.EQ("submitted", *f.Submitted))
	}
	if f.Evaluated != nil {
		sel.Where(entsql.EQ("evaluated", *f.Evaluated))
	}
	switch f.Order {
	case OrderScoreDesc:
		sel.OrderBy(entsql.Desc("score"), entsql.Desc("created_at"))
	default:
		sel.OrderBy(entsql.Desc("created_at"))
	}

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*exam.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionRepo) CountByExam(ctx context.Context, examID string) (int, error) {
	sel := r.builder().Select(entsql.Count("*")).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("exam_id", examID))
	var n int
	if err := r.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *sessionRepo) MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error) {
	upd := r.builder().Update(tableSessions).
		Set("submitted", true).
		Set("end_time", utc(at)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("submitted", false)))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return false, fmt.Errorf("mark session submitted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark session submitted: %w", err)
	}
	return n == 1, nil
}

func (r *sessionRepo) SaveResult(ctx context.Context, id string, totalPoints int, score float64, endTime time.Time) error {
	upd := r.builder().Update(tableSessions).
		Set("total_points", totalPoints).
		Set("score", score).
		Set("evaluated", true).
		Set("end_time", utc(endTime)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("submitted", true)))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	if n == 0 {
		return exam.ErrNotSubmitted
	}
	return nil
}
