package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableSubjects  = "subjects"
	tableExams     = "exams"
	tableQuestions = "questions"
	tableSessions  = "exam_sessions"
	tableAnswers   = "answers"
	tableLLMEvents = "llm_request_events"
)

const textSize = 2147483647

var (
	subjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	subjectsTable = &schema.Table{
		Name:       tableSubjects,
		Columns:    subjectsColumns,
		PrimaryKey: []*schema.Column{subjectsColumns[0]},
	}

	examsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "subject_id", Type: field.TypeString},
		{Name: "creator_id", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString, Default: "medium"},
		{Name: "duration_minutes", Type: field.TypeInt, Default: 60},
		{Name: "total_questions", Type: field.TypeInt, Default: 10},
		{Name: "published", Type: field.TypeBool, Default: false},
		{Name: "active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	examsTable = &schema.Table{
		Name:       tableExams,
		Columns:    examsColumns,
		PrimaryKey: []*schema.Column{examsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "exams_subjects_exams",
				Columns:    []*schema.Column{examsColumns[3]},
				RefColumns: []*schema.Column{subjectsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "exam_creator_id", Columns: []*schema.Column{examsColumns[4]}},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "exam_id", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: textSize},
		{Name: "type", Type: field.TypeString, Default: "single_choice"},
		{Name: "option_a", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "option_b", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "option_c", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "option_d", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "correct_answer", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "points", Type: field.TypeInt, Default: 1},
		{Name: "order_index", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_exams_questions",
				Columns:    []*schema.Column{questionsColumns[1]},
				RefColumns: []*schema.Column{examsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "question_exam_id_order_index", Columns: []*schema.Column{questionsColumns[1], questionsColumns[10]}},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "exam_id", Type: field.TypeString},
		{Name: "student_id", Type: field.TypeString},
		{Name: "start_time", Type: field.TypeTime},
		{Name: "end_time", Type: field.TypeTime, Nullable: true},
		{Name: "submitted", Type: field.TypeBool, Default: false},
		{Name: "evaluated", Type: field.TypeBool, Default: false},
		{Name: "total_points", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "exam_sessions_exams_sessions",
				Columns:    []*schema.Column{sessionsColumns[1]},
				RefColumns: []*schema.Column{examsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "examsession_exam_id", Columns: []*schema.Column{sessionsColumns[1]}},
			{Name: "examsession_student_id", Columns: []*schema.Column{sessionsColumns[2]}},
		},
	}

	answersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "answer_text", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "is_correct", Type: field.TypeBool, Nullable: true},
		{Name: "points_earned", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	answersTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    answersColumns,
		PrimaryKey: []*schema.Column{answersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_exam_sessions_answers",
				Columns:    []*schema.Column{answersColumns[1]},
				RefColumns: []*schema.Column{sessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{answersColumns[2]},
				RefColumns: []*schema.Column{questionsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "answer_session_id_question_id", Unique: true, Columns: []*schema.Column{answersColumns[1], answersColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventsColumns[1]}},
		},
	}

	tables = []*schema.Table{
		subjectsTable,
		examsTable,
		questionsTable,
		sessionsTable,
		answersTable,
		llmEventsTable,
	}
)

func init() {
	examsTable.ForeignKeys[0].RefTable = subjectsTable
	questionsTable.ForeignKeys[0].RefTable = examsTable
	sessionsTable.ForeignKeys[0].RefTable = examsTable
	answersTable.ForeignKeys[0].RefTable = sessionsTable
	answersTable.ForeignKeys[1].RefTable = questionsTable
}

// oneActiveSessionIndex enforces at most one unsubmitted session per
// (exam, student). Partial indexes are not expressible in the table
// definitions above, so it is created separately.
const oneActiveSessionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS examsession_one_active
	ON exam_sessions (exam_id, student_id) WHERE submitted = false`

// migrate creates or updates all tables and indexes.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if _, err := drv.DB().ExecContext(ctx, oneActiveSessionIndex); err != nil {
		return fmt.Errorf("create active session index: %w", err)
	}
	return nil
}
