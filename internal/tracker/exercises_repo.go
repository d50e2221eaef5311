package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/tracing"
)

// ListParams narrows an exercise log query. Nil From/To mean no bound on
// that side, Limit 0 means no cap.
type ListParams struct {
	UserID int
	From   *time.Time
	To     *time.Time
	Limit  int
}

type ExercisesRepo struct {
	db *pgxpool.Pool
}

func NewExercisesRepo(db *pgxpool.Pool) *ExercisesRepo {
	return &ExercisesRepo{
		db: db,
	}
}

func (r *ExercisesRepo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO exercise (user_id, description, duration, exercise_date, created_at)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		exercise.UserID, exercise.Description, exercise.Duration, exercise.Date, exercise.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		// execution errors only show up on Err after Next returns false
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", id))

	exercise.ID = id
	return &exercise, nil
}

// List returns the exercises of one user, ordered by exercise date ascending.
func (r *ExercisesRepo) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.userId", params.UserID))
	span.SetAttributes(attribute.Int("limit", params.Limit))
	if params.From != nil {
		span.SetAttributes(attribute.String("from", params.From.String()))
	}
	if params.To != nil {
		span.SetAttributes(attribute.String("to", params.To.String()))
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, description, duration, exercise_date, created_at
			FROM exercise
				WHERE user_id = $1
				AND ($2::timestamptz IS NULL OR exercise_date >= $2)
				AND ($3::timestamptz IS NULL OR exercise_date <= $3)
			ORDER BY exercise_date ASC
			LIMIT NULLIF($4::int, 0);`,
		params.UserID, params.From, params.To, params.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

func (r *ExercisesRepo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var id int
		var userID int
		var description string
		var duration int
		var exerciseDate time.Time
		var createdAt time.Time
		if err := rows.Scan(&id, &userID, &description, &duration, &exerciseDate, &createdAt); err != nil {
			return nil, err
		}

		exercises = append(exercises, Exercise{
			ID:          id,
			UserID:      userID,
			Description: description,
			Duration:    duration,
			Date:        exerciseDate,
			CreatedAt:   createdAt,
		})
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}

	return exercises, nil
}
