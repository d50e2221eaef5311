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
	"github.com/MichaelJHerbert/exercise-tracker/pkg"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{
		db: db,
	}
}

// Add persists a new user. The unique index on username is the source of
// truth for uniqueness, a violation comes back as ErrUsernameTaken.
func (r *UsersRepo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO tracker_user (user_id, username, created_at)
			VALUES ($1, $2, $3)
		RETURNING id;`,
		user.UserID, user.Username, user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		// pgx surfaces execution errors, the unique violation included,
		// only after Next returns false
		if err := rows.Err(); err != nil {
			if pkg.IsUniqueViolationError(err) {
				return nil, ErrUsernameTaken
			}
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", id))

	user.ID = id
	return &user, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, username, created_at FROM tracker_user WHERE username = $1;`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}

	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

func (r *UsersRepo) GetByUserID(ctx context.Context, userID int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.users.getByUserId")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.userId", userID))

	// user ids are random, not guaranteed unique, the oldest row wins
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, username, created_at FROM tracker_user
			WHERE user_id = $1
			ORDER BY id
			LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}

	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

func (r *UsersRepo) ListAll(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tracker.users.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, username, created_at FROM tracker_user ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2users: %w", err)
	}
	return users, nil
}

func (r *UsersRepo) rows2users(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var id int
		var userID int
		var username string
		var createdAt time.Time
		if err := rows.Scan(&id, &userID, &username, &createdAt); err != nil {
			return nil, err
		}

		users = append(users, User{
			ID:        id,
			UserID:    userID,
			Username:  username,
			CreatedAt: createdAt,
		})
	}

	if users == nil {
		users = make([]User, 0)
	}

	return users, nil
}
