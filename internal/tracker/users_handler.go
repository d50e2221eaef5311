package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/metrics"
	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/tracing"
	"github.com/MichaelJHerbert/exercise-tracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=tracker_test

// userIDUpperBound caps the randomly assigned public user ids, [0, 100000).
const userIDUpperBound = 100000

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
}

type UsersHandler struct {
	repo    usersRepo
	metrics *metrics.Manager
}

func NewUsersHandler(repo usersRepo, metricsManager *metrics.Manager) *UsersHandler {
	return &UsersHandler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.register")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("register user failed, parse form error: %s", err)
		writeError(w, err.Error())
		return
	}

	username := r.Form.Get("username")
	if username == "" {
		writeError(w, "username is required")
		return
	}

	// the lookup only serves the friendly duplicate message, the unique
	// index on username decides uniqueness below
	_, err := handler.repo.GetByUsername(ctx, username)
	if err == nil {
		writeError(w, "Username already exists")
		return
	}
	if !errors.Is(err, ErrUserNotFound) {
		log.Errorf("register user [%s], username lookup: %s", username, err)
		writeError(w, err.Error())
		return
	}

	addedUser, err := handler.repo.Add(ctx, User{
		UserID:   rand.IntN(userIDUpperBound),
		Username: username,
	})
	if errors.Is(err, ErrUsernameTaken) {
		// lost a registration race for the same username
		writeError(w, "Username already exists")
		return
	}
	if err != nil {
		log.Errorf("register user [%s]: %s", username, err)
		writeError(w, err.Error())
		return
	}

	handler.metrics.CounterUsersRegistered.Inc()

	userJson, err := json.Marshal(addedUser)
	if err != nil {
		log.Errorf("failed to marshal registered user: %s", err)
		writeError(w, err.Error())
		return
	}

	log.Debugf("new user registered: [%s] %d", addedUser.Username, addedUser.UserID)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *UsersHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.listUsers")
	defer span.End()

	users, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list users error: %s", err)
		writeError(w, err.Error())
		return
	}

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("marshal users error: %s", err)
		writeError(w, err.Error())
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}
