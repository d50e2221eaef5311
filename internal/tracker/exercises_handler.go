package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/metrics"
	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/tracing"
	"github.com/MichaelJHerbert/exercise-tracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=tracker_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	List(ctx context.Context, params ListParams) ([]Exercise, error)
}

// userSource resolves users by their public user id, usually the users repo
// behind the redis username cache.
type userSource interface {
	GetByUserID(ctx context.Context, userID int) (*User, error)
}

type AddExerciseResponse struct {
	UserID      int    `json:"userId"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type LogResponse struct {
	Username     string     `json:"username"`
	UserID       int        `json:"userId"`
	DateFrom     string     `json:"dateFrom,omitempty"`
	DateTo       string     `json:"dateTo,omitempty"`
	Count        int        `json:"count"`
	ExerciseLogs []LogEntry `json:"exerciseLogs"`
}

type ExercisesHandler struct {
	repo    exercisesRepo
	users   userSource
	metrics *metrics.Manager
}

func NewExercisesHandler(
	repo exercisesRepo,
	users userSource,
	metricsManager *metrics.Manager,
) *ExercisesHandler {
	return &ExercisesHandler{
		repo:    repo,
		users:   users,
		metrics: metricsManager,
	}
}

func (handler *ExercisesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.addExercise")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("add exercise failed, parse form error: %s", err)
		writeError(w, err.Error())
		return
	}

	// validation is a sequence of guard clauses, each aborts the request on
	// failure before anything is persisted
	date := time.Now()
	if dateStr := r.Form.Get("date"); dateStr != "" {
		parsedDate, err := ParseDate(dateStr)
		if err != nil {
			writeError(w, "Please enter valid date in format [YYYY-MM-DD]")
			return
		}
		date = parsedDate
	}

	duration, err := strconv.Atoi(r.Form.Get("duration"))
	if err != nil {
		writeError(w, "Please enter numeric duration value in minutes")
		return
	}

	userID, err := strconv.Atoi(r.Form.Get("userId"))
	if err != nil {
		writeError(w, "User does not exist")
		return
	}

	user, err := handler.users.GetByUserID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		writeError(w, "User does not exist")
		return
	}
	if err != nil {
		log.Errorf("add exercise, user %d lookup: %s", userID, err)
		writeError(w, err.Error())
		return
	}

	addedExercise, err := handler.repo.Add(ctx, Exercise{
		UserID:      userID,
		Description: r.Form.Get("description"),
		Duration:    duration,
		Date:        date,
	})
	if err != nil {
		log.Errorf("failed to add exercise for user %d: %s", userID, err)
		writeError(w, err.Error())
		return
	}

	handler.metrics.CounterExercisesAdded.Inc()

	respJson, err := json.Marshal(AddExerciseResponse{
		UserID:      addedExercise.UserID,
		Username:    user.Username,
		Description: addedExercise.Description,
		Duration:    addedExercise.Duration,
		Date:        DisplayDate(addedExercise.Date),
	})
	if err != nil {
		log.Errorf("failed to marshal added exercise: %s", err)
		writeError(w, err.Error())
		return
	}

	log.Debugf("new exercise added for user %d: %s", userID, respJson)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *ExercisesHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.log")
	defer span.End()

	query := r.URL.Query()

	userID, err := strconv.Atoi(query.Get("userId"))
	if err != nil {
		writeError(w, "User does not exist")
		return
	}

	filter, err := ParseLogFilter(query.Get("from"), query.Get("to"))
	if err != nil {
		writeError(w, "Please enter valid date")
		return
	}

	// an unusable limit behaves like no limit at all
	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	user, err := handler.users.GetByUserID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		writeError(w, "User does not exist")
		return
	}
	if err != nil {
		log.Errorf("exercise log, user %d lookup: %s", userID, err)
		writeError(w, err.Error())
		return
	}

	exercises, err := handler.repo.List(ctx, ListParams{
		UserID: userID,
		From:   filter.From,
		To:     filter.To,
		Limit:  limit,
	})
	if err != nil {
		log.Errorf("exercise log for user %d: %s", userID, err)
		writeError(w, err.Error())
		return
	}

	exerciseLogs := make([]LogEntry, 0, len(exercises))
	for _, exercise := range exercises {
		exerciseLogs = append(exerciseLogs, LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        DisplayDate(exercise.Date),
		})
	}

	logResponse := LogResponse{
		Username:     user.Username,
		UserID:       userID,
		Count:        len(exerciseLogs),
		ExerciseLogs: exerciseLogs,
	}
	if filter.From != nil {
		logResponse.DateFrom = DisplayDate(*filter.From)
		// the legacy contract reports today here, not the last exercise date
		logResponse.DateTo = DisplayDate(time.Now())
	}
	if filter.To != nil {
		logResponse.DateTo = DisplayDate(*filter.To)
	}

	handler.metrics.CounterLogQueries.Inc()

	respJson, err := json.Marshal(logResponse)
	if err != nil {
		log.Errorf("failed to marshal exercise log: %s", err)
		writeError(w, err.Error())
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
