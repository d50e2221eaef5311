package tracker

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/MichaelJHerbert/exercise-tracker/pkg"
)

// ErrorResponse is the in-band error shape of the legacy wire contract:
// logical failures come back as 200 OK with an Error field, callers inspect
// the body, not the status code.
type ErrorResponse struct {
	Error string `json:"Error"`
}

func writeError(w http.ResponseWriter, message string) {
	errJson, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		log.Errorf("failed to marshal error response [%s]: %s", message, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, errJson)
}
