package web

// errors.go keeps error responses consistent across handlers.
//
// The technical error is logged with the request id; the client only sees
// the mapped user message and its code:
//  1. Handler calls respondError(w, r, err, status)
//  2. core.MapError picks the message and code
//  3. The error is logged with request id and code
//  4. JSON is written for /api routes, an HTML alert otherwise

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/JonMunkholm/depotbot/internal/web/templates"
)

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// statusCodeFor maps a pipeline status to an HTTP status.
func statusCodeFor(res core.Result) int {
	switch res.Status {
	case core.StatusOK, core.StatusNoData:
		return http.StatusOK
	case core.StatusFetchFailed, core.StatusDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
