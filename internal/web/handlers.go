package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/JonMunkholm/depotbot/internal/web/templates"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Version        string            `json:"version"`
	Uptime         string            `json:"uptime"`
	Scheduler      SchedulerStatus   `json:"scheduler"`
	LastCycle      *core.CycleReport `json:"last_cycle"`
	ActiveCommands int               `json:"active_commands"`
}

// SchedulerStatus describes the report scheduler.
type SchedulerStatus struct {
	Started  bool   `json:"started"`
	State    string `json:"state"`
	Interval string `json:"interval"`
	Cycles   int64  `json:"cycles"`
}

// RefreshResponse is the body of POST /api/refresh.
type RefreshResponse struct {
	Status  core.Status `json:"status"`
	Records int         `json:"records"`
	Pages   int         `json:"pages"`
	Total   string      `json:"total"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version: s.deps.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	}

	if sch := s.deps.Scheduler; sch != nil {
		resp.Scheduler = SchedulerStatus{
			Started:  sch.Started(),
			State:    sch.State().String(),
			Interval: sch.Interval().String(),
			Cycles:   sch.Cycles(),
		}
		if last, ok := sch.LastCycle(); ok {
			resp.LastCycle = &last
		}
	}
	if s.deps.Commands != nil {
		resp.ActiveCommands = s.deps.Commands.Active()
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// handleRefresh posts the report to the configured channel right away, with
// the same notices a chat command would get.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	dest, err := s.deps.Resolver.Resolve(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}

	res := s.deps.Commands.Handle(ctx, dest)

	resp := RefreshResponse{
		Status:  res.Status,
		Records: res.Records,
		Pages:   res.Pages,
		Total:   res.Total.StringFixed(2),
	}
	if res.Err != nil {
		msg := core.MapError(res.Err)
		resp.Code = msg.Code
		resp.Message = msg.Message
	}
	writeJSON(w, r, statusCodeFor(res), resp)
}

// handlePreview renders the report as HTML without posting it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Builder.Build(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Preview(s.deps.Title, report.Pages).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render preview", "error", err)
	}
}
