package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/handler/http/middleware"
	"github.com/ydm-hris/attendance-gateway-go/internal/handler/http/response"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/jwt"
)

const sseKeepalive = 30 * time.Second

type AttendanceHandler interface {
	GetSheet(w http.ResponseWriter, r *http.Request)
	UpdateField(w http.ResponseWriter, r *http.Request)
	MarkForDeletion(w http.ResponseWriter, r *http.Request)
	BulkUpdate(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	Discard(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	sessions          middleware.SessionResolver
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, sessions middleware.SessionResolver) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		sessions:          sessions,
	}
}

// GetSheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSheet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	view, err := h.attendanceService.GetSheet(r.Context(), sessionID, chi.URLParam(r, "date"), sheetQueryFromRequest(r))
	if err != nil {
		slog.Error("GetSheet service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, view, &response.Meta{TotalItems: len(view.Records)})
}

// UpdateField implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateField(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	var req attendance.UpdateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	record, err := h.attendanceService.UpdateField(r.Context(), sessionID, chi.URLParam(r, "date"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// MarkForDeletion implements AttendanceHandler. The attendance id may come
// from the body or the attendance_id query parameter.
func (h *attendanceHandlerImpl) MarkForDeletion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	var req attendance.MarkDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.AttendanceID == "" {
		req.AttendanceID = r.URL.Query().Get("attendance_id")
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	record, err := h.attendanceService.MarkForDeletion(r.Context(), sessionID, chi.URLParam(r, "date"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Record marked for deletion", record)
}

// BulkUpdate implements AttendanceHandler.
func (h *attendanceHandlerImpl) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	var req attendance.BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Filters = normalizeFilters(req.Filters)

	result, err := h.attendanceService.ApplyBulkUpdate(r.Context(), sessionID, chi.URLParam(r, "date"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Updated %d records", result.Updated), result)
}

// Save implements AttendanceHandler.
func (h *attendanceHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.SaveChanges(r.Context(), sessionID, chi.URLParam(r, "date"))
	if err != nil {
		slog.Error("SaveChanges service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if result.NoChanges {
		response.SuccessWithMessage(w, "No changes to save", result)
		return
	}
	response.SuccessWithMessage(w, "Attendance saved successfully", result)
}

// Discard implements AttendanceHandler.
func (h *attendanceHandlerImpl) Discard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	view, err := h.attendanceService.DiscardChanges(r.Context(), sessionID, chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Changes discarded", view)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.attendanceService.ExportSheet(r.Context(), sessionID, chi.URLParam(r, "date"), sheetQueryFromRequest(r), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file)
}

// Events streams save notifications for a date. EventSource cannot send
// headers, so the short-lived SSE token comes in the query string.
func (h *attendanceHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	if _, err := h.sessions.Resolve(r.Context(), sessionID); err != nil {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}

	date, err := attendance.NormalizeDate(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.attendanceService.Subscribe(date)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"date\":%q}\n\n", date)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode SSE event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func sessionIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	return session.ID, true
}

func sheetQueryFromRequest(r *http.Request) attendance.SheetQuery {
	q := r.URL.Query()
	includeDeleted, _ := strconv.ParseBool(q.Get("include_deleted"))
	return attendance.SheetQuery{
		Filters: normalizeFilters(attendance.Filters{
			Project:     q.Get("project"),
			Location:    q.Get("location"),
			PaymentType: q.Get("payment_type"),
			Sponsorship: q.Get("sponsorship"),
		}),
		IncludeDeleted: includeDeleted,
	}
}

// normalizeFilters clears the "All" option of the page's dropdowns.
func normalizeFilters(f attendance.Filters) attendance.Filters {
	return attendance.Filters{
		Project:     filterParam(f.Project),
		Location:    filterParam(f.Location),
		PaymentType: filterParam(f.PaymentType),
		Sponsorship: filterParam(f.Sponsorship),
	}
}

func filterParam(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
