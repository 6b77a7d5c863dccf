package restserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/chart"
	"github.com/chrissnell/climatewatch/internal/dashboard"
	"github.com/chrissnell/climatewatch/internal/export"
	"github.com/chrissnell/climatewatch/internal/log"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/pkg/responseformat"
	"github.com/gorilla/mux"
)

var (
	// errBadRequest marks malformed path or query parameters
	errBadRequest = errors.New("bad request")
	// errNotFound marks unknown resources other than rooms
	errNotFound = errors.New("not found")
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetRooms lists the supported rooms
func (h *Handlers) GetRooms(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, http.StatusOK, transformRooms(h.controller.service))
}

// GetStatus reports upstream connectivity
func (h *Handlers) GetStatus(w http.ResponseWriter, req *http.Request) {
	resp := StatusResponse{
		Upstream: "ok",
		Today:    h.controller.service.Today().String(),
	}
	status := http.StatusOK

	if h.controller.upstream == nil {
		resp.Upstream = "unconfigured"
	} else {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()
		if err := h.controller.upstream.Ping(ctx); err != nil {
			resp.Upstream = "unreachable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	h.formatter.WriteResponse(w, req, status, resp)
}

// PostRefresh drops every memoized result so the next query re-reads its days
func (h *Handlers) PostRefresh(w http.ResponseWriter, req *http.Request) {
	h.controller.service.Invalidate()
	h.formatter.WriteResponse(w, req, http.StatusOK, RefreshResponse{Status: "invalidated"})
}

// GetData returns the normalized table, health and title for a day or range
func (h *Handlers) GetData(w http.ResponseWriter, req *http.Request) {
	res, room, _, ok := h.query(w, req)
	if !ok {
		return
	}
	h.formatter.WriteResponse(w, req, http.StatusOK, transformResult(res, room))
}

// GetExport returns the room's export columns as an xlsx download
func (h *Handlers) GetExport(w http.ResponseWriter, req *http.Request) {
	res, room, q, ok := h.query(w, req)
	if !ok {
		return
	}

	data, err := export.Workbook(res.Frame, room.ExportColumns())
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName(room, q)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// GetChart renders one of the room's charts as PNG
func (h *Handlers) GetChart(w http.ResponseWriter, req *http.Request) {
	room, err := roomParam(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	layout, found := room.Chart(mux.Vars(req)["chart"])
	if !found {
		h.writeError(w, req, fmt.Errorf("%w: no chart %q for %s", errNotFound, mux.Vars(req)["chart"], room))
		return
	}

	res, _, _, ok := h.query(w, req)
	if !ok {
		return
	}

	size := chart.DefaultSize
	if v := req.URL.Query().Get("width"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size.Width = n
		}
	}
	if v := req.URL.Query().Get("height"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size.Height = n
		}
	}

	img, err := chart.Render(layout, res.Frame, res.Title, size)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

// query parses the request and runs it through the dashboard service. On failure the
// error response has already been written.
func (h *Handlers) query(w http.ResponseWriter, req *http.Request) (*dashboard.Result, rooms.Room, retrieval.Query, bool) {
	q, err := queryParams(req)
	if err != nil {
		h.writeError(w, req, err)
		return nil, rooms.Unsupported, q, false
	}
	room, err := roomParam(req)
	if err != nil {
		h.writeError(w, req, err)
		return nil, room, q, false
	}

	redownload := false
	if v := req.URL.Query().Get("redownload"); v != "" {
		redownload, err = strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, req, fmt.Errorf("%w: invalid redownload value %q", errBadRequest, v))
			return nil, room, q, false
		}
	}

	res, err := h.controller.service.GetData(req.Context(), q, room, redownload)
	if err != nil {
		h.writeError(w, req, err)
		return nil, room, q, false
	}
	return res, room, q, true
}

// queryParams reads {day} or {start}/{end} from the path
func queryParams(req *http.Request) (retrieval.Query, error) {
	vars := mux.Vars(req)
	if day, ok := vars["day"]; ok {
		d, err := calendar.Parse(day)
		if err != nil {
			return retrieval.Query{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return retrieval.DayQuery(d), nil
	}

	start, err := calendar.Parse(vars["start"])
	if err != nil {
		return retrieval.Query{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	end, err := calendar.Parse(vars["end"])
	if err != nil {
		return retrieval.Query{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return retrieval.RangeQuery(start, end), nil
}

// roomParam reads the room query parameter, defaulting to the first supported room
func roomParam(req *http.Request) (rooms.Room, error) {
	name := req.URL.Query().Get("room")
	if name == "" {
		return rooms.All()[0], nil
	}
	return rooms.Parse(name)
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, dashboard.ErrFutureDay),
		errors.Is(err, dashboard.ErrEmptyRange),
		errors.Is(err, dashboard.ErrFutureEnd):
		return http.StatusBadRequest
	case errors.Is(err, rooms.ErrUnknownRoom),
		errors.Is(err, errNotFound),
		errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, retrieval.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	requestID := req.Header.Get(log.RequestIDHeader)
	if status >= http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed", "path", req.URL.Path, "request_id", requestID, "error", err)
	}
	h.formatter.WriteError(w, req, status, err.Error(), requestID)
}
