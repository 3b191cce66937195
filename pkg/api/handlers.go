package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pgrind/pgrind/pkg/analyze"
	"github.com/pgrind/pgrind/pkg/trace"
)

const defaultHotspotLimit = 20

// Server holds the API server state.
type Server struct {
	sessions *SessionManager
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server.
func NewServer(sessions *SessionManager, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		sessions: sessions,
		config:   config,
		metrics:  metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleOpenTrace opens a trace file and returns a new session id along
// with the file's metadata.
func (s *Server) handleOpenTrace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req OpenTraceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		sendError(w, "Path is required", http.StatusBadRequest)
		return
	}

	format := s.config.DefaultFormat
	if req.Format != "" {
		parsed, err := trace.ParseCostFormat(req.Format)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = parsed
	}

	id, reader, err := s.sessions.Open(req.Path, format)
	if err != nil {
		s.metrics.RecordDecodeOperation("open", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordDecodeOperation("open", true, time.Since(start))
	s.metrics.SetOpenTraces(s.sessions.Len())

	info, err := s.traceInfo(id, reader)
	if err != nil {
		// The client never receives the id, so the session (and its file
		// handle) must not outlive this request.
		s.sessions.Close(id)
		s.metrics.SetOpenTraces(s.sessions.Len())
		sendDecodeError(w, err)
		return
	}
	sendSuccess(w, info)
}

func (s *Server) handleTraceInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reader, ok := s.sessions.Get(id)
	if !ok {
		sendError(w, "Unknown trace session", http.StatusNotFound)
		return
	}

	info, err := s.traceInfo(id, reader)
	if err != nil {
		sendDecodeError(w, err)
		return
	}
	sendSuccess(w, info)
}

func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reader, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		sendError(w, "Unknown trace session", http.StatusNotFound)
		return
	}

	nr, err := parseRecordNr(chi.URLParam(r, "nr"))
	if err != nil {
		sendError(w, "Invalid function number", http.StatusBadRequest)
		return
	}

	info, err := reader.FunctionInfo(nr)
	if err != nil {
		s.metrics.RecordDecodeOperation("function", false, time.Since(start))
		sendDecodeError(w, err)
		return
	}

	s.metrics.RecordDecodeOperation("function", true, time.Since(start))
	sendSuccess(w, newFunctionResponse(info))
}

func (s *Server) handleCalledFrom(w http.ResponseWriter, r *http.Request) {
	s.handleCallRecord(w, r, "called_from", func(reader *trace.Reader, functionNr, callNr uint32) (*trace.CallInfo, error) {
		return reader.CalledFromInfo(functionNr, callNr)
	})
}

func (s *Server) handleSubCall(w http.ResponseWriter, r *http.Request) {
	s.handleCallRecord(w, r, "sub_call", func(reader *trace.Reader, functionNr, callNr uint32) (*trace.CallInfo, error) {
		return reader.SubCallInfo(functionNr, callNr)
	})
}

func (s *Server) handleCallRecord(w http.ResponseWriter, r *http.Request, operation string,
	decode func(*trace.Reader, uint32, uint32) (*trace.CallInfo, error)) {
	start := time.Now()

	reader, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		sendError(w, "Unknown trace session", http.StatusNotFound)
		return
	}

	functionNr, err := parseRecordNr(chi.URLParam(r, "nr"))
	if err != nil {
		sendError(w, "Invalid function number", http.StatusBadRequest)
		return
	}
	callNr, err := parseRecordNr(chi.URLParam(r, "callNr"))
	if err != nil {
		sendError(w, "Invalid call number", http.StatusBadRequest)
		return
	}

	call, err := decode(reader, functionNr, callNr)
	if err != nil {
		s.metrics.RecordDecodeOperation(operation, false, time.Since(start))
		sendDecodeError(w, err)
		return
	}

	s.metrics.RecordDecodeOperation(operation, true, time.Since(start))
	sendSuccess(w, newCallResponse(call))
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reader, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		sendError(w, "Unknown trace session", http.StatusNotFound)
		return
	}

	by := analyze.BySelfCost
	if v := r.URL.Query().Get("by"); v != "" {
		parsed, err := analyze.ParseSortKey(v)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		by = parsed
	}

	limit := defaultHotspotLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			sendError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	summaries, err := analyze.Hotspots(reader, by, limit)
	if err != nil {
		s.metrics.RecordDecodeOperation("hotspots", false, time.Since(start))
		sendDecodeError(w, err)
		return
	}
	s.metrics.RecordDecodeOperation("hotspots", true, time.Since(start))

	rows := make([]HotspotResponse, len(summaries))
	for i, summary := range summaries {
		rows[i] = HotspotResponse{
			Nr:                     summary.Nr,
			Function:               summary.Function,
			File:                   summary.File,
			Line:                   summary.Line,
			SelfCost:               summary.SelfCost,
			InclusiveCost:          summary.InclusiveCost,
			InvocationCount:        summary.InvocationCount,
			FormattedSelfCost:      summary.FormattedSelfCost,
			FormattedInclusiveCost: summary.FormattedInclusiveCost,
		}
	}
	sendSuccess(w, rows)
}

func (s *Server) handleCloseTrace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.sessions.Close(id)
	if !found {
		sendError(w, "Unknown trace session", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.SetOpenTraces(s.sessions.Len())
	sendSuccess(w, map[string]string{"id": id, "status": "closed"})
}

func (s *Server) traceInfo(id string, reader *trace.Reader) (*TraceInfoResponse, error) {
	runs, err := reader.Runs()
	if err != nil {
		return nil, err
	}
	summary, err := reader.Summary()
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for _, key := range []string{"cmd", "creator", "events"} {
		value, err := reader.Header(key)
		if err != nil {
			return nil, err
		}
		headers[key] = value
	}

	return &TraceInfoResponse{
		ID:            id,
		FunctionCount: reader.FunctionCount(),
		TimeUnit:      reader.TimeUnit().String(),
		Runs:          runs,
		Summary:       summary,
		Headers:       headers,
	}, nil
}

func parseRecordNr(s string) (uint32, error) {
	nr, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(nr), nil
}
