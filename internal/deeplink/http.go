package deeplink

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// StateFunc returns the document served by GET /state.
type StateFunc func() any

// HTTPSource receives deep links over a local HTTP endpoint:
//
//	POST /deeplinks  {"uri": "..."}
//	GET  /open?uri=...
//	GET  /state
type HTTPSource struct {
	*ChannelSource
	router *mux.Router
	state  StateFunc
	logger *slog.Logger
}

type deliverRequest struct {
	URI string `json:"uri"`
}

type deliverResponse struct {
	Delivered bool `json:"delivered"`
	Receivers int  `json:"receivers"`
}

// NewHTTPSource creates the transport. state may be nil.
func NewHTTPSource(initial string, state StateFunc, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPSource{
		ChannelSource: NewChannelSource(initial),
		state:         state,
		logger:        logger.With("component", "deeplink_http"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/deeplinks", s.handleDeliver).Methods(http.MethodPost)
	r.HandleFunc("/open", s.handleOpen).Methods(http.MethodGet)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *HTTPSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPSource) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.deliver(w, req.URI)
}

func (s *HTTPSource) handleOpen(w http.ResponseWriter, r *http.Request) {
	s.deliver(w, r.URL.Query().Get("uri"))
}

func (s *HTTPSource) deliver(w http.ResponseWriter, uri string) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		http.Error(w, "missing uri", http.StatusBadRequest)
		return
	}
	n := s.Deliver(uri)
	s.logger.Debug("Deep link received", "receivers", n)
	writeJSON(w, http.StatusAccepted, deliverResponse{Delivered: n > 0, Receivers: n})
}

func (s *HTTPSource) handleState(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, "state not available", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
