package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"m3u-parser/work/logger"
	"m3u-parser/work/middleware"
	"m3u-parser/work/playlist"
	"m3u-parser/work/types"
)

const maxBodyBytes = 32 << 20

var errSourceOrContent = errors.New("exactly one of source or content is required")

// CreateRequest is the body of POST /playlists.
type CreateRequest struct {
	Source    string `json:"source"`
	Content   string `json:"content"`
	CheckLive *bool  `json:"check_live"`
}

// SessionResponse describes a session after creation.
type SessionResponse struct {
	ID      string `json:"id"`
	Source  string `json:"source,omitempty"`
	Streams int    `json:"streams"`
}

// FilterRequest is the body of POST /playlists/{id}/filter.
type FilterRequest struct {
	Key      string   `json:"key"`
	Filters  []string `json:"filters"`
	Retrieve *bool    `json:"retrieve"`
	Nested   bool     `json:"nested"`
	Splitter string   `json:"splitter"`
}

// SortRequest is the body of POST /playlists/{id}/sort.
type SortRequest struct {
	Key      string `json:"key"`
	Asc      *bool  `json:"asc"`
	Nested   bool   `json:"nested"`
	Splitter string `json:"splitter"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes registers the playlist API and /metrics on router.
func Routes(router *mux.Router, api *API) {
	router.HandleFunc("/playlists", middleware.CORS(HandleCreate(api))).Methods("POST", "OPTIONS")
	router.HandleFunc("/playlists/{id}/streams", middleware.CORS(middleware.Gzip(HandleStreams(api)))).Methods("GET", "OPTIONS")
	router.HandleFunc("/playlists/{id}/filter", middleware.CORS(HandleFilter(api))).Methods("POST", "OPTIONS")
	router.HandleFunc("/playlists/{id}/sort", middleware.CORS(HandleSort(api))).Methods("POST", "OPTIONS")
	router.HandleFunc("/playlists/{id}/random", middleware.CORS(middleware.Gzip(HandleRandom(api)))).Methods("GET", "OPTIONS")
	router.HandleFunc("/playlists/{id}/reset", middleware.CORS(HandleReset(api))).Methods("POST", "OPTIONS")
	router.HandleFunc("/playlists/{id}", middleware.CORS(HandleDelete(api))).Methods("DELETE", "OPTIONS")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func HandleCreate(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		checkLive := req.CheckLive == nil || *req.CheckLive
		s, err := api.CreateSession(r.Context(), "", req.Source, req.Content, checkLive)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, SessionResponse{
			ID:      s.ID,
			Source:  s.Parser.Source(),
			Streams: s.Parser.Len(),
		})
	}
}

// HandleStreams renders the working collection. ?format=m3u selects M3U
// output; ?indent=N controls JSON indentation.
func HandleStreams(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(api, w, r)
		if !ok {
			return
		}

		query := r.URL.Query()
		switch strings.ToLower(query.Get("format")) {
		case "", playlist.FormatJSON:
			indent := playlist.DefaultIndent
			if v := query.Get("indent"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					writeJSON(w, http.StatusBadRequest, errorResponse{Error: "indent must be an integer"})
					return
				}
				indent = n
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if err := playlist.EncodeJSON(w, s.Parser.Streams(), indent); err != nil {
				logger.Error("{handlers - HandleStreams} encoding session %s: %v", s.ID, err)
			}
		case playlist.FormatM3U:
			w.Header().Set("Content-Type", "audio/x-mpegurl")
			w.WriteHeader(http.StatusOK)
			if err := playlist.EncodeM3U(w, s.Parser.Streams()); err != nil {
				logger.Error("{handlers - HandleStreams} encoding session %s: %v", s.ID, err)
			}
		default:
			writeError(w, types.ErrUnsupportedFormat)
		}
	}
}

func HandleFilter(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(api, w, r)
		if !ok {
			return
		}
		var req FilterRequest
		if !decodeBody(w, r, &req) {
			return
		}

		retrieve := req.Retrieve == nil || *req.Retrieve
		if err := s.Parser.FilterBy(req.Key, req.Filters, retrieve, req.Nested, req.Splitter); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{ID: s.ID, Source: s.Parser.Source(), Streams: s.Parser.Len()})
	}
}

func HandleSort(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(api, w, r)
		if !ok {
			return
		}
		var req SortRequest
		if !decodeBody(w, r, &req) {
			return
		}

		asc := req.Asc == nil || *req.Asc
		if err := s.Parser.SortBy(req.Key, asc, req.Nested, req.Splitter); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{ID: s.ID, Source: s.Parser.Source(), Streams: s.Parser.Len()})
	}
}

// HandleRandom returns one record. ?shuffle=true shuffles the working
// collection first.
func HandleRandom(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(api, w, r)
		if !ok {
			return
		}

		shuffle, _ := strconv.ParseBool(r.URL.Query().Get("shuffle"))
		record, err := s.Parser.GetRandomStream(shuffle)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func HandleReset(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(api, w, r)
		if !ok {
			return
		}
		s.Parser.ResetOperations()
		writeJSON(w, http.StatusOK, SessionResponse{ID: s.ID, Source: s.Parser.Source(), Streams: s.Parser.Len()})
	}
}

func HandleDelete(api *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !api.DeleteSession(mux.Vars(r)["id"]) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "playlist not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func lookup(api *API, w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	s, ok := api.Session(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "playlist not found"})
	}
	return s, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var keyErr *types.InvalidKeyError
	var retrievalErr *types.RetrievalError
	switch {
	case errors.As(err, &keyErr),
		errors.Is(err, types.ErrInvalidPattern),
		errors.Is(err, types.ErrUnsupportedFormat),
		errors.Is(err, errSourceOrContent):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrEmptyCollection):
		return http.StatusNotFound
	case errors.As(err, &retrievalErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("{handlers - writeError} %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("{handlers - writeJSON} %v", err)
	}
}
