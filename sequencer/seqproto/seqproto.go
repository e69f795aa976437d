package seqproto

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pg-sharding/spqr-sequencer/pkg/models/sequences"
	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/pkg/statistics"
)

const (
	APIPrefix = "/rest-inner-api/v1"

	CodeSuccess = "0"
	CodeFail    = "-1"

	MessageSuccess       = "success"
	MessageInternalError = "internal error"

	RequestIDHeader = "X-Request-Id"
)

// Result is the response envelope of every API call. Message and Msg
// always carry the same text.
type Result struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Msg       string `json:"msg"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data"`
}

func Success(data any) *Result {
	return &Result{
		Code:    CodeSuccess,
		Message: MessageSuccess,
		Msg:     MessageSuccess,
		Data:    data,
	}
}

// Fail builds a failure envelope. Only domain errors keep their text,
// everything else is reported as an internal error.
func Fail(err error) *Result {
	res := &Result{
		Code:    CodeFail,
		Message: MessageInternalError,
		Msg:     MessageInternalError,
	}
	if !spqrerror.IsDomain(err) {
		return res
	}
	var se *spqrerror.SpqrError
	if errors.As(err, &se) {
		res.Message = se.Message()
		res.Msg = se.Message()
		res.ErrorCode = se.ErrorCode
	}
	return res
}

// StatusCode maps an error to the HTTP status of its response.
func StatusCode(err error) int {
	switch spqrerror.Code(err) {
	case spqrerror.SPQR_INVALID_REQUEST:
		return http.StatusBadRequest
	case spqrerror.SPQR_SEQUENCE_NOT_FOUND:
		return http.StatusNotFound
	case spqrerror.SPQR_SEQUENCE_EXISTS:
		return http.StatusConflict
	case spqrerror.SPQR_SEQUENCE_OVERFLOW, spqrerror.SPQR_SEQUENCE_CORRUPT:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Server exposes a sequences.SequenceMgr over HTTP.
type Server struct {
	mgr sequences.SequenceMgr
}

func NewServer(mgr sequences.SequenceMgr) *Server {
	return &Server{
		mgr: mgr,
	}
}

// Register installs the API routes into mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+APIPrefix+"/nextValue", s.nextValue)
	mux.HandleFunc("POST "+APIPrefix+"/nextValueList", s.nextValueList)
	mux.HandleFunc("GET "+APIPrefix+"/currentValue", s.currentValue)
	mux.HandleFunc("GET "+APIPrefix+"/sequences", s.listSequences)
	mux.HandleFunc("POST "+APIPrefix+"/sequences", s.createSequence)
	mux.HandleFunc("GET "+APIPrefix+"/statistics", s.statistics)
}

func (s *Server) nextValue(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(w, r)
	name, err := sequenceName(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info().Str("sequence", name).Msg("next value requested")

	v, err := s.mgr.NextVal(r.Context(), name)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Debug().Str("sequence", name).Int64("value", v).Msg("next value issued")
	writeResult(w, http.StatusOK, Success(v))
}

func (s *Server) nextValueList(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(w, r)
	name, err := sequenceName(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	count, err := positiveInt(r, "step")
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info().Str("sequence", name).Int("step", count).Msg("next value list requested")

	vals, err := s.mgr.NextValList(r.Context(), name, count)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Debug().Str("sequence", name).Int("count", len(vals)).Msg("next value list issued")
	writeResult(w, http.StatusOK, Success(vals))
}

func (s *Server) currentValue(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(w, r)
	name, err := sequenceName(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	v, err := s.mgr.CurrVal(r.Context(), name)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeResult(w, http.StatusOK, Success(v))
}

func (s *Server) listSequences(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(w, r)

	seqs, err := s.mgr.ListSequences(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeResult(w, http.StatusOK, Success(seqs))
}

func (s *Server) createSequence(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(w, r)
	name, err := sequenceName(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	start, err := int64Param(r, "start", 0)
	if err != nil {
		writeError(w, log, err)
		return
	}
	step, err := int64Param(r, "step", 1000)
	if err != nil {
		writeError(w, log, err)
		return
	}

	if err := s.mgr.CreateSequence(r.Context(), name, start, step); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info().Str("sequence", name).Msg("sequence created")
	writeResult(w, http.StatusOK, Success(nil))
}

func (s *Server) statistics(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, Success(statistics.Snapshot()))
}

func sequenceName(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.URL.Query().Get("sequenceName"))
	if name == "" {
		return "", spqrerror.New(spqrerror.SPQR_INVALID_REQUEST, "sequence name is empty")
	}
	return name, nil
}

func positiveInt(r *http.Request, param string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return 0, spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "%s is empty", param)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "%s must be a positive integer, got %q", param, raw)
	}
	return v, nil
}

func int64Param(r *http.Request, param string, def int64) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "%s must be an integer, got %q", param, raw)
	}
	return v, nil
}

func requestLogger(w http.ResponseWriter, r *http.Request) *zerolog.Logger {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	log := spqrlog.Zero.With().
		Str("request_id", id).
		Str("path", r.URL.Path).
		Logger()
	return &log
}

func writeError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	if spqrerror.IsDomain(err) {
		log.Debug().Err(err).Msg("request failed")
	} else {
		log.Error().Err(err).Msg("request failed")
	}
	writeResult(w, StatusCode(err), Fail(err))
}

func writeResult(w http.ResponseWriter, status int, res *Result) {
	if res.RequestID == "" {
		res.RequestID = w.Header().Get(RequestIDHeader)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		spqrlog.Zero.Error().Err(err).Msg("failed to write response")
	}
}
