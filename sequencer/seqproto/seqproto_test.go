package seqproto_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mock_sequences "github.com/pg-sharding/spqr-sequencer/pkg/mock/sequences"
	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
	"github.com/pg-sharding/spqr-sequencer/qdb"
	"github.com/pg-sharding/spqr-sequencer/sequencer"
	"github.com/pg-sharding/spqr-sequencer/sequencer/seqproto"
	"github.com/pg-sharding/spqr-sequencer/sequencer/xqdbseq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type response struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Msg       string          `json:"msg"`
	ErrorCode string          `json:"error_code"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func newHandler(srv *seqproto.Server) http.Handler {
	mux := http.NewServeMux()
	srv.Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, *response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	res := &response{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))
	return rec, res
}

func TestNextValue(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)

	mgr := mock_sequences.NewMockSequenceMgr(ctrl)
	mgr.EXPECT().NextVal(gomock.Any(), "orders").Return(int64(101), nil)

	rec, res := do(t, newHandler(seqproto.NewServer(mgr)), http.MethodPost, "/rest-inner-api/v1/nextValue?sequenceName=%20orders%20")

	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("application/json", rec.Header().Get("Content-Type"))
	assert.Equal(seqproto.CodeSuccess, res.Code)
	assert.Equal(res.Message, res.Msg)
	assert.JSONEq("101", string(res.Data))
	assert.NotEmpty(res.RequestID)
	assert.Equal(res.RequestID, rec.Header().Get(seqproto.RequestIDHeader))
}

func TestNextValueKeepsRequestID(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)

	mgr := mock_sequences.NewMockSequenceMgr(ctrl)
	mgr.EXPECT().NextVal(gomock.Any(), "orders").Return(int64(1), nil)

	req := httptest.NewRequest(http.MethodPost, "/rest-inner-api/v1/nextValue?sequenceName=orders", nil)
	req.Header.Set(seqproto.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	newHandler(seqproto.NewServer(mgr)).ServeHTTP(rec, req)

	assert.Equal("req-42", rec.Header().Get(seqproto.RequestIDHeader))
}

func TestNextValueList(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)

	mgr := mock_sequences.NewMockSequenceMgr(ctrl)
	mgr.EXPECT().NextValList(gomock.Any(), "orders", 3).Return([]int64{1, 2, 3}, nil)

	rec, res := do(t, newHandler(seqproto.NewServer(mgr)), http.MethodPost, "/rest-inner-api/v1/nextValueList?sequenceName=orders&step=3")

	assert.Equal(http.StatusOK, rec.Code)
	assert.JSONEq("[1,2,3]", string(res.Data))
}

func TestInputErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHandler(seqproto.NewServer(mock_sequences.NewMockSequenceMgr(ctrl)))

	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "missing name", method: http.MethodPost, target: "/rest-inner-api/v1/nextValue"},
		{name: "blank name", method: http.MethodPost, target: "/rest-inner-api/v1/nextValue?sequenceName=%20%20"},
		{name: "list blank name", method: http.MethodPost, target: "/rest-inner-api/v1/nextValueList?sequenceName=&step=3"},
		{name: "list missing step", method: http.MethodPost, target: "/rest-inner-api/v1/nextValueList?sequenceName=a"},
		{name: "list zero step", method: http.MethodPost, target: "/rest-inner-api/v1/nextValueList?sequenceName=a&step=0"},
		{name: "list negative step", method: http.MethodPost, target: "/rest-inner-api/v1/nextValueList?sequenceName=a&step=-2"},
		{name: "list bad step", method: http.MethodPost, target: "/rest-inner-api/v1/nextValueList?sequenceName=a&step=ten"},
		{name: "create bad start", method: http.MethodPost, target: "/rest-inner-api/v1/sequences?sequenceName=a&start=x"},
		{name: "current blank name", method: http.MethodGet, target: "/rest-inner-api/v1/currentValue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, res := do(t, h, tt.method, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, seqproto.CodeFail, res.Code)
			assert.Equal(t, spqrerror.SPQR_INVALID_REQUEST, res.ErrorCode)
			assert.NotEqual(t, seqproto.MessageInternalError, res.Message)
			assert.Equal(t, "null", string(res.Data))
		})
	}
}

func TestErrorMasking(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     spqrerror.Newf(spqrerror.SPQR_SEQUENCE_NOT_FOUND, "sequence %q not found", "orders"),
			status:  http.StatusNotFound,
			code:    spqrerror.SPQR_SEQUENCE_NOT_FOUND,
			message: `sequence "orders" not found`,
		},
		{
			name:    "overflow",
			err:     spqrerror.New(spqrerror.SPQR_SEQUENCE_OVERFLOW, "sequence overflows"),
			status:  http.StatusUnprocessableEntity,
			code:    spqrerror.SPQR_SEQUENCE_OVERFLOW,
			message: "sequence overflows",
		},
		{
			name:    "corrupt",
			err:     spqrerror.New(spqrerror.SPQR_SEQUENCE_CORRUPT, "negative value"),
			status:  http.StatusUnprocessableEntity,
			code:    spqrerror.SPQR_SEQUENCE_CORRUPT,
			message: "negative value",
		},
		{
			name:    "too many retries",
			err:     spqrerror.New(spqrerror.SPQR_SEQUENCE_RETRIES, "failed after 150 attempts"),
			status:  http.StatusInternalServerError,
			message: seqproto.MessageInternalError,
		},
		{
			name:    "storage",
			err:     spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, errors.New("dial tcp 10.0.0.1:5432: connection refused"), "failed to read sequence row"),
			status:  http.StatusInternalServerError,
			message: seqproto.MessageInternalError,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: seqproto.MessageInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mgr := mock_sequences.NewMockSequenceMgr(ctrl)
			mgr.EXPECT().NextVal(gomock.Any(), "orders").Return(int64(0), tt.err)

			rec, res := do(t, newHandler(seqproto.NewServer(mgr)), http.MethodPost, "/rest-inner-api/v1/nextValue?sequenceName=orders")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, seqproto.CodeFail, res.Code)
			assert.Equal(t, tt.code, res.ErrorCode)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.message, res.Msg)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHandler(seqproto.NewServer(mock_sequences.NewMockSequenceMgr(ctrl)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rest-inner-api/v1/nextValue?sequenceName=a", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)

	db, err := qdb.NewMemQDB("")
	assert.NoError(err)
	mgr := sequencer.NewManager(db, xqdbseq.NewRangeStore(db, 150, time.Millisecond), 4, 1000)
	h := newHandler(seqproto.NewServer(mgr))

	rec, _ := do(t, h, http.MethodPost, "/rest-inner-api/v1/sequences?sequenceName=X&start=0&step=100")
	assert.Equal(http.StatusOK, rec.Code)

	rec, res := do(t, h, http.MethodPost, "/rest-inner-api/v1/sequences?sequenceName=X")
	assert.Equal(http.StatusConflict, rec.Code)
	assert.Equal(spqrerror.SPQR_SEQUENCE_EXISTS, res.ErrorCode)

	_, res = do(t, h, http.MethodPost, "/rest-inner-api/v1/nextValueList?sequenceName=X&step=25")
	var vals []int64
	assert.NoError(json.Unmarshal(res.Data, &vals))
	assert.Len(vals, 25)
	for i, v := range vals {
		assert.Equal(int64(i+1), v)
	}

	rec, res = do(t, h, http.MethodPost, "/rest-inner-api/v1/nextValueList?sequenceName=X&step=1000000000000000000")
	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Equal(spqrerror.SPQR_INVALID_REQUEST, res.ErrorCode)

	_, res = do(t, h, http.MethodPost, "/rest-inner-api/v1/nextValue?sequenceName=X")
	assert.JSONEq("26", string(res.Data))

	_, res = do(t, h, http.MethodGet, "/rest-inner-api/v1/currentValue?sequenceName=X")
	assert.JSONEq("100", string(res.Data))

	_, res = do(t, h, http.MethodGet, "/rest-inner-api/v1/sequences")
	var seqs []map[string]any
	assert.NoError(json.Unmarshal(res.Data, &seqs))
	assert.Len(seqs, 1)
	assert.Equal("X", seqs[0]["name"])

	rec, res = do(t, h, http.MethodPost, "/rest-inner-api/v1/nextValue?sequenceName=Y")
	assert.Equal(http.StatusNotFound, rec.Code)
	assert.Equal(spqrerror.SPQR_SEQUENCE_NOT_FOUND, res.ErrorCode)

	rec, _ = do(t, h, http.MethodGet, "/rest-inner-api/v1/statistics")
	assert.Equal(http.StatusOK, rec.Code)

	assert.NoError(db.Close())
}
