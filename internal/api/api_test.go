package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/complearner"
	"github.com/dekarrin/prins/internal/store"
	"github.com/stretchr/testify/assert"
)

func testModels() map[string]*automaton.NFA {
	auth := automaton.New()
	auth.AddState("0", false)
	auth.AddState("1", true)
	auth.Start = "0"
	auth.AddTransition("0", automaton.Symbol{TID: "login"}, "1")
	return map[string]*automaton.NFA{"auth": auth}
}

func newTestAPI(t *testing.T) *API {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &API{
		Runs:    s,
		Learner: &complearner.FakeLearner{Models: testModels()},
		Secret:  []byte("test-secret-at-least-32-bytes-long!!"),
	}
}

func authedRequest(t *testing.T, a *API, method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	tok, err := IssueToken("test-subject", a.Secret, time.Hour)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	return req
}

func Test_RequireAuth_rejectsMissingToken(t *testing.T) {
	a := newTestAPI(t)
	router := a.Router()

	req := httptest.NewRequest(http.MethodGet, PathPrefix+"/runs/anything", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_CreateAndGetRun(t *testing.T) {
	a := newTestAPI(t)
	router := a.Router()

	corpus := map[string][]map[string]any{
		"exec1": {
			{"component": "auth", "tid": "login"},
		},
	}
	reqBody := map[string]any{
		"corpus":       corpus,
		"workers":      2,
		"k_cl":         2,
		"det_strategy": "standard",
	}

	req := authedRequest(t, a, http.MethodPost, PathPrefix+"/runs", reqBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created submitRunResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	getReq := authedRequest(t, a, http.MethodGet, PathPrefix+"/runs/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code, getRec.Body.String())

	checkReq := authedRequest(t, a, http.MethodPost, PathPrefix+"/runs/"+created.ID+"/check", map[string]any{
		"trace": []map[string]any{{"TID": "login"}},
	})
	checkRec := httptest.NewRecorder()
	router.ServeHTTP(checkRec, checkReq)
	assert.Equal(t, http.StatusOK, checkRec.Code, checkRec.Body.String())

	var checked checkResponse
	assert.NoError(t, json.Unmarshal(checkRec.Body.Bytes(), &checked))
	assert.True(t, checked.Accepted)
}
