// Package api is the optional HTTP surface (spec §4.9): a small chi router
// exposing run submission, retrieval, and trace-checking endpoints behind
// JWT bearer-token auth.
//
// Grounded on server/api/api.go's EndpointFunc/httpEndpoint/parseJSON/
// panicTo500/logHttpResponse pattern (simplified: this repo has no user
// accounts, so the teacher's full result.Result/tunas.Service layering is
// not ported — see DESIGN.md) and server/token.go's JWT generate/validate
// shape (github.com/golang-jwt/jwt/v5, HS512, bearer header parsing).
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/complearner"
	"github.com/dekarrin/prins/internal/config"
	"github.com/dekarrin/prins/internal/determinize"
	"github.com/dekarrin/prins/internal/pipeline"
	"github.com/dekarrin/prins/internal/projector"
	"github.com/dekarrin/prins/internal/report"
	"github.com/dekarrin/prins/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const PathPrefix = "/api/v1"

// API holds the dependencies its endpoints need.
type API struct {
	Runs    store.RunRepository
	Learner complearner.Learner
	Secret  []byte
}

// Router builds the chi router exposing the three endpoints spec §4.9 lists.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Route(PathPrefix, func(r chi.Router) {
		r.Post("/runs", a.requireAuth(a.createRun))
		r.Get("/runs/{id}", a.requireAuth(a.getRun))
		r.Post("/runs/{id}/check", a.requireAuth(a.checkRun))
	})
	return r
}

type submitRunRequest struct {
	Corpus   projector.Corpus `json:"corpus"`
	Workers  int              `json:"workers"`
	KCL      int              `json:"k_cl"`
	Strategy string           `json:"det_strategy"`
}

type submitRunResponse struct {
	ID string `json:"id"`
}

func (a *API) createRun(w http.ResponseWriter, req *http.Request) {
	var body submitRunRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, req, http.StatusBadRequest, fmt.Errorf("malformed JSON body: %w", err))
		return
	}

	strategy, hybridK, err := resolveStrategy(body.Strategy)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, err)
		return
	}

	res, err := pipeline.Run(req.Context(), body.Corpus, a.Learner, pipeline.Options{
		W:        body.Workers,
		KCL:      body.KCL,
		Strategy: strategy,
		HybridK:  hybridK,
	})
	if err != nil {
		writeError(w, req, http.StatusInternalServerError, err)
		return
	}

	run, err := a.Runs.Create(req.Context(), store.Run{
		ProjectionTime:     res.Metrics.ProjectionTime,
		InferenceTime:      res.Metrics.InferenceTime,
		StitchingTime:      res.Metrics.StitchingTime,
		ComponentDiversity: res.Metrics.ComponentDiversity,
		System:             res.System,
		Determinized:       res.Determinized,
	})
	if err != nil {
		writeError(w, req, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, req, http.StatusCreated, submitRunResponse{ID: run.ID})
}

func (a *API) getRun(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	run, err := a.Runs.Get(req.Context(), id)
	if err != nil {
		writeError(w, req, http.StatusNotFound, err)
		return
	}

	body := map[string]any{
		"id":                  run.ID,
		"component_diversity": run.ComponentDiversity,
		"metrics_table":       report.MetricsTable(run.ProjectionTime, run.InferenceTime, run.StitchingTime, run.ComponentDiversity),
	}
	if run.Determinized != nil {
		body["automaton_table"] = report.AutomatonSummaryTable(run.Determinized)
	}
	writeJSON(w, req, http.StatusOK, body)
}

type checkRequest struct {
	Trace []automaton.Entry `json:"trace"`
}

type checkResponse struct {
	Accepted bool `json:"accepted"`
}

func (a *API) checkRun(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	run, err := a.Runs.Get(req.Context(), id)
	if err != nil {
		writeError(w, req, http.StatusNotFound, err)
		return
	}

	var body checkRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, req, http.StatusBadRequest, fmt.Errorf("malformed JSON body: %w", err))
		return
	}

	var accepted bool
	if run.Determinized != nil {
		accepted, err = run.Determinized.AcceptsDFA(body.Trace)
	} else {
		accepted, err = run.System.AcceptsNFA(body.Trace)
	}
	if err != nil {
		writeError(w, req, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, req, http.StatusOK, checkResponse{Accepted: accepted})
}

// requireAuth wraps handler with bearer-token validation against a.Secret
// (spec §4.9), grounded on server/token.go's getJWT + jwt.Parse shape.
// Unlike the teacher, there is no user database behind the token: the
// subject claim is opaque and only the signature/expiry are checked.
func (a *API) requireAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)

		tok, err := bearerToken(req)
		if err != nil {
			writeError(w, req, http.StatusUnauthorized, err)
			return
		}

		_, err = jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
			return a.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("prins"), jwt.WithLeeway(time.Minute))
		if err != nil {
			writeError(w, req, http.StatusUnauthorized, err)
			return
		}

		handler(w, req)
	}
}

// IssueToken mints a bearer token for subject, signed with secret (spec
// §4.9's auth, grounded on server's generateJWT).
func IssueToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"iss": "prins",
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

func bearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return strings.TrimSpace(parts[1]), nil
}

func writeJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR %s %s: failed to encode JSON response: %v", req.Method, req.URL.Path, err)
	}
	log.Printf("INFO  %s %s: HTTP-%d", req.Method, req.URL.Path, status)
}

func writeError(w http.ResponseWriter, req *http.Request, status int, err error) {
	log.Printf("ERROR %s %s: HTTP-%d %v", req.Method, req.URL.Path, status, err)
	writeJSON(w, req, status, map[string]string{"error": err.Error()})
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if p := recover(); p != nil {
		log.Printf("ERROR %s %s: panic: %v\n%s", req.Method, req.URL.Path, p, debug.Stack())
		http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
	}
}

// resolveStrategy maps a det_strategy string (spec §6) to the pipeline's
// strategy enum plus a hybrid-k value, if applicable.
func resolveStrategy(s string) (pipeline.DetStrategy, int, error) {
	name, k, err := config.ParseStrategy(s)
	if err != nil {
		return 0, 0, err
	}
	switch name {
	case "standard":
		return pipeline.DetStandard, 0, nil
	case "heuristic":
		return pipeline.DetHeuristic, 0, nil
	case "hybrid":
		if k < 0 {
			k = determinize.NoLimit
		}
		return pipeline.DetHybridK, k, nil
	default:
		return 0, 0, fmt.Errorf("api: unrecognized det_strategy %q", s)
	}
}
