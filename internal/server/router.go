package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"simulscore/internal/instlog"
	"simulscore/internal/runs"
	"simulscore/internal/score"
)

// ApiV1Router manages routes for API version 1: the incremental evaluation
// protocol spoken by remote agents (source out, hypotheses in) plus result
// retrieval. All endpoints follow a REST-like structure.
type ApiV1Router struct {
	// scorer — the evaluation scorer owning all instances.
	scorer *score.Scorer
	// reports — retained evaluation reports served per run id.
	reports *runs.Repository
	// instLog — execution-log writer; nil disables per-instance logging.
	instLog *instlog.Writer
}

// NewApiV1Router creates a new API v1 router.
func NewApiV1Router(scorer *score.Scorer, reports *runs.Repository, instLog *instlog.Writer) *ApiV1Router {
	return &ApiV1Router{
		scorer:  scorer,
		reports: reports,
		instLog: instLog,
	}
}

// Mux returns a configured *http.ServeMux with registered handlers.
// Registers the following routes:
// - GET /api/v1/corpus — corpus size
// - GET /api/v1/source/{id} — next source segment for an instance
// - POST /api/v1/hypothesis/{id} — hypothesis tokens for an instance
// - GET /api/v1/result — score the corpus and return the report
// - GET /api/v1/reports/{run} — retained report history of a run
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/corpus", ar.corpusHandler)
	mux.HandleFunc("GET /api/v1/source/{id}", ar.sourceHandler)
	mux.HandleFunc("POST /api/v1/hypothesis/{id}", ar.hypothesisHandler)
	mux.HandleFunc("GET /api/v1/result", ar.resultHandler)
	mux.HandleFunc("GET /api/v1/reports/{run}", ar.reportsHandler)

	return mux
}

// corpusHandler reports the number of evaluated sentences.
func (ar *ApiV1Router) corpusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{"num_sentences": ar.scorer.Len()})
}

// sourceHandler hands the next source segment of an instance to the agent.
// The instance id comes from the URL path, the segment size from the
// optional "segment_size" query parameter (default 1).
func (ar *ApiV1Router) sourceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		slog.Warn("Bad instance id", "id", r.PathValue("id"))
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	segmentSize := 1
	if raw := r.URL.Query().Get("segment_size"); raw != "" {
		segmentSize, err = strconv.Atoi(raw)
		if err != nil || segmentSize < 1 {
			slog.Warn("Bad segment size", "segment_size", raw)
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
	}

	seg, err := ar.scorer.SendSource(id, segmentSize)
	if err != nil {
		var unknown *score.UnknownInstanceError
		if errors.As(err, &unknown) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		slog.Warn("Source delivery failed", "id", id, "error", err)
		w.WriteHeader(http.StatusConflict)
		return
	}

	writeJSON(w, seg)
}

// hypothesisHandler receives hypothesis tokens for an instance.
// Expects a JSON body of the form {"tokens": ["...", ...]}. When the tokens
// close the hypothesis, the finished instance is appended to the execution
// log (if enabled).
func (ar *ApiV1Router) hypothesisHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		slog.Warn("Bad instance id", "id", r.PathValue("id"))
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("Empty hypothesis request body", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	defer r.Body.Close()

	var payload struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("Unable to unmarshal hypothesis request body", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	wasFinished, err := ar.scorer.Finished(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := ar.scorer.RecvHypothesis(id, payload.Tokens); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if finished, _ := ar.scorer.Finished(id); finished && !wasFinished && ar.instLog != nil {
		if rec, err := ar.scorer.Record(id); err == nil {
			ar.instLog.Append(rec)
		}
	}

	w.WriteHeader(http.StatusOK)
}

// resultHandler scores the corpus and returns the combined report, retaining
// it under the run id from the optional "run" query parameter.
func (ar *ApiV1Router) resultHandler(w http.ResponseWriter, r *http.Request) {
	report, err := ar.scorer.Score(r.Context())
	if err != nil {
		slog.Warn("Scoring failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	run := r.URL.Query().Get("run")
	if run == "" {
		run = "default"
	}
	ar.reports.Append(run, runs.Entry{At: time.Now(), Report: report})

	writeJSON(w, report)
}

// reportsHandler returns the retained report history of a run.
// If the run id is unknown — returns status 404.
func (ar *ApiV1Router) reportsHandler(w http.ResponseWriter, r *http.Request) {
	run := r.PathValue("run")
	entries, found := ar.reports.Get(run)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
