/*
Copyright © 2024 the TwinMAP authors.
This file is part of TwinMAP.

TwinMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TwinMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TwinMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package server exposes the post-processing pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/deflect"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/extremum"
	"github.com/spatialmodel/twinmap/pipeline"
	"github.com/spatialmodel/twinmap/selection"
	"golang.org/x/time/rate"
)

// MaxRequestSize is the largest accepted request body in bytes.
const MaxRequestSize = 1 << 20

// Server handles post-processing requests.
type Server struct {
	Pipeline *pipeline.Pipeline
	Log      logrus.FieldLogger
	Limiter  *IPRateLimiter
}

// New returns a server running requests through p, allowing each
// client limit requests per second in bursts of burst.
func New(p *pipeline.Pipeline, log logrus.FieldLogger, limit rate.Limit, burst int) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Pipeline: p, Log: log, Limiter: NewIPRateLimiter(limit, burst)}
}

// Router returns the routes of s.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.Limiter.Middleware)
	r.HandleFunc("/load-config", s.loadConfig).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/load-data", s.loadData).Methods(http.MethodPost)
	r.HandleFunc("/export-3d", s.export(s.Pipeline.Export3D)).Methods(http.MethodPost)
	r.HandleFunc("/export-json", s.export(s.Pipeline.ExportJSON)).Methods(http.MethodPost)
	r.HandleFunc("/export-field", s.export(s.Pipeline.ExportField)).Methods(http.MethodPost)
	r.HandleFunc("/preview", s.preview).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves s on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

type validResponse struct {
	Valid     bool   `json:"valid"`
	Operation string `json:"operation"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, stage string) {
	writeJSON(w, status, errorResponse{Error: msg, Stage: stage})
}

// Status returns the HTTP status code for a pipeline error.
func Status(err error) int {
	var (
		verr *config.ValidationError
		serr *selection.SelectionNotFoundError
		oerr *derive.InvalidOperationError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &serr), errors.As(err, &oerr),
		errors.Is(err, deflect.ErrDegenerateField), errors.Is(err, extremum.ErrEmptyTable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var stage string
	var se *pipeline.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	status := Status(err)
	s.Log.WithFields(logrus.Fields{
		"path": r.URL.Path, "status": status, "stage": stage,
	}).WithError(err).Warn("request failed")
	writeError(w, status, err.Error(), stage)
}

// decode reads a request document from the body of r, as TOML if the
// content type says so and as JSON otherwise.
func decode(w http.ResponseWriter, r *http.Request) (*config.Request, error) {
	format := "json"
	if t, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && t == "application/toml" {
		format = "toml"
	}
	return config.ReadRequest(http.MaxBytesReader(w, r.Body, MaxRequestSize), format)
}

func (s *Server) loadConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Pipeline.Config)
}

func (s *Server) loadData(w http.ResponseWriter, r *http.Request) {
	req, err := decode(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	op, err := s.Pipeline.Validate(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validResponse{Valid: true, Operation: op.Column()})
}

type exportFunc func(context.Context, *config.Request) (*pipeline.Outcome, error)

func (s *Server) export(f exportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		o, err := f(r.Context(), req)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	req, err := decode(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	b, err := s.Pipeline.Preview(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(b)
}
