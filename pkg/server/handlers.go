package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/reactive"
	"github.com/vango-dev/shirtform/pkg/render"
	"github.com/vango-dev/shirtform/pkg/vdom"
	"github.com/vango-dev/shirtform/pkg/view"
)

// ValidateResponse is the body of POST /api/validate.
type ValidateResponse struct {
	Valid  bool        `json:"valid"`
	Errors form.Errors `json:"errors"`
}

// CatalogResponse is the body of GET /api/catalog.
type CatalogResponse struct {
	Animals []catalog.Animal `json:"animals"`
	Sizes   []catalog.Size   `json:"sizes"`
}

// initialState returns the state of a freshly mounted controller.
func (s *Server) initialState() (form.State, error) {
	defer reactive.ReleaseGoroutine()

	ctl := form.NewController(s.schema, form.WithCatalog(s.catalog), form.WithLogger(s.logger))
	if err := ctl.Mount(); err != nil {
		return form.State{}, err
	}
	defer ctl.Dispose()
	return ctl.Snapshot(), nil
}

// handlePage renders the form at its mount state, with the live client.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	state, err := s.initialState()
	if err != nil {
		s.logger.Error("mount failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, view.Page(state, s.catalog, view.PageOptions{Live: true}))
}

// handleSubmitPage is the form post used when the client script is not
// running. It re-renders the form with every field validated.
func (s *Server) handleSubmitPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxMessageBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	values := form.Values{
		FullName:  r.PostForm.Get(string(form.FieldFullName)),
		ShirtSize: r.PostForm.Get(string(form.FieldShirtSize)),
		Animals:   []string{},
	}
	for _, id := range s.catalog.IDs() {
		if r.PostForm.Has(id) {
			values.Animals = append(values.Animals, id)
		}
	}

	errs := s.schema.ValidateAll(values)
	valid := errs.Valid()
	s.metrics.RecordSubmission(valid)

	state := form.State{Values: values, Errors: errs, SubmitEnabled: valid}
	page := view.Page(state, s.catalog, view.PageOptions{})
	status := http.StatusUnprocessableEntity
	if valid {
		status = http.StatusOK
		page.Body = vdom.Fragment(vdom.P(vdom.Class("submitted"), vdom.Textf("Thanks, %s!", values.FullName)), page.Body)
	}
	s.writePage(w, status, page)
}

func (s *Server) writePage(w http.ResponseWriter, status int, page render.PageData) {
	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleClientJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(view.ClientJS)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// handleValidate validates a values document without any session.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxMessageBytes)

	var values form.Values
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&values); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	errs := s.schema.ValidateAll(values)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: errs.Valid(), Errors: errs})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Animals: s.catalog.Animals(),
		Sizes:   s.catalog.Sizes(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": s.schema.Groups()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
