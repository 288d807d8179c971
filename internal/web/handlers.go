package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/config"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/messaging"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/session"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/web/templates"
)

// Request failures raised by the handlers. Their texts are matched by
// core.MapError.
var (
	errBadForm          = errors.New("no file provided: request is not a multipart form")
	errNoRegistry       = errors.New("no file provided for registry")
	errTooLarge         = errors.New("file too large")
	errTooManyFiles     = errors.New("too many files")
	errInvalidSelection = errors.New("invalid selection index")
	errNothingSelected  = errors.New("no customer selected")
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.UploadPage(s.schemeOptions("")))
}

// handleReconcile runs the pipeline for the uploaded form, keeps the result
// in the caller's session and redirects to the results page.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, scheme, err := s.reconcile(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	id := s.ensureSession(w, r)
	s.store.Save(id, result, scheme.Options, scheme.Template)
	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

// handleAPIReconcile is handleReconcile for API clients. The result is also
// kept in the session so /links works with the returned cookie.
func (s *Server) handleAPIReconcile(w http.ResponseWriter, r *http.Request) {
	result, scheme, err := s.reconcile(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	id := s.ensureSession(w, r)
	s.store.Save(id, result, scheme.Options, scheme.Template)
	writeJSON(w, http.StatusOK, reconcileResponse{
		Scheme: scheme.Name,
		Result: result,
	})
}

type reconcileResponse struct {
	Scheme string       `json:"scheme"`
	Result *core.Result `json:"result"`
}

// reconcile parses the upload form and runs it under the run limiter.
func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) (*core.Result, config.Scheme, error) {
	in, scheme, err := s.parseRunForm(w, r)
	if err != nil {
		return nil, config.Scheme{}, err
	}

	result, err := s.run(r.Context(), in)
	if err != nil {
		return nil, config.Scheme{}, err
	}
	return result, scheme, nil
}

func (s *Server) run(ctx context.Context, in core.RunInput) (*core.Result, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()
	return s.service.Run(ctx, in)
}

// parseRunForm reads the multipart form: "sales" (repeated), "registry",
// and the optional "scheme", "rate", "unit_price", "sort" and "dir".
func (s *Server) parseRunForm(w http.ResponseWriter, r *http.Request) (core.RunInput, config.Scheme, error) {
	limits := s.cfg.Upload
	maxBody := limits.MaxFileSize*int64(limits.MaxFiles+1) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.RunInput{}, config.Scheme{}, fmt.Errorf("%w: request exceeds %d bytes", errTooLarge, tooBig.Limit)
		}
		return core.RunInput{}, config.Scheme{}, fmt.Errorf("%w: %v", errBadForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	scheme, err := s.schemes.Get(r.FormValue("scheme"))
	if err != nil {
		return core.RunInput{}, config.Scheme{}, err
	}
	scheme, err = scheme.Apply(config.Overrides{
		Rate:      r.FormValue("rate"),
		UnitPrice: r.FormValue("unit_price"),
		Sort:      r.FormValue("sort"),
		Dir:       r.FormValue("dir"),
	})
	if err != nil {
		return core.RunInput{}, config.Scheme{}, err
	}

	salesFiles := r.MultipartForm.File["sales"]
	if len(salesFiles) == 0 {
		return core.RunInput{}, config.Scheme{}, core.ErrNoSalesFiles
	}
	if len(salesFiles) > limits.MaxFiles {
		return core.RunInput{}, config.Scheme{}, fmt.Errorf("%w: %d sales files, limit is %d", errTooManyFiles, len(salesFiles), limits.MaxFiles)
	}
	registryFiles := r.MultipartForm.File["registry"]
	if len(registryFiles) == 0 {
		return core.RunInput{}, config.Scheme{}, errNoRegistry
	}

	in := core.RunInput{Options: scheme.Options}
	for _, fh := range salesFiles {
		up, err := readUpload(fh)
		if err != nil {
			return core.RunInput{}, config.Scheme{}, err
		}
		in.Sales = append(in.Sales, up)
	}
	if in.Registry, err = readUpload(registryFiles[0]); err != nil {
		return core.RunInput{}, config.Scheme{}, err
	}

	logging.FromContext(r.Context()).Debug("run form parsed",
		"scheme", scheme.Name,
		"sales_files", len(in.Sales),
		"registry_file", in.Registry.Name,
	)
	return in, scheme, nil
}

func readUpload(fh *multipart.FileHeader) (core.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return core.Upload{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return core.Upload{Name: fh.Filename, Data: data}, nil
}

// handleResults shows the session's result. Without one it sends the
// caller back to the upload page.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	v, err := s.snapshot(r)
	if errors.Is(err, session.ErrNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	render(w, r, http.StatusOK, templates.ResultsPage(templates.ResultsView{
		Result:  v.Result,
		Rows:    v.Rows,
		Options: v.Options,
	}))
}

// handleReset forgets the caller's result and returns to the upload page.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if id, err := s.sessionID(r); err == nil {
		s.store.Delete(id)
	}
	s.clearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type resultsResponse struct {
	Result   *core.Result  `json:"result"`
	Rows     []session.Row `json:"rows"`
	Selected int           `json:"selected"`
}

func (s *Server) handleAPIResults(w http.ResponseWriter, r *http.Request) {
	v, err := s.snapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{
		Result:   v.Result,
		Rows:     v.Rows,
		Selected: len(v.Selected),
	})
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.updateSelection(w, r, func(sel *session.Selection) error {
		sel.SelectAll()
		return nil
	})
}

func (s *Server) handleSelectNone(w http.ResponseWriter, r *http.Request) {
	s.updateSelection(w, r, func(sel *session.Selection) error {
		sel.DeselectAll()
		return nil
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %q", errInvalidSelection, raw), 0)
		return
	}
	s.updateSelection(w, r, func(sel *session.Selection) error {
		if !sel.Toggle(idx) {
			return fmt.Errorf("%w: %d of %d", errInvalidSelection, idx, sel.Len())
		}
		return nil
	})
}

// updateSelection applies fn to the session's selection, then redirects
// back to the results page or, for JSON clients, returns the rows.
func (s *Server) updateSelection(w http.ResponseWriter, r *http.Request, fn func(*session.Selection) error) {
	id, err := s.sessionID(r)
	if err == nil {
		err = s.store.Update(id, func(st *session.State) error {
			return fn(st.Selection)
		})
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if wantsJSON(r) {
		s.handleAPIResults(w, r)
		return
	}
	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

type linksResponse struct {
	Invites     []messaging.Invite `json:"invites"`
	Usable      int                `json:"usable"`
	Unreachable int                `json:"unreachable"`
}

// handleLinks builds the invitation links for the selected customers. It
// sits behind the PIN gate.
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	v, err := s.snapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if len(v.Selected) == 0 {
		s.respondError(w, r, errNothingSelected, 0)
		return
	}

	invites := messaging.Compose(v.Selected, v.Template)
	usable, unreachable := messaging.Split(invites)
	logging.FromContext(r.Context()).Info("invitation links generated",
		"run_id", v.Result.RunID,
		"usable", len(usable),
		"unreachable", len(unreachable),
	)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, linksResponse{
			Invites:     invites,
			Usable:      len(usable),
			Unreachable: len(unreachable),
		})
		return
	}
	render(w, r, http.StatusOK, templates.LinksPage(invites))
}

type schemeResponse struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Rate      string `json:"rate"`
	UnitPrice string `json:"unitPrice"`
	Sort      string `json:"sort"`
	Dir       string `json:"dir"`
	Default   bool   `json:"default"`
}

func (s *Server) handleAPISchemes(w http.ResponseWriter, r *http.Request) {
	all := s.schemes.All()
	out := make([]schemeResponse, 0, len(all))
	for _, sc := range all {
		out = append(out, schemeResponse{
			Name:      sc.Name,
			Label:     sc.Label,
			Rate:      sc.Options.Rate.String(),
			UnitPrice: sc.Options.UnitPrice.String(),
			Sort:      sc.Options.Sort.Column,
			Dir:       sc.Options.Sort.Dir,
			Default:   sc.Name == s.schemes.Default,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type healthResponse struct {
	Status   string                `json:"status"`
	Runs     core.RunLimiterStatus `json:"runs"`
	Sessions int                   `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Runs:     s.limiter.Status(),
		Sessions: s.store.Len(),
	})
}

func (s *Server) schemeOptions(selected string) []templates.SchemeOption {
	if selected == "" {
		selected = s.schemes.Default
	}
	all := s.schemes.All()
	out := make([]templates.SchemeOption, 0, len(all))
	for _, sc := range all {
		out = append(out, templates.SchemeOption{
			Name:     sc.Name,
			Label:    sc.Label,
			Selected: sc.Name == selected,
		})
	}
	return out
}
