package xmlgen

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/arkantrust/abassist/models"
)

// GenerationLog persists generation records. store.BoltLog and
// store.SQLiteLog implement it.
type GenerationLog interface {
	Append(ctx context.Context, rec *models.GenerationRecord) (*models.GenerationRecord, error)
}

// Form is a template together with the variables its form asks for.
type Form struct {
	Template  *models.Template
	Variables []string
}

// Result is the outcome of one successful generation.
type Result struct {
	TemplateName string
	Submission   Submission
	Output       string

	// Warning is set when Output is not well-formed XML.
	Warning string

	// Logged is false when the generation log could not be written.
	Logged bool
}

// Service ties the template store, the renderer and the generation log
// together for the HTTP handlers and the CLI.
type Service struct {
	store  *Store
	log    GenerationLog
	logger *slog.Logger
	now    func() time.Time
}

// NewService returns a Service. log may be nil, in which case generations
// are not recorded.
func NewService(store *Store, log GenerationLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: log, logger: logger, now: time.Now}
}

// Templates lists the available templates. A missing template directory is
// logged and reported as an empty list.
func (s *Service) Templates() []string {
	names, err := s.store.Scan()
	if err != nil {
		s.logger.Warn("template store unavailable", "dir", s.store.Dir(), "error", err)
		return names
	}
	s.logger.Debug("found templates", "count", len(names))
	return names
}

// Form loads a template and extracts its variables.
func (s *Service) Form(name string) (*Form, error) {
	tpl, err := s.store.Read(name)
	if err != nil {
		return nil, err
	}
	return &Form{Template: tpl, Variables: Extract(tpl.Content)}, nil
}

// Generate renders the named template with sub and records the generation.
//
// A failure to write the log is logged and reflected in Result.Logged; it
// never fails the generation.
func (s *Service) Generate(ctx context.Context, name string, sub Submission) (*Result, error) {
	tpl, err := s.store.Read(name)
	if err != nil {
		return nil, err
	}

	out, err := Render(tpl.Content, sub)
	if err != nil {
		var rerr *RenderError
		if errors.As(err, &rerr) {
			rerr.Template = name
		}
		return nil, err
	}

	res := &Result{TemplateName: name, Submission: sub, Output: out}
	if werr := CheckWellFormed(out); werr != nil {
		res.Warning = werr.Error()
	}
	res.Logged = s.record(ctx, name, sub, out)
	return res, nil
}

func (s *Service) record(ctx context.Context, name string, sub Submission, out string) bool {
	if s.log == nil {
		return false
	}

	data, err := json.Marshal(sub)
	if err != nil {
		s.logger.Error("log write failure", "template", name, "error", err)
		return false
	}

	rec := &models.GenerationRecord{
		Timestamp:     s.now().UTC().Format(time.RFC3339Nano),
		TemplateName:  name,
		SubmittedData: string(data),
		GeneratedXML:  out,
	}
	saved, err := s.log.Append(ctx, rec)
	if err != nil {
		s.logger.Error("log write failure", "template", name, "error", err)
		return false
	}
	s.logger.Info("logged generation", "template", name, "id", saved.ID)
	return true
}
