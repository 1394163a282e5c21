// Package pipeline drives a merger end to end: build the configured sets,
// resume from a snapshot when possible, export and persist the snapshot
// again. The command line and the MCP server share it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/erraggy/resmerge/internal/pathutil"
	"github.com/erraggy/resmerge/merger"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// SetSpec names one resource set and its source roots.
type SetSpec struct {
	Name  string   `json:"name"  yaml:"name"`
	Roots []string `json:"roots" yaml:"roots"`
}

// ParseSetSpec parses "name=root1,root2".
func ParseSetSpec(s string) (SetSpec, error) {
	name, roots, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return SetSpec{}, &reserrors.ConfigError{Option: "set", Value: s, Message: "expected name=root[,root...]"}
	}
	spec := SetSpec{Name: name}
	for _, root := range strings.Split(roots, ",") {
		if root = strings.TrimSpace(root); root != "" {
			spec.Roots = append(spec.Roots, root)
		}
	}
	if len(spec.Roots) == 0 {
		return SetSpec{}, &reserrors.ConfigError{Option: "set", Value: s, Message: "at least one source root is required"}
	}
	return spec, nil
}

// Request describes one merge.
type Request struct {
	Sets       []SetSpec
	OutputRoot string
	// BlobDir is where the snapshot lives. Empty disables persistence.
	BlobDir string
	// Incremental resumes from the snapshot in BlobDir when it still
	// matches Sets, falling back to a full merge otherwise.
	Incremental bool
	// Clean empties OutputRoot before a full merge so that outputs of
	// earlier runs cannot survive.
	Clean   bool
	Logger  resource.Logger
	Options []merger.Option
}

// Result summarizes one merge or update.
type Result struct {
	Incremental bool                   `json:"incremental"       yaml:"incremental"`
	Events      []resource.ChangeEvent `json:"events,omitempty"  yaml:"events,omitempty"`
	Resources   int                    `json:"resources"         yaml:"resources"`
	Written     []string               `json:"written,omitempty" yaml:"written,omitempty"`
	Deleted     []string               `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Rejected    []Rejection            `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Rejection is a change event left unapplied because its file failed to
// parse, with the parse error.
type Rejection struct {
	Event resource.ChangeEvent `json:"event" yaml:"event"`
	Error string               `json:"error" yaml:"error"`
}

func (r *Request) validate() error {
	if len(r.Sets) == 0 {
		return &reserrors.ConfigError{Option: "set", Message: "at least one resource set is required"}
	}
	seen := make(map[string]bool, len(r.Sets))
	for _, spec := range r.Sets {
		if spec.Name == "" || len(spec.Roots) == 0 {
			return &reserrors.ConfigError{Option: "set", Value: spec.Name, Message: "each set needs a name and at least one source root"}
		}
		if seen[spec.Name] {
			return &reserrors.ConfigError{Option: "set", Value: spec.Name, Message: "duplicate set name"}
		}
		seen[spec.Name] = true
	}
	if r.OutputRoot == "" {
		return &reserrors.ConfigError{Option: "out", Message: "an output folder is required"}
	}
	for _, spec := range r.Sets {
		for _, root := range spec.Roots {
			if pathutil.Contains(r.OutputRoot, root) {
				return &reserrors.ConfigError{Option: "out", Value: r.OutputRoot, Message: "output folder contains source root " + root}
			}
		}
	}
	if r.Incremental && r.BlobDir == "" {
		return &reserrors.ConfigError{Option: "blob", Message: "incremental merges need a snapshot folder"}
	}
	return nil
}

func (r *Request) logger() resource.Logger {
	if r.Logger == nil {
		return resource.NopLogger{}
	}
	return r.Logger
}

// BuildSets creates empty sets for specs, lowest priority first.
func BuildSets(specs []SetSpec, logger resource.Logger) []*resource.Set {
	sets := make([]*resource.Set, 0, len(specs))
	for _, spec := range specs {
		set := resource.NewSet(spec.Name, resource.WithLogger(logger))
		for _, root := range spec.Roots {
			set.AddSource(root)
		}
		sets = append(sets, set)
	}
	return sets
}

// Session keeps a loaded merger between updates, as the watch loop does.
type Session struct {
	req    Request
	m      *merger.Merger
	logger resource.Logger
}

// Open performs the first merge of a session: incremental when the
// request allows it and the snapshot fits, full otherwise.
func Open(ctx context.Context, req Request) (*Session, *Result, error) {
	if err := req.validate(); err != nil {
		return nil, nil, err
	}
	s := &Session{req: req, logger: req.logger()}

	if req.Incremental {
		events, err := s.resume()
		if err == nil {
			res, err := s.finish(true, events)
			return s, res, err
		}
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no snapshot found, running a full merge", "blob", req.BlobDir)
		} else {
			s.logger.Warn("incremental merge unavailable, running a full merge", "error", err)
		}
	}
	if err := s.full(ctx); err != nil {
		return nil, nil, err
	}
	res, err := s.finish(false, nil)
	return s, res, err
}

// Run performs a single merge.
func Run(ctx context.Context, req Request) (*Result, error) {
	_, res, err := Open(ctx, req)
	return res, err
}

// Update applies explicit change events on top of the snapshot in
// req.BlobDir. Unlike Open it never falls back to a full merge.
func Update(ctx context.Context, req Request, events []resource.ChangeEvent) (*Result, error) {
	req.Incremental = true
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Session{req: req, logger: req.logger()}
	m, err := s.restore()
	if err != nil {
		return nil, err
	}
	if err := m.ApplyChanges(events); err != nil {
		return nil, err
	}
	s.m = m
	return s.finish(true, events)
}

// Apply feeds events to the session's merger one at a time and exports the
// result. An event whose file does not parse is rejected and leaves that
// file as it was; the other events still apply. An event the merger cannot
// place triggers a full reload.
func (s *Session) Apply(ctx context.Context, events []resource.ChangeEvent) (*Result, error) {
	var rejected []Rejection
	for _, e := range events {
		err := s.m.ApplyChanges([]resource.ChangeEvent{e})
		switch {
		case err == nil:
		case errors.Is(err, reserrors.ErrParse):
			s.logger.Warn("change rejected", "event", e.String(), "error", err)
			rejected = append(rejected, Rejection{Event: e, Error: err.Error()})
		case errors.Is(err, reserrors.ErrInvalidUpdate):
			s.logger.Warn("change events rejected, reloading every set", "error", err)
			if err := s.full(ctx); err != nil {
				return nil, err
			}
			return s.finish(false, events)
		default:
			return nil, err
		}
	}
	res, err := s.finish(true, events)
	if err != nil {
		return nil, err
	}
	res.Rejected = rejected
	return res, nil
}

// Merger returns the session's merger.
func (s *Session) Merger() *merger.Merger {
	return s.m
}

func (s *Session) newMerger() (*merger.Merger, error) {
	opts := append([]merger.Option{merger.WithLogger(s.logger)}, s.req.Options...)
	return merger.New(opts...)
}

// restore loads the snapshot and checks it against the configured sets.
func (s *Session) restore() (*merger.Merger, error) {
	m, err := s.newMerger()
	if err != nil {
		return nil, err
	}
	if err := m.LoadFromBlob(s.req.BlobDir); err != nil {
		return nil, err
	}
	if err := m.ValidateUpdate(BuildSets(s.req.Sets, s.logger)); err != nil {
		return nil, err
	}
	return m, nil
}

// resume restores the snapshot and applies whatever changed on disk since.
func (s *Session) resume() ([]resource.ChangeEvent, error) {
	m, err := s.restore()
	if err != nil {
		return nil, err
	}
	events, err := m.DetectChanges()
	if err != nil {
		return nil, err
	}
	if err := m.ApplyChanges(events); err != nil {
		return nil, err
	}
	s.m = m
	return events, nil
}

func (s *Session) full(ctx context.Context) error {
	m, err := s.newMerger()
	if err != nil {
		return err
	}
	for _, set := range BuildSets(s.req.Sets, s.logger) {
		m.AddResourceSet(set)
	}
	if err := m.LoadAll(ctx); err != nil {
		return err
	}
	if s.req.Clean {
		if err := cleanOutput(s.req.OutputRoot); err != nil {
			return err
		}
	}
	s.m = m
	return nil
}

// finish validates, exports and persists the snapshot.
func (s *Session) finish(incremental bool, events []resource.ChangeEvent) (*Result, error) {
	if err := s.m.ValidateResourceSets(); err != nil {
		return nil, err
	}
	report, err := s.m.WriteResourceFolder(s.req.OutputRoot)
	if err != nil {
		return nil, err
	}
	if s.req.BlobDir != "" {
		if err := s.m.WriteBlobTo(s.req.BlobDir); err != nil {
			return nil, err
		}
	}
	s.logger.Info("merge complete",
		"incremental", incremental,
		"events", len(events),
		"written", len(report.Written),
		"deleted", len(report.Deleted))
	return &Result{
		Incremental: incremental,
		Events:      events,
		Resources:   s.m.Size(),
		Written:     report.Written,
		Deleted:     report.Deleted,
	}, nil
}

func cleanOutput(root string) error {
	abs, err := pathutil.SanitizeOutputPath(root)
	if err != nil {
		return fmt.Errorf("pipeline: output folder: %w", err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return &reserrors.IOError{Op: "clean", Path: abs, Cause: err}
	}
	return nil
}
