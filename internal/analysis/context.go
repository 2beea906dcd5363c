// Package analysis reconstructs per-call timelines from FreeSWITCH logs and
// classifies each call's outcome.
//
// A Context owns one analysis run. Its stages must run in order:
// Partition, then Tag and ExtractCallNumbers, then Classify. Run does all of
// them. The files handed to New must already be in chronological order;
// the loader package sorts them that way.
package analysis

import (
	"sort"

	"go.uber.org/zap"

	"fslog/internal/model"
)

// Context holds the sessions reconstructed from one set of log files.
// It is not safe for concurrent use.
type Context struct {
	files    []model.LogFile
	rules    Rules
	log      *zap.Logger
	sessions map[string]*model.Session
	ignored  []model.IgnoredLine
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for stage reporting.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRules replaces the tagging table.
func WithRules(rs Rules) Option {
	return func(c *Context) {
		c.rules = rs
	}
}

// New creates a Context over files.
func New(files []model.LogFile, opts ...Option) *Context {
	c := &Context{
		files:    files,
		rules:    DefaultRules(),
		log:      zap.NewNop(),
		sessions: make(map[string]*model.Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Files returns the files the context was built from.
func (c *Context) Files() []model.LogFile {
	return c.files
}

// SessionIDs returns every session id ordered by start time, with ties
// broken by id.
func (c *Context) SessionIDs() []string {
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.sessions[ids[i]], c.sessions[ids[j]]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
	return ids
}

// Sessions returns the sessions in SessionIDs order.
func (c *Context) Sessions() []*model.Session {
	ids := c.SessionIDs()
	out := make([]*model.Session, len(ids))
	for i, id := range ids {
		out[i] = c.sessions[id]
	}
	return out
}

// Session looks up one session.
func (c *Context) Session(id string) (*model.Session, bool) {
	s, ok := c.sessions[id]
	return s, ok
}

// IgnoredLines returns the lines that carried no session token, in file and
// line order.
func (c *Context) IgnoredLines() []model.IgnoredLine {
	return c.ignored
}

// Clear drops every loaded file and derived session.
func (c *Context) Clear() {
	c.files = nil
	c.reset()
}

func (c *Context) reset() {
	c.sessions = make(map[string]*model.Session)
	c.ignored = nil
}
