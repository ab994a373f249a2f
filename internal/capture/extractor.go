// Package capture extracts the owning account and its followed accounts from
// HAR captures of a profile's "following" list.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chromedp/cdproto/har"
	"github.com/tidwall/gjson"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// OwnerResolver maps a username to a known account.
type OwnerResolver interface {
	Lookup(username string) (model.Account, bool)
}

// Result is what one capture yields.
type Result struct {
	Capture       string          `json:"capture"`
	Username      string          `json:"username"`
	OwnerID       string          `json:"owner_id"`
	OwnerFullName string          `json:"owner_full_name,omitempty"`
	Followings    []model.Account `json:"followings"`

	Entries       int `json:"entries"`
	SkippedBodies int `json:"skipped_bodies"`
}

// Document converts the result to the per-account artifact.
func (r *Result) Document() *model.Document {
	return &model.Document{
		Username:   r.Username,
		ID:         r.OwnerID,
		FullName:   r.OwnerFullName,
		Followings: r.Followings,
	}
}

// Extractor turns captures into Results.
type Extractor struct {
	identity   *IdentityMatcher
	owners     OwnerResolver
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProfileHost sets the host marker used for identity recovery.
func WithProfileHost(host string) Option {
	return func(e *Extractor) { e.identity = NewIdentityMatcher(host) }
}

// WithStrategies replaces the payload probing strategies.
func WithStrategies(s ...Strategy) Option {
	return func(e *Extractor) { e.strategies = s }
}

// NewExtractor creates an extractor resolving owners through owners.
func NewExtractor(owners OwnerResolver, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		identity:   NewIdentityMatcher(DefaultProfileHost),
		owners:     owners,
		strategies: DefaultStrategies,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads and extracts one capture file.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := e.Extract(h)
	if err != nil {
		return nil, err
	}
	res.Capture = filepath.Base(path)
	return res, nil
}

// Extract recovers identity, resolves the owner, then collects followed
// accounts from every response body. Bodies that are empty or not JSON are
// skipped. A capture without any followed account fails with ErrNoFollowings.
func (e *Extractor) Extract(h *har.HAR) (*Result, error) {
	if h == nil || h.Log == nil {
		return nil, fmt.Errorf("%w: capture has no log section", model.ErrParse)
	}

	username, err := e.identity.Username(h.Log.Pages)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("identity recovered", "username", username)

	owner, ok := e.owners.Lookup(username)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrOwnerNotFound, username)
	}

	res := &Result{
		Username:      username,
		OwnerID:       owner.ID,
		OwnerFullName: owner.FullName,
		Entries:       len(h.Log.Entries),
	}

	var found []model.Account
	for i, entry := range h.Log.Entries {
		text := responseText(entry)
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			res.SkippedBodies++
			e.logger.Debug("skipping non-JSON response body", "entry", i)
			continue
		}
		found = append(found, probe(e.strategies, gjson.Parse(text))...)
	}

	res.Followings = model.DedupeAccounts(found)
	if len(res.Followings) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrNoFollowings, username)
	}
	return res, nil
}
