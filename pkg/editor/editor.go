package editor

import (
	"context"
	"sync"

	"github.com/foomo/promptserver/content"
	"github.com/foomo/promptserver/pkg/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Editor is the narrow API the presentation layer talks to. It wires the
// snapshot repository, the document cache and one edit session together
// and keeps persistence side effects out of the session.
//
// A mutex serializes user actions: each load, edit, publish or preview
// runs to completion before the next one is accepted.
type Editor struct {
	l       *zap.Logger
	repo    *repo.Repo
	cache   *repo.Cache
	session *Session
	mu      sync.Mutex
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, r *repo.Repo, cache *repo.Cache) *Editor {
	return &Editor{
		l:       l.Named("editor"),
		repo:    r,
		cache:   cache,
		session: NewSession(),
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// CurrentDocument returns the document the session works on, loading it
// through the cache on first use. A load failure degrades to a document
// with no apps instead of failing the caller - a non crashing state that
// is distinct from the "no snapshots yet" default.
func (e *Editor) CurrentDocument(ctx context.Context) *content.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentDocument(ctx)
}

// Reload drops the cache and the held document and loads fresh from the
// backend. This is the user initiated retry for a degraded session.
func (e *Editor) Reload(ctx context.Context) *content.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Invalidate()
	e.session = NewSession()
	return e.currentDocument(ctx)
}

// ListVersions returns all snapshot keys, newest first.
func (e *Editor) ListVersions(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.ListAll(ctx)
}

// PreviewVersion loads one specific snapshot for display. A failure means
// the preview is unavailable, the current session is not affected.
func (e *Editor) PreviewVersion(ctx context.Context, key string) (*content.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.LoadByKey(ctx, key)
}

// SelectPrompt returns the text of the given prompt of the editable app.
func (e *Editor) SelectPrompt(ctx context.Context, index int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentDocument(ctx)
	return e.session.SelectPrompt(index)
}

// EditPrompt produces a candidate document with the given prompt replaced
// by the new text, or ErrNoChange when the text equals the original.
// The candidate is not persisted, pass it to Publish to commit.
func (e *Editor) EditPrompt(ctx context.Context, index int, text string) (*content.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentDocument(ctx)
	return e.session.ApplyPromptEdit(index, text)
}

// ReplaceRaw produces a candidate from user supplied raw JSON, replacing
// the whole document verbatim. ErrMalformedInput leaves the held document
// untouched.
func (e *Editor) ReplaceRaw(ctx context.Context, text string) (*content.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentDocument(ctx)
	return e.session.ApplyRawReplace(text)
}

// Publish commits a candidate: it is written as a new snapshot, the cache
// is invalidated and the candidate becomes the session's current document.
// On failure neither the held document nor the cache change, the caller
// keeps the attempted text and can retry.
func (e *Editor) Publish(ctx context.Context, candidate *content.Document) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.l.With(zap.String("run_id", uuid.New().String()))

	key, err := e.repo.Publish(ctx, candidate)
	if err != nil {
		l.Error("publish failed, keeping current document", zap.Error(err))
		return "", err
	}

	e.cache.Invalidate()
	e.session.SetDocument(candidate)
	l.Info("candidate committed", zap.String("key", key))
	return key, nil
}

// Close releases the repository and its storage.
func (e *Editor) Close() error {
	return e.repo.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (e *Editor) currentDocument(ctx context.Context) *content.Document {
	if doc := e.session.Document(); doc != nil {
		return doc
	}

	doc, err := e.cache.Get(ctx)
	if err != nil {
		e.l.Error("failed to load document, degrading to empty state", zap.Error(err))
		doc = &content.Document{Apps: []*content.App{}}
	}
	e.session.SetDocument(doc)
	return e.session.Document()
}
