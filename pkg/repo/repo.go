package repo

import (
	"context"
	"sort"
	"time"

	"github.com/foomo/promptserver/content"
	"github.com/foomo/promptserver/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrMalformedSnapshot marks a stored snapshot that is not well formed
	// JSON. Callers degrade instead of crashing.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// ErrPublishFailed marks a publish that did not reach the backend. The
	// in-memory state is left unchanged when it is returned.
	ErrPublishFailed = errors.New("publish failed")
)

// Repo names, discovers and writes document snapshots on top of a Storage.
// Snapshots are append-only: once written they are never mutated or
// deleted. Two processes publishing within the same second collide on the
// timestamp key, which is an accepted last-write-wins risk.
type (
	Repo struct {
		l       *zap.Logger
		storage Storage
		now     func() time.Time
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithNow overrides the clock used for snapshot keys.
func WithNow(v func() time.Time) Option {
	return func(o *Repo) {
		o.now = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, storage Storage, opts ...Option) *Repo {
	inst := &Repo{
		l:       l.Named("repo"),
		storage: storage,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// LoadLatest returns the document stored in the newest snapshot. When no
// snapshot exists yet it returns the default document without persisting
// it - the default only ever reaches the backend through an explicit
// publish.
func (r *Repo) LoadLatest(ctx context.Context) (*content.Document, error) {
	keys, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		r.l.Info("no snapshots found, starting with default document")
		return content.NewDefaultDocument(), nil
	}

	// ListAll sorts descending, the first key is the lexicographic maximum
	latest := keys[0]
	r.l.Debug("loading latest snapshot", zap.String("key", latest))

	return r.LoadByKey(ctx, latest)
}

// ListAll returns all snapshot keys, newest first. The storage order is
// not trusted, keys are re-sorted here.
func (r *Repo) ListAll(ctx context.Context) ([]string, error) {
	keys, err := r.storage.List(ctx, SnapshotKeyPrefix)
	if err != nil {
		metrics.SnapshotLoadFailedCounter.WithLabelValues().Inc()
		return nil, errors.Wrap(err, "failed to list snapshots")
	}

	snapshots := make([]string, 0, len(keys))
	for _, key := range keys {
		if IsSnapshotKey(key) {
			snapshots = append(snapshots, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(snapshots)))
	return snapshots, nil
}

// LoadByKey fetches and parses one specific snapshot. A failure means
// "preview unavailable", never an empty document.
func (r *Repo) LoadByKey(ctx context.Context, key string) (*content.Document, error) {
	data, err := r.storage.Read(ctx, key)
	if err != nil {
		metrics.SnapshotLoadFailedCounter.WithLabelValues().Inc()
		return nil, errors.Wrapf(err, "failed to read snapshot %q", key)
	}

	doc, err := content.ParseDocument(data)
	if err != nil {
		metrics.SnapshotLoadFailedCounter.WithLabelValues().Inc()
		return nil, errors.Wrapf(ErrMalformedSnapshot, "key %q: %s", key, err.Error())
	}
	return doc, nil
}

// Publish writes the document as a new snapshot keyed by the current UTC
// time at second resolution and returns the new key. The write is
// unconditional, a same-second collision is resolved last-write-wins.
func (r *Repo) Publish(ctx context.Context, doc *content.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", errors.Wrap(err, "refusing to publish invalid document")
	}

	data, err := doc.Bytes()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize document for publish")
	}

	key := NewSnapshotKey(r.now())
	if err := r.storage.Write(ctx, key, data); err != nil {
		metrics.SnapshotPublishFailedCounter.WithLabelValues().Inc()
		return "", errors.Wrapf(ErrPublishFailed, "key %q: %s", key, err.Error())
	}

	metrics.SnapshotPublishCounter.WithLabelValues().Inc()
	r.l.Info("published snapshot", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// Close releases the underlying storage.
func (r *Repo) Close() error {
	return r.storage.Close()
}
