package editor

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/foomo/promptserver/content"
	"github.com/foomo/promptserver/pkg/repo"
)

// flakyStorage lets tests switch the backend into a failing state.
type flakyStorage struct {
	repo.Storage
	failWrites bool
	failReads  bool
}

func (f *flakyStorage) Write(ctx context.Context, key string, data []byte) error {
	if f.failWrites {
		return errors.New("backend unavailable")
	}
	return f.Storage.Write(ctx, key, data)
}

func (f *flakyStorage) List(ctx context.Context, prefix string) ([]string, error) {
	if f.failReads {
		return nil, errors.New("backend unavailable")
	}
	return f.Storage.List(ctx, prefix)
}

func testEditor(t *testing.T) (*Editor, *repo.Repo, *flakyStorage) {
	t.Helper()
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	storage := &flakyStorage{Storage: repo.NewBlobStorageFromBucket(bucket, "")}
	r := repo.New(zaptest.NewLogger(t), storage, repo.WithNow(func() time.Time {
		at = at.Add(time.Second)
		return at
	}))
	cache := repo.NewCache(zaptest.NewLogger(t), r)
	return New(zaptest.NewLogger(t), r, cache), r, storage
}

func seedEditor(t *testing.T, e *Editor, r *repo.Repo) string {
	t.Helper()
	doc := &content.Document{
		Apps: []*content.App{
			{
				Name: "mmx",
				Prompts: []*content.Prompt{
					{Name: "greeting", Content: []string{"a", "b"}},
				},
			},
		},
	}
	key, err := r.Publish(context.Background(), doc)
	require.NoError(t, err)
	return key
}

func TestEditor_CurrentDocument_Default(t *testing.T) {
	ctx := context.Background()
	e, _, _ := testEditor(t)

	doc := e.CurrentDocument(ctx)
	require.Len(t, doc.Apps, 1)
	assert.Equal(t, "mmx", doc.Apps[0].Name)
	assert.Empty(t, doc.Apps[0].Prompts)
}

func TestEditor_CurrentDocument_DegradesOnLoadFailure(t *testing.T) {
	ctx := context.Background()
	e, _, storage := testEditor(t)
	storage.failReads = true

	doc := e.CurrentDocument(ctx)
	require.NotNil(t, doc)
	// degraded state: no apps at all, distinct from the default document
	assert.Empty(t, doc.Apps)
}

func TestEditor_Reload_RecoversDegradedSession(t *testing.T) {
	ctx := context.Background()
	e, r, storage := testEditor(t)
	seedEditor(t, e, r)

	storage.failReads = true
	assert.Empty(t, e.CurrentDocument(ctx).Apps)

	storage.failReads = false
	doc := e.Reload(ctx)
	require.Len(t, doc.Apps, 1)
	assert.Equal(t, "mmx", doc.Apps[0].Name)
}

func TestEditor_SelectPrompt(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	seedEditor(t, e, r)

	text, err := e.SelectPrompt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", text)

	_, err = e.SelectPrompt(ctx, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestEditor_EditPublishCommit(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	first := seedEditor(t, e, r)

	candidate, err := e.EditPrompt(ctx, 0, "a\nb\nc")
	require.NoError(t, err)

	key, err := e.Publish(ctx, candidate)
	require.NoError(t, err)
	assert.NotEqual(t, first, key)

	// the committed candidate is the current document now
	doc := e.CurrentDocument(ctx)
	assert.Equal(t, []string{"a", "b", "c"}, doc.Apps[0].Prompts[0].Content)

	// the new snapshot is what the repository serves as latest
	latest, err := r.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, latest.Apps[0].Prompts[0].Content)

	// the old snapshot remains retrievable
	keys, err := e.ListVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key, first}, keys)

	old, err := e.PreviewVersion(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, old.Apps[0].Prompts[0].Content)
}

func TestEditor_EditPrompt_NoChange(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	seedEditor(t, e, r)

	_, err := e.EditPrompt(ctx, 0, "a\nb\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoChange))
}

func TestEditor_Publish_FailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	e, r, storage := testEditor(t)
	seedEditor(t, e, r)

	candidate, err := e.EditPrompt(ctx, 0, "a\nb\nc")
	require.NoError(t, err)

	storage.failWrites = true
	_, err = e.Publish(ctx, candidate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repo.ErrPublishFailed))

	// held document still equals the pre-edit document
	doc := e.CurrentDocument(ctx)
	assert.Equal(t, []string{"a", "b"}, doc.Apps[0].Prompts[0].Content)

	// and the backend still serves the old snapshot
	storage.failWrites = false
	latest, err := r.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, latest.Apps[0].Prompts[0].Content)
}

func TestEditor_ReplaceRaw(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	seedEditor(t, e, r)

	candidate, err := e.ReplaceRaw(ctx, `{"APPS":[{"name":"replaced","prompts":[]}]}`)
	require.NoError(t, err)

	_, err = e.Publish(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, "replaced", e.CurrentDocument(ctx).Apps[0].Name)
}

func TestEditor_ReplaceRaw_MalformedLeavesDocumentUnchanged(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	seedEditor(t, e, r)

	_, err := e.ReplaceRaw(ctx, `{"APPS": [`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	doc := e.CurrentDocument(ctx)
	assert.Equal(t, "mmx", doc.Apps[0].Name)
	assert.Equal(t, []string{"a", "b"}, doc.Apps[0].Prompts[0].Content)
}

func TestEditor_PreviewVersion_Unavailable(t *testing.T) {
	ctx := context.Background()
	e, r, _ := testEditor(t)
	seedEditor(t, e, r)

	_, err := e.PreviewVersion(ctx, "prompt_repo_19990101_000000.json")
	require.Error(t, err)
}
