package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsyncai/jobsync/internal/analysis"
	"github.com/jobsyncai/jobsync/internal/session"
	"github.com/jobsyncai/jobsync/internal/whatsapp"
)

type fakeSender struct {
	sent    []string
	failAt  int // 1-based index of the send that fails; 0 never fails
	sendErr error
}

func (f *fakeSender) SendParts(_ context.Context, _ string, text string) error {
	f.sent = append(f.sent, text)
	if f.failAt > 0 && len(f.sent) == f.failAt {
		return f.sendErr
	}
	return nil
}

type fakeMedia struct {
	data    []byte
	mime    string
	err     error
	calls   int
	lastID  string
}

func (f *fakeMedia) DownloadMedia(_ context.Context, mediaID string) ([]byte, string, error) {
	f.calls++
	f.lastID = mediaID
	return f.data, f.mime, f.err
}

type fakeBackend struct {
	resumeID   int64
	uploadErr  error
	result     *analysis.Result
	analyzeErr error

	uploads  int
	analyzes int
	lastName string
	lastMime string
	lastID   int64
}

func (f *fakeBackend) Upload(_ context.Context, filename, mimeType string, _ []byte) (int64, error) {
	f.uploads++
	f.lastName = filename
	f.lastMime = mimeType
	return f.resumeID, f.uploadErr
}

func (f *fakeBackend) Analyze(_ context.Context, resumeID int64) (*analysis.Result, error) {
	f.analyzes++
	f.lastID = resumeID
	return f.result, f.analyzeErr
}

func newTestService(store session.Store, sender *fakeSender, media *fakeMedia, backend *fakeBackend) *Service {
	return NewService(nil, store, sender, media, backend)
}

func sampleResult() *analysis.Result {
	years := 4.0
	return &analysis.Result{
		Skills:            []string{"Go", "SQL"},
		YearsOfExperience: &years,
		MatchedJobs: []analysis.MatchedJob{
			{Domain: "Backend Engineer", Similarity: 0.82, ApplicationLink: "https://jobs.example/1"},
		},
		JobAnalysis: "### Job 1: Backend Engineer\n" +
			"#### Match Assessment\nThe candidate matches well.\n" +
			"#### Key Matching Skills\n* Go\n" +
			"#### Missing Skills\n* Kubernetes\n" +
			"#### Recommended Learning\n* CKA course\n",
	}
}

func seedSession(t *testing.T, store session.Store, phone string, state session.State, result *analysis.Result) {
	t.Helper()
	_, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	_, err = store.Update(context.Background(), phone, session.Patch{State: &state, Analysis: result})
	require.NoError(t, err)
}

func TestHandleTextFirstContact(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	svc := newTestService(store, sender, &fakeMedia{}, &fakeBackend{})

	require.NoError(t, svc.HandleText(context.Background(), "491555", "hi"))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingConfirmation, sess.State)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Welcome")
}

func TestHandleTextConfirmThenUploadPrompt(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	svc := newTestService(store, sender, &fakeMedia{}, &fakeBackend{})

	ctx := context.Background()
	require.NoError(t, svc.HandleText(ctx, "491555", "hello"))
	require.NoError(t, svc.HandleText(ctx, "491555", "YES"))

	sess, err := store.Get(ctx, "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingResume, sess.State)
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "resume")
}

func TestHandleFileRejectedBeforeConfirmation(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	media := &fakeMedia{}
	backend := &fakeBackend{}
	svc := newTestService(store, sender, media, backend)

	seedSession(t, store, "491555", session.StateAwaitingConfirmation, nil)

	content := whatsapp.Content{Kind: whatsapp.ContentFile, MediaID: "m-1", Filename: "cv.pdf"}
	require.NoError(t, svc.HandleFile(context.Background(), "491555", content))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingConfirmation, sess.State)
	assert.Zero(t, media.calls, "gateway must not be invoked for a rejected file")
	assert.Zero(t, backend.uploads)
	require.Len(t, sender.sent, 1)
}

func TestHandleFileHappyPath(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	media := &fakeMedia{data: []byte("pdf bytes"), mime: "application/pdf"}
	backend := &fakeBackend{resumeID: 7, result: sampleResult()}
	svc := newTestService(store, sender, media, backend)

	seedSession(t, store, "491555", session.StateAwaitingResume, nil)

	content := whatsapp.Content{Kind: whatsapp.ContentFile, MediaID: "m-1", MimeType: "application/pdf", Filename: "cv.pdf"}
	require.NoError(t, svc.HandleFile(context.Background(), "491555", content))

	assert.Equal(t, "m-1", media.lastID)
	assert.Equal(t, "cv.pdf", backend.lastName)
	assert.Equal(t, int64(7), backend.lastID, "analyze must be called with the uploaded resume id")

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAnalysisComplete, sess.State)
	require.NotNil(t, sess.LastAnalysis)

	// downloading notice, analyzing notice, summary
	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[0], "Downloading")
	assert.Contains(t, sender.sent[1], "Analyzing")
	assert.Contains(t, sender.sent[2], "Resume Analysis Complete")
	assert.Contains(t, sender.sent[2], "Backend Engineer")
}

func TestHandleFileDownloadFailure(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	media := &fakeMedia{err: errors.New("boom")}
	backend := &fakeBackend{}
	svc := newTestService(store, sender, media, backend)

	seedSession(t, store, "491555", session.StateAwaitingResume, nil)

	content := whatsapp.Content{Kind: whatsapp.ContentFile, MediaID: "m-1", Filename: "cv.pdf"}
	require.NoError(t, svc.HandleFile(context.Background(), "491555", content))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingResume, sess.State, "failed download must not advance the state")
	assert.Zero(t, backend.uploads)

	// downloading notice + exactly one error message
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "couldn't download")
}

func TestHandleFileUploadFailure(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	media := &fakeMedia{data: []byte("pdf bytes"), mime: "application/pdf"}
	backend := &fakeBackend{uploadErr: errors.New("503")}
	svc := newTestService(store, sender, media, backend)

	seedSession(t, store, "491555", session.StateAwaitingResume, nil)

	content := whatsapp.Content{Kind: whatsapp.ContentFile, MediaID: "m-1", Filename: "cv.pdf"}
	require.NoError(t, svc.HandleFile(context.Background(), "491555", content))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingResume, sess.State)
	assert.Zero(t, backend.analyzes)
	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[2], "uploading")
}

func TestHandleFileClearsStaleAnalysisFirst(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	media := &fakeMedia{err: errors.New("boom")}
	backend := &fakeBackend{}
	svc := newTestService(store, sender, media, backend)

	seedSession(t, store, "491555", session.StateAnalysisComplete, sampleResult())

	content := whatsapp.Content{Kind: whatsapp.ContentFile, MediaID: "m-2", Filename: "cv.pdf"}
	require.NoError(t, svc.HandleFile(context.Background(), "491555", content))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Nil(t, sess.LastAnalysis, "old analysis must be dropped before the new pipeline runs")
}

func TestHandleTextJobsBreakdown(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	svc := newTestService(store, sender, &fakeMedia{}, &fakeBackend{})

	seedSession(t, store, "491555", session.StateAnalysisComplete, sampleResult())

	require.NoError(t, svc.HandleText(context.Background(), "491555", "jobs"))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateAnalysisComplete, sess.State)

	// breakdown + one closing prompt
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "Backend Engineer")
	assert.Contains(t, sender.sent[0], "Kubernetes")
	assert.Equal(t, msgClosingPrompt, sender.sent[1])
}

func TestHandleTextJobsWithoutAnalysis(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	svc := newTestService(store, sender, &fakeMedia{}, &fakeBackend{})

	seedSession(t, store, "491555", session.StateAnalysisComplete, nil)

	require.NoError(t, svc.HandleText(context.Background(), "491555", "jobs"))

	sess, err := store.Get(context.Background(), "491555")
	require.NoError(t, err)
	assert.Equal(t, session.StateNew, sess.State)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, strings.ToLower(sender.sent[0]), "sorry")
}

func TestHandleUnsupported(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sender := &fakeSender{}
	svc := newTestService(store, sender, &fakeMedia{}, &fakeBackend{})

	require.NoError(t, svc.HandleUnsupported(context.Background(), "491555"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "text messages")
}
