package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/middleware"
	"github.com/yourusername/careerops-api/internal/repository"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/storage/local"
	"github.com/yourusername/careerops-api/internal/workspace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	alice = "alice-123456"
	bob   = "bob-12345678"

	parsedResume = `{"name":"Ada Lovelace","role":"Engineer","skills":{"Languages":"Python"}}`
	resumeText   = "Ada Lovelace\nEngineer\n\nSKILLS\n- Languages: Python\n"
	editedText   = "Ada Lovelace\nEngineer\n\nSKILLS\n- Languages: Python, SQL\n"
	editReply    = `{"type":"edit","document":"Ada Lovelace\nEngineer\n\nSKILLS\n- Languages: Python, SQL\n","message":"Added SQL"}`
)

// fakeLLM answers by operation name. When hold is set, calls for holdOp
// signal entered and wait until hold is closed.
type fakeLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error

	holdOp  string
	hold    chan struct{}
	entered chan struct{}
}

func newFakeLLM() *fakeLLM {
	f := &fakeLLM{replies: map[string]string{}, errs: map[string]error{}}
	f.on("parse_resume", parsedResume)
	f.on("edit_resume", editReply)
	return f
}

func (f *fakeLLM) on(op, reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[op] = reply
	delete(f.errs, op)
}

func (f *fakeLLM) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeLLM) holdCalls(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdOp = op
	f.hold = make(chan struct{})
	f.entered = make(chan struct{}, 1)
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	reply, err := f.replies[req.Operation], f.errs[req.Operation]
	var hold, entered chan struct{}
	if req.Operation == f.holdOp {
		hold, entered = f.hold, f.entered
	}
	f.mu.Unlock()

	if hold != nil {
		entered <- struct{}{}
		<-hold
	}
	if err != nil {
		return nil, err
	}
	if reply == "" {
		return nil, llm.ErrEmptyResponse
	}
	return &llm.Response{Text: reply, Provider: "fake"}, nil
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	return []byte("mp3:" + text), nil
}

func (fakeSpeech) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	return string(audio), nil
}

type harness struct {
	t       *testing.T
	llm     *fakeLLM
	store   *workspace.Store
	saved   *repository.MemorySavedSessionRepo
	objects *local.Store
	router  *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := newFakeLLM()

	store := workspace.NewStore(workspace.StoreConfig{
		Resume: func(chat *workspace.Timeline) editor.Interpreter {
			return service.NewResumeInterpreter(fake, chat)
		},
		Letter: func(chat *workspace.Timeline, resume func() string) editor.Interpreter {
			return service.NewCoverLetterInterpreter(fake, chat, resume)
		},
	})
	catalog := repository.NewMemoryJobRepo(repository.SampleJobs())
	saved := repository.NewMemorySavedSessionRepo()
	objects := local.New(t.TempDir())

	svc := Services{
		Parser:      service.NewResumeParser(fake, nil),
		Pipeline:    service.NewPipeline(service.NewAnalyzer(fake), service.NewMatcher(fake)),
		Analyzer:    service.NewAnalyzer(fake),
		Matcher:     service.NewMatcher(fake),
		Jobs:        service.NewJobExtractor(fake, service.NewJobPageFetcher(nil)),
		Advisor:     service.NewAdvisor(fake),
		Interviewer: service.NewInterviewer(fake, fakeSpeech{}, "alloy"),
		Letters:     service.NewCoverLetterWriter(fake),
	}

	r := gin.New()
	api := r.Group("/", middleware.NewAuthMiddlewareWithVerifier(nil).Authenticate())
	Register(api,
		NewSessionHandler(store, catalog, objects, svc, 1<<20),
		NewSavedSessionHandler(store, saved, objects),
		NewJobHandler(catalog),
	)

	return &harness{t: t, llm: fake, store: store, saved: saved, objects: objects, router: r}
}

func (h *harness) do(owner, method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.GuestHeader, owner)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) upload(owner, path string, fields map[string]string, fileField, filename string, data []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	require.NoError(h.t, err)
	_, err = fw.Write(data)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.GuestHeader, owner)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// createSession starts a session from pasted text and returns its id.
func (h *harness) createSession(owner string) string {
	h.t.Helper()
	w := h.do(owner, http.MethodPost, "/sessions", gin.H{"text": "Ada Lovelace, Engineer. Skills: Python."})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Session workspace.Summary `json:"session"`
	}
	decode(h.t, w, &out)
	return out.Session.ID
}

// owner is the owner id the guest middleware assigns.
func owner(guest string) string {
	return "guest:" + guest
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Code string `json:"code"`
	}
	decode(t, w, &out)
	return out.Code
}
