package service

import (
	"context"
	"sync"

	"github.com/yourusername/careerops-api/internal/llm"
)

// fakeLLM answers by operation name and records every request.
type fakeLLM struct {
	mu       sync.Mutex
	replies  map[string]string
	errs     map[string]error
	requests []llm.Request
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{replies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeLLM) on(op, reply string) *fakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[op] = reply
	return f
}

func (f *fakeLLM) fail(op string, err error) *fakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
	return f
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	err, reply := f.errs[req.Operation], f.replies[req.Operation]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if reply == "" {
		return nil, llm.ErrEmptyResponse
	}
	return &llm.Response{Text: reply, Provider: "fake"}, nil
}

func (f *fakeLLM) last() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeVision struct {
	reply string
	files []llm.Attachment
}

func (v *fakeVision) Extract(_ context.Context, _ string, files []llm.Attachment) (*llm.Response, error) {
	v.files = files
	return &llm.Response{Text: v.reply, Provider: "fake"}, nil
}

type fakeSpeech struct {
	voice string
}

func (s *fakeSpeech) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	s.voice = voice
	return []byte("mp3:" + text), nil
}

func (s *fakeSpeech) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	return string(audio), nil
}

type staticConversation []llm.Message

func (c staticConversation) Recent(n int) []llm.Message {
	if len(c) <= n {
		return c
	}
	return c[len(c)-n:]
}
