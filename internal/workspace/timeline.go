package workspace

import (
	"strings"
	"sync"

	"github.com/yourusername/careerops-api/internal/llm"
)

const maxTimeline = 50

// Timeline is the chat between the user and the assistant about one
// document. Only the most recent messages are kept.
type Timeline struct {
	mu       sync.Mutex
	messages []llm.Message
}

func NewTimeline(messages []llm.Message) *Timeline {
	t := &Timeline{}
	for _, m := range messages {
		t.append(m)
	}
	return t
}

// Exchange records one instruction and the assistant's reply.
func (t *Timeline) Exchange(user, assistant string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.append(llm.Message{Role: llm.RoleUser, Content: user})
	t.append(llm.Message{Role: llm.RoleAssistant, Content: assistant})
}

// Recent returns up to n of the latest messages, oldest first.
func (t *Timeline) Recent(n int) []llm.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(t.messages) - n
	if start < 0 {
		start = 0
	}
	return append([]llm.Message(nil), t.messages[start:]...)
}

// All copies the timeline.
func (t *Timeline) All() []llm.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]llm.Message(nil), t.messages...)
}

func (t *Timeline) append(m llm.Message) {
	if strings.TrimSpace(m.Content) == "" {
		return
	}
	t.messages = append(t.messages, m)
	if over := len(t.messages) - maxTimeline; over > 0 {
		t.messages = append([]llm.Message(nil), t.messages[over:]...)
	}
}
