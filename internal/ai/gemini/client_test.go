package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeChatCreator struct {
	mu    sync.Mutex
	calls []chatCallRecord
	queue map[string][]fakeChatResponse
}

type chatCallRecord struct {
	model  string
	config *genai.GenerateContentConfig
	chat   *fakeChat
}

type fakeChatResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeChat struct {
	mu       sync.Mutex
	response fakeChatResponse
	messages []string
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	return f.response.resp, f.response.err
}

func newFakeChatCreator() *fakeChatCreator {
	return &fakeChatCreator{queue: make(map[string][]fakeChatResponse)}
}

func (f *fakeChatCreator) enqueue(model string, resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeChatResponse{resp: resp, err: err})
}

func (f *fakeChatCreator) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responses := f.queue[model]
	if len(responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := responses[0]
	f.queue[model] = responses[1:]
	chat := &fakeChat{response: res}
	f.calls = append(f.calls, chatCallRecord{model: model, config: config, chat: chat})
	return chat, nil
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorRetryPolicy(t *testing.T) {
	unavailable := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	internal := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	longQuota := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}

	tests := []struct {
		name       string
		maxRetries int
		errs       []error
		wantCalls  int
		wantSleeps []time.Duration
		wantErr    bool
	}{
		{
			name:       "recovers after a server error",
			maxRetries: 2,
			errs:       []error{internal, nil},
			wantCalls:  2,
			wantSleeps: []time.Duration{2 * time.Second},
		},
		{
			name:       "backoff doubles",
			maxRetries: 3,
			errs:       []error{unavailable, unavailable, nil},
			wantCalls:  3,
			wantSleeps: []time.Duration{2 * time.Second, 4 * time.Second},
		},
		{
			name:       "gives up when retries are exhausted",
			maxRetries: 2,
			errs:       []error{internal, internal},
			wantCalls:  2,
			wantSleeps: []time.Duration{2 * time.Second},
			wantErr:    true,
		},
		{
			name:       "long quota delay is not awaited",
			maxRetries: 3,
			errs:       []error{longQuota},
			wantCalls:  1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var slept []time.Duration
			originalSleep := sleep
			sleep = func(d time.Duration) { slept = append(slept, d) }
			defer func() { sleep = originalSleep }()

			chats := newFakeChatCreator()
			for _, err := range tt.errs {
				if err != nil {
					chats.enqueue("gemini-2.5-flash", nil, err)
					continue
				}
				chats.enqueue("gemini-2.5-flash", textResponse("narrative ok"), nil)
			}

			g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: tt.maxRetries, logger: zap.NewNop()}

			output, err := g.GenerateContent(context.Background(), "system", "synthesis")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if output != "narrative ok" {
					t.Fatalf("unexpected output: %q", output)
				}
			}

			if len(chats.calls) != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, len(chats.calls))
			}
			if len(slept) != len(tt.wantSleeps) {
				t.Fatalf("expected sleeps %v, got %v", tt.wantSleeps, slept)
			}
			for i := range slept {
				if slept[i] != tt.wantSleeps[i] {
					t.Fatalf("expected sleeps %v, got %v", tt.wantSleeps, slept)
				}
			}

			for _, call := range chats.calls {
				if call.config == nil || call.config.SystemInstruction == nil {
					t.Fatal("expected system instruction to be set")
				}
				if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
					t.Fatalf("unexpected system instruction: %q", got)
				}
				if len(call.chat.messages) != 1 || call.chat.messages[0] != "synthesis" {
					t.Fatalf("unexpected chat message: %+v", call.chat.messages)
				}
			}
		})
	}
}

func TestGeneratorHonorsShortQuotaDelay(t *testing.T) {
	var slept []time.Duration
	originalSleep := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	defer func() { sleep = originalSleep }()

	chats := newFakeChatCreator()
	chats.enqueue("gemini-2.5-flash", nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "Please retry in 3s.",
	})
	chats.enqueue("gemini-2.5-flash", textResponse("first", "second"), nil)

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "", "msg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "first\nsecond" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("expected a single 3s wait, got %v", slept)
	}
	if chats.calls[0].config != nil {
		t.Fatalf("expected no config without a system instruction")
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-2.5-flash", nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error")
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorRejectsEmptyMessage(t *testing.T) {
	g := &Generator{chats: newFakeChatCreator(), model: "gemini-2.5-flash", maxRetries: 1, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}
