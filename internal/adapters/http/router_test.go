package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

type fakeAnswerer struct {
	answer  *domain.Answer
	err     error
	lastReq domain.AskRequest
}

func (f *fakeAnswerer) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func askBody(question, channel string) *strings.Reader {
	payload := map[string]string{"question": question}
	if channel != "" {
		payload["channel"] = channel
	}
	raw, _ := json.Marshal(payload)
	return strings.NewReader(string(raw))
}

func TestAskReturnsAnswer(t *testing.T) {
	fake := &fakeAnswerer{answer: &domain.Answer{
		Answer:     "보안매체를 준비한 뒤 이체한도 변경 메뉴에서 신청하세요.",
		Steps:      []string{"로그인", "이체한도 변경 메뉴 진입"},
		Citations:  []domain.Citation{{Title: "이체 한도 변경", URL: "https://bank.example/faq/1"}},
		Followups:  []string{},
		Confidence: domain.ConfidenceHigh,
	}}
	handler := NewRouter(fake, Options{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("이체 한도를 올리고 싶어요", "web"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
	var got domain.Answer
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if got.Confidence != domain.ConfidenceHigh || len(got.Citations) != 1 {
		t.Errorf("answer = %+v", got)
	}
	if fake.lastReq.Channel != domain.ChannelWeb {
		t.Errorf("channel not forwarded, got %q", fake.lastReq.Channel)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{}, Options{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("   ", ""))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestAskRejectsUnknownChannel(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{}, Options{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("질문", "telegram"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestAskRejectsBadJSON(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{}, Options{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader("{broken"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{}, Options{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", res.Code)
	}
}

func TestAskRequiresBearerTokenWhenConfigured(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{answer: &domain.Answer{Answer: "답변"}}, Options{APIKey: "secret"}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("질문", ""))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("질문", ""))
	req.Header.Set("Authorization", "Bearer secret")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", res.Code)
	}
}

func TestAskErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question too long")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "search", errors.New("qdrant down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(&fakeAnswerer{err: tc.err}, Options{}).Handler()

			req := httptest.NewRequest(http.MethodPost, "/v1/ask", askBody("질문", ""))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tc.want {
				t.Fatalf("status = %d, want %d", res.Code, tc.want)
			}
			if tc.want >= 500 && strings.Contains(res.Body.String(), "boom") {
				t.Errorf("5xx body leaks internals: %s", res.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&fakeAnswerer{}, Options{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}
