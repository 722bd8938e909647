package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func fakeOpenAI(t *testing.T, status int, content string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
			return
		}
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  "gpt-3.5-turbo",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIAnalyzer(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := fakeOpenAI(t, http.StatusOK,
		`{"suggestions":[{"type":"grammar","message":"agreement","replacement":"have","start":2,"end":5}]}`, &req)
	defer srv.Close()

	a := NewOpenAIAnalyzer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL}, nil)
	raw, err := a.Analyze(context.Background(), "I has one apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 1 || raw[0].Replacement != "have" || raw[0].Start != 2 || raw[0].End != 5 {
		t.Errorf("unexpected suggestions %+v", raw)
	}

	if req.Model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, req.Model)
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected max tokens %d, got %d", DefaultMaxTokens, req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Content != SystemPrompt || req.Messages[1].Content != "I has one apple" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("expected JSON object response format")
	}
}

func TestOpenAIAnalyzerAPIError(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()

	a := NewOpenAIAnalyzer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL}, nil)
	_, err := a.Analyze(context.Background(), "text")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", te.Status)
	}
}

func TestOpenAIAnalyzerMalformedContent(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, `Sure! Here are my suggestions.`, nil)
	defer srv.Close()

	a := NewOpenAIAnalyzer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)
	_, err := a.Analyze(context.Background(), "text")
	if !errors.Is(err, ErrContract) {
		t.Errorf("expected contract error, got %v", err)
	}
}

func TestOpenAIAnalyzerEmptyContent(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, "", nil)
	defer srv.Close()

	a := NewOpenAIAnalyzer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL}, nil)
	_, err := a.Analyze(context.Background(), "text")
	var ce *ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContractError, got %v", err)
	}
}
