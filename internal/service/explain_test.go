package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/llm"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
)

// fakeProvider is a scriptable llm.Provider that counts its calls.
type fakeProvider struct {
	name   string
	text   string
	err    error
	calls  int
	prompt string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Explain(_ context.Context, promptText string) (string, error) {
	f.calls++
	f.prompt = promptText
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExplainPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "openai", text: "It prints hi."}
	fallback := &fakeProvider{name: "gemini", text: "unused"}
	svc := NewExplainService([]llm.Provider{primary, fallback}, discardLogger())

	result, err := svc.Explain(context.Background(), "print('hi')")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Explanation != "It prints hi." {
		t.Errorf("Explanation = %q, want %q", result.Explanation, "It prints hi.")
	}
	if result.Language != model.LangPython {
		t.Errorf("Language = %q, want %q", result.Language, model.LangPython)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestExplainFallsBackOnQuota(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: llm.ErrQuota}
	fallback := &fakeProvider{name: "gemini", text: "from fallback"}
	svc := NewExplainService([]llm.Provider{primary, fallback}, discardLogger())

	result, err := svc.Explain(context.Background(), "console.log('x')")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Explanation != "from fallback" {
		t.Errorf("Explanation = %q, want %q", result.Explanation, "from fallback")
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", primary.calls, fallback.calls)
	}
	if fallback.prompt != primary.prompt {
		t.Errorf("fallback prompt differs from primary:\n%q\nvs\n%q", fallback.prompt, primary.prompt)
	}
}

func TestExplainFallsBackOnAnyError(t *testing.T) {
	// Transport errors and quota errors follow the same fallback policy.
	primary := &fakeProvider{name: "openai", err: errors.New("connection refused")}
	fallback := &fakeProvider{name: "gemini", text: "rescued"}
	svc := NewExplainService([]llm.Provider{primary, fallback}, discardLogger())

	result, err := svc.Explain(context.Background(), "console.log('x')")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Explanation != "rescued" {
		t.Errorf("Explanation = %q, want %q", result.Explanation, "rescued")
	}
}

func TestExplainAllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: llm.ErrQuota}
	fallback := &fakeProvider{name: "gemini", err: llm.ErrEmptyResponse}
	svc := NewExplainService([]llm.Provider{primary, fallback}, discardLogger())

	_, err := svc.Explain(context.Background(), "print('hi')")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("Explain() error = %v, want ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "Both providers failed") {
		t.Errorf("error %q missing user-facing message", err.Error())
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = (%d, %d), want exactly one attempt each", primary.calls, fallback.calls)
	}
}

func TestExplainRejectsEmptyCode(t *testing.T) {
	primary := &fakeProvider{name: "openai", text: "never"}
	svc := NewExplainService([]llm.Provider{primary}, discardLogger())

	for _, code := range []string{"", "   ", "\n\t  \n"} {
		_, err := svc.Explain(context.Background(), code)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Explain(%q) error = %v, want ErrValidation", code, err)
		}
	}
	if primary.calls != 0 {
		t.Errorf("provider called %d times for empty code, want 0", primary.calls)
	}
}

func TestExplainPromptContainsCodeAndLanguage(t *testing.T) {
	primary := &fakeProvider{name: "openai", text: "ok"}
	svc := NewExplainService([]llm.Provider{primary}, discardLogger())

	code := `def greet():\n    print("hello")`
	if _, err := svc.Explain(context.Background(), code); err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if !strings.Contains(primary.prompt, code) {
		t.Error("prompt does not contain the submitted code")
	}
	if !strings.Contains(primary.prompt, "Python") {
		t.Error("prompt does not name the detected language")
	}
}
