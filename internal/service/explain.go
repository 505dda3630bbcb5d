// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept interfaces (repositories, providers) and return domain
// errors from internal/apperror — never HTTP status codes. The handler
// layer translates those errors to HTTP; the services could just as well
// sit behind a CLI or a gRPC server without changing a line.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/classifier"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/llm"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/prompt"
)

// allProvidersFailedMsg is the single user-facing message for a fully
// exhausted provider list. The underlying reasons are logged, never sent.
const allProvidersFailedMsg = "Both providers failed. Try again later."

// ExplainResult is what a successful explanation run produces.
type ExplainResult struct {
	Language    model.Language `json:"language"`
	Explanation string         `json:"explanation"`
}

// ExplainService orchestrates the explanation pipeline:
// classify → build prompt → try providers in order until one succeeds.
//
// The provider list is ordered: providers[0] is the primary, the rest are
// fallbacks. Two providers today (OpenAI, Gemini), but nothing here is
// hard-coded to two — the loop tries each exactly once and stops at the
// first success.
type ExplainService struct {
	providers []llm.Provider
	logger    *slog.Logger
}

// NewExplainService creates an ExplainService with the given ordered
// provider list.
func NewExplainService(providers []llm.Provider, logger *slog.Logger) *ExplainService {
	return &ExplainService{
		providers: providers,
		logger:    logger,
	}
}

// Explain runs the full pipeline for one code submission.
//
// STATE SEQUENCE (per request):
//  1. Validate: empty/whitespace code is rejected before any remote call.
//  2. Detect: the classifier runs once; the label is fixed from here on.
//  3. Attempt: each provider gets exactly one call with the same prompt.
//     Every failure reason — transport, quota, malformed response — is
//     handled the same way: move to the next provider. Quota exhaustion
//     is logged at Warn so operators can see billing problems, but it
//     does not change the policy.
//  4. Exhausted: a single generic Unavailable error. No retries, no
//     backoff, no partial result.
//
// The context is passed through to every provider call, so a cancelled
// request tears down the in-flight HTTP call instead of wasting spend.
func (s *ExplainService) Explain(ctx context.Context, code string) (*ExplainResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "No code provided.")
	}

	language := classifier.Classify(code)
	promptText := prompt.Build(code, language)

	s.logger.Info("explanation requested",
		slog.String("language", string(language)),
		slog.Int("codeBytes", len(code)),
	)

	for _, p := range s.providers {
		explanation, err := p.Explain(ctx, promptText)
		if err == nil {
			s.logger.Info("explanation generated", slog.String("provider", p.Name()))
			return &ExplainResult{
				Language:    language,
				Explanation: explanation,
			}, nil
		}

		if errors.Is(err, llm.ErrQuota) {
			s.logger.Warn("provider quota exhausted, falling back",
				slog.String("provider", p.Name()),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.Error("provider failed, falling back",
				slog.String("provider", p.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil, fmt.Errorf("explaining code: %w", apperror.Unavailable(allProvidersFailedMsg))
}
