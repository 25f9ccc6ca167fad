package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"movie-rag/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnswerMovieQueryInput encapsulates the parameters that drive one pipeline run.
type AnswerMovieQueryInput struct {
	Query  string
	UserID string
	Limit  int
}

// AnswerMovieQueryOutput carries the answer and the intermediate artifacts
// callers log or display. It is discarded after the query; no pipeline state
// outlives a single run.
type AnswerMovieQueryOutput struct {
	SessionID       string
	ExpandedQuery   string
	OriginalHits    int
	ExpandedHits    int
	RerankedContext string
	Answer          string
}

// AnswerMovieQueryUsecase defines the contract for the full RAG pipeline.
type AnswerMovieQueryUsecase interface {
	Execute(ctx context.Context, input AnswerMovieQueryInput) (*AnswerMovieQueryOutput, error)
}

type answerMovieQueryUsecase struct {
	expander       *QueryExpander
	retriever      *SemanticRetriever
	reranker       *ResultReranker
	synthesizer    *AnswerSynthesizer
	observer       domain.Observer
	table          string
	searchLimit    int
	scoreOnSuccess bool
	logger         *slog.Logger
}

// NewAnswerMovieQueryUsecase wires the pipeline stages together. table names
// the store table to search; searchLimit is the per-variant result count used
// when the input does not set one. When scoreOnSuccess is set, a thumbs-up
// feedback score is recorded against the trace after a successful run.
func NewAnswerMovieQueryUsecase(
	expander *QueryExpander,
	retriever *SemanticRetriever,
	reranker *ResultReranker,
	synthesizer *AnswerSynthesizer,
	observer domain.Observer,
	table string,
	searchLimit int,
	scoreOnSuccess bool,
	logger *slog.Logger,
) AnswerMovieQueryUsecase {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &answerMovieQueryUsecase{
		expander:       expander,
		retriever:      retriever,
		reranker:       reranker,
		synthesizer:    synthesizer,
		observer:       observer,
		table:          table,
		searchLimit:    searchLimit,
		scoreOnSuccess: scoreOnSuccess,
		logger:         logger,
	}
}

// Execute runs EXPAND, the two retrievals in parallel, MERGE, RERANK, and
// SYNTHESIZE in a fixed sequence. Any stage failure aborts the run with a
// StageError; no stage is retried here.
func (u *answerMovieQueryUsecase) Execute(ctx context.Context, input AnswerMovieQueryInput) (*AnswerMovieQueryOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = u.searchLimit
	}

	handle := domain.TraceHandle{
		SessionID: strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    input.UserID,
	}

	ctx, root := u.observer.StartSpan(ctx, "answer_movie_query", handle)
	defer root.End()
	root.Annotate("input.query", input.Query)

	u.logger.Info("pipeline_started",
		slog.String("session_id", handle.SessionID),
		slog.String("user_id", handle.UserID),
		slog.String("query", input.Query))

	hydeQuery, err := u.expandStage(ctx, handle, input.Query)
	if err != nil {
		return nil, u.fail(root, &domain.StageError{Stage: domain.StageExpansion, Err: err})
	}
	u.logger.Info("query_expanded",
		slog.String("session_id", handle.SessionID),
		slog.String("hyde_query", hydeQuery))

	hits, hydeHits, err := u.retrieveStage(ctx, handle, input.Query, hydeQuery, limit)
	if err != nil {
		return nil, u.fail(root, &domain.StageError{Stage: domain.StageRetrieval, Err: err})
	}
	u.logger.Info("retrieval_completed",
		slog.String("session_id", handle.SessionID),
		slog.Int("original_hits", len(hits)),
		slog.Int("expanded_hits", len(hydeHits)))

	// Original-query results first, similarity order preserved within each
	// set. Duplicates across the two sets are expected and resolved by the
	// reranker, not here.
	merged := make([]domain.MovieRecord, 0, len(hits)+len(hydeHits))
	merged = append(merged, hits...)
	merged = append(merged, hydeHits...)

	reranked, err := u.rerankStage(ctx, handle, merged, input.Query)
	if err != nil {
		return nil, u.fail(root, &domain.StageError{Stage: domain.StageRerank, Err: err})
	}
	u.logger.Info("reranking_completed",
		slog.String("session_id", handle.SessionID),
		slog.Int("candidate_count", len(merged)))

	answer, err := u.synthesizeStage(ctx, handle, reranked, input.Query)
	if err != nil {
		return nil, u.fail(root, &domain.StageError{Stage: domain.StageSynthesis, Err: err})
	}
	u.logger.Info("answer_synthesized",
		slog.String("session_id", handle.SessionID))

	root.Annotate("output.answer", answer)
	if u.scoreOnSuccess {
		u.observer.Score(ctx, handle, "user_thumbs", domain.ScoreThumbUp)
	}

	return &AnswerMovieQueryOutput{
		SessionID:       handle.SessionID,
		ExpandedQuery:   hydeQuery,
		OriginalHits:    len(hits),
		ExpandedHits:    len(hydeHits),
		RerankedContext: reranked,
		Answer:          answer,
	}, nil
}

func (u *answerMovieQueryUsecase) expandStage(ctx context.Context, handle domain.TraceHandle, query string) (string, error) {
	ctx, span := u.observer.StartSpan(ctx, "build_hyde_query", handle)
	defer span.End()
	span.Annotate("input.query", query)

	expanded, err := u.expander.Expand(ctx, query)
	if err != nil {
		span.Fail(err)
		return "", err
	}
	span.Annotate("output.hyde_query", expanded)
	return expanded, nil
}

// retrieveStage runs both searches concurrently. They are read-only and
// independent, but both must succeed; a half-failed retrieval never produces
// partial results.
func (u *answerMovieQueryUsecase) retrieveStage(ctx context.Context, handle domain.TraceHandle, query, hydeQuery string, limit int) ([]domain.MovieRecord, []domain.MovieRecord, error) {
	ctx, span := u.observer.StartSpan(ctx, "run_semantic_queries", handle)
	defer span.End()

	var hits, hydeHits []domain.MovieRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hits, err = u.retriever.Search(gctx, u.table, query, limit)
		return err
	})
	g.Go(func() error {
		var err error
		hydeHits, err = u.retriever.Search(gctx, u.table, hydeQuery, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		span.Fail(err)
		return nil, nil, err
	}

	span.Annotate("output.original_hits", fmt.Sprintf("%d", len(hits)))
	span.Annotate("output.expanded_hits", fmt.Sprintf("%d", len(hydeHits)))
	return hits, hydeHits, nil
}

func (u *answerMovieQueryUsecase) rerankStage(ctx context.Context, handle domain.TraceHandle, movies []domain.MovieRecord, query string) (string, error) {
	ctx, span := u.observer.StartSpan(ctx, "run_reranking", handle)
	defer span.End()
	span.Annotate("input.query", query)
	span.Annotate("input.candidate_count", fmt.Sprintf("%d", len(movies)))

	reranked, err := u.reranker.Rerank(ctx, movies, query)
	if err != nil {
		span.Fail(err)
		return "", err
	}
	span.Annotate("output.context", reranked)
	return reranked, nil
}

func (u *answerMovieQueryUsecase) synthesizeStage(ctx context.Context, handle domain.TraceHandle, contextText, query string) (string, error) {
	ctx, span := u.observer.StartSpan(ctx, "answer_query_from_context", handle)
	defer span.End()
	span.Annotate("input.query", query)

	answer, err := u.synthesizer.Answer(ctx, contextText, query)
	if err != nil {
		span.Fail(err)
		return "", err
	}
	span.Annotate("output.answer", answer)
	return answer, nil
}

func (u *answerMovieQueryUsecase) fail(root domain.Span, err *domain.StageError) error {
	root.Fail(err)
	u.logger.Error("pipeline_failed",
		slog.String("stage", string(err.Stage)),
		slog.String("error", err.Err.Error()))
	return err
}
