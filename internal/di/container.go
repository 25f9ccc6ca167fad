package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"movie-rag/internal/adapter/obs"
	"movie-rag/internal/adapter/openaillm"
	"movie-rag/internal/adapter/repository"
	"movie-rag/internal/domain"
	"movie-rag/internal/infra"
	"movie-rag/internal/infra/config"
	"movie-rag/internal/infra/httpclient"
	"movie-rag/internal/usecase"
)

// Components holds all wired dependencies for the application.
type Components struct {
	Pool     *pgxpool.Pool
	Store    domain.MovieStore
	LLM      domain.LLMClient
	Encoder  domain.VectorEncoder
	Observer domain.Observer
	Pipeline usecase.AnswerMovieQueryUsecase
}

// NewComponents wires all dependencies from config. scoreOnSuccess controls
// whether successful runs record a thumbs-up feedback score on the trace.
func NewComponents(ctx context.Context, cfg *config.Config, log *slog.Logger, scoreOnSuccess bool) (*Components, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	pool, err := infra.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	apiHTTP := httpclient.NewPooledClient(time.Duration(cfg.OpenAITimeout) * time.Second)
	llm := openaillm.NewGenerator(cfg.OpenAIAPIKey, cfg.ChatModel, apiHTTP)
	encoder := openaillm.NewEmbedder(cfg.OpenAIAPIKey, openai.EmbeddingModel(cfg.EmbeddingModel), apiHTTP)

	store := repository.NewMovieRepository(pool, encoder)

	var observer domain.Observer
	if cfg.OTelEnabled {
		observer = obs.NewOtelObserver()
	} else {
		observer = obs.NewNoopObserver()
	}

	pipeline := usecase.NewAnswerMovieQueryUsecase(
		usecase.NewQueryExpander(llm),
		usecase.NewSemanticRetriever(store),
		usecase.NewResultReranker(llm),
		usecase.NewAnswerSynthesizer(llm),
		observer,
		cfg.MovieTable,
		cfg.SearchLimit,
		scoreOnSuccess,
		log,
	)

	return &Components{
		Pool:     pool,
		Store:    store,
		LLM:      llm,
		Encoder:  encoder,
		Observer: observer,
		Pipeline: pipeline,
	}, nil
}

// Close releases pooled resources.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
