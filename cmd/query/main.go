package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"movie-rag/internal/di"
	"movie-rag/internal/infra/config"
	"movie-rag/internal/infra/logger"
	"movie-rag/internal/infra/otelinit"
	"movie-rag/internal/usecase"
)

const defaultQuery = "I would like to watch a movie with dragons"

func main() {
	var (
		query  string
		userID string
		limit  int
		score  bool
	)

	rootCmd := &cobra.Command{
		Use:   "query",
		Short: "Run the movie RAG pipeline for a single query",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), query, userID, limit, score)
		},
	}

	rootCmd.Flags().StringVarP(&query, "query", "q", defaultQuery, "natural-language movie query")
	rootCmd.Flags().StringVarP(&userID, "user", "u", "", "user id attached to the trace (defaults to PIPELINE_USER_ID)")
	rootCmd.Flags().IntVarP(&limit, "limit", "l", 0, "results per query variant (defaults to SEARCH_LIMIT)")
	rootCmd.Flags().BoolVar(&score, "score", true, "record a thumbs-up feedback score after a successful run")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, query, userID string, limit int, score bool) error {
	_ = godotenv.Load()

	cfg := config.Load()

	shutdownOTel, err := otelinit.InitProvider(ctx, otelinit.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer func() { _ = shutdownOTel(context.Background()) }()

	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	if userID == "" {
		userID = cfg.UserID
	}

	components, err := di.NewComponents(ctx, cfg, log, score)
	if err != nil {
		log.Error("failed to wire components", "error", err)
		return err
	}
	defer components.Close()

	output, err := components.Pipeline.Execute(ctx, usecase.AnswerMovieQueryInput{
		Query:  query,
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		log.Error("pipeline failed", "error", err)
		return err
	}

	log.Info("session", slog.String("session_id", output.SessionID))
	log.Info("hyde query", slog.String("hyde_query", output.ExpandedQuery))
	log.Info("retrieval counts",
		slog.Int("original", output.OriginalHits),
		slog.Int("expanded", output.ExpandedHits))
	log.Info("reranked movies", slog.String("context", output.RerankedContext))
	log.Info("answer", slog.String("answer", output.Answer))

	return nil
}
