package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"movie-rag/internal/di"
	"movie-rag/internal/domain"
	"movie-rag/internal/infra/config"
	"movie-rag/internal/infra/logger"
)

func main() {
	var (
		dataPath  string
		batchSize int
		batchRate float64
	)

	rootCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Create the movie table and load a CSV dataset into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), dataPath, batchSize, batchRate)
		},
	}

	rootCmd.Flags().StringVarP(&dataPath, "data", "d", "data/movies.csv", "path to the movie CSV dataset")
	rootCmd.Flags().IntVarP(&batchSize, "batch-size", "b", 2000, "rows per upsert batch")
	rootCmd.Flags().Float64Var(&batchRate, "rate", 1.0, "embedding batches per second")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, dataPath string, batchSize int, batchRate float64) error {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	components, err := di.NewComponents(ctx, cfg, log, false)
	if err != nil {
		log.Error("failed to wire components", "error", err)
		return err
	}
	defer components.Close()

	log.Info("reading data", slog.String("path", dataPath))
	movies, err := readMovies(dataPath)
	if err != nil {
		log.Error("failed to read dataset", "error", err)
		return err
	}

	log.Info("creating table", slog.String("table", cfg.MovieTable))
	if err := components.Store.EnsureSchema(ctx, cfg.MovieTable, cfg.EmbeddingDims); err != nil {
		log.Error("failed to create table", "error", err)
		return err
	}

	log.Info("adding data to table", slog.Int("rows", len(movies)), slog.Int("batch_size", batchSize))
	bar := progressbar.Default(int64(len(movies)), "ingesting")
	limiter := rate.NewLimiter(rate.Limit(batchRate), 1)

	for start := 0; start < len(movies); start += batchSize {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(movies) {
			end = len(movies)
		}
		if err := components.Store.Upsert(ctx, cfg.MovieTable, movies[start:end]); err != nil {
			log.Error("failed to upsert batch",
				slog.Int("from", start), slog.Int("to", end), "error", err)
			return err
		}
		_ = bar.Add(end - start)
	}

	log.Info("running smoke query")
	res, err := components.Store.Search(ctx, cfg.MovieTable, "I would like a movie with dragons.", 1)
	if err != nil {
		log.Error("smoke query failed", "error", err)
		return err
	}
	if len(res) > 0 {
		log.Info("smoke query result",
			slog.String("title", res[0].Title),
			slog.String("overview", res[0].Overview))
	}

	return nil
}

// readMovies parses a CSV with header id,title,release_date,runtime,genre,overview.
func readMovies(path string) ([]domain.MovieRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 6

	// header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var movies []domain.MovieRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q: %w", line, record[0], err)
		}
		releaseDate, err := time.Parse("2006-01-02", record[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid release_date %q: %w", line, record[2], err)
		}
		runtime, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid runtime %q: %w", line, record[3], err)
		}

		movies = append(movies, domain.MovieRecord{
			ID:          id,
			Title:       record[1],
			ReleaseDate: releaseDate,
			Runtime:     runtime,
			Genre:       record[4],
			Overview:    record[5],
		})
	}
	return movies, nil
}
