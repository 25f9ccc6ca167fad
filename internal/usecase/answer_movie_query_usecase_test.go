package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"movie-rag/internal/domain"
	"movie-rag/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	complete func(ctx context.Context, prompt string) (string, error)
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.complete(ctx, prompt)
}

func (f *fakeLLM) Model() string { return "stub" }

type fakeStore struct {
	search func(ctx context.Context, table, query string, limit int) ([]domain.MovieRecord, error)
}

func (f *fakeStore) EnsureSchema(context.Context, string, int) error {
	return errors.New("not implemented")
}

func (f *fakeStore) Upsert(context.Context, string, []domain.MovieRecord) error {
	return errors.New("not implemented")
}

func (f *fakeStore) Search(ctx context.Context, table, query string, limit int) ([]domain.MovieRecord, error) {
	return f.search(ctx, table, query, limit)
}

type recordingObserver struct {
	spans  []string
	failed []error
	scores []domain.FeedbackScore
}

func (o *recordingObserver) StartSpan(ctx context.Context, name string, _ domain.TraceHandle) (context.Context, domain.Span) {
	o.spans = append(o.spans, name)
	return ctx, &recordingSpan{observer: o}
}

func (o *recordingObserver) Score(_ context.Context, _ domain.TraceHandle, _ string, score domain.FeedbackScore) {
	o.scores = append(o.scores, score)
}

type recordingSpan struct {
	observer *recordingObserver
}

func (s *recordingSpan) Annotate(string, string) {}
func (s *recordingSpan) Fail(err error)          { s.observer.failed = append(s.observer.failed, err) }
func (s *recordingSpan) End()                    {}

const hydeSummary = "A fearless rider bonds with a wild dragon to save their homeland."

var titlePattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// scriptedLLM answers the three pipeline prompts deterministically: the HyDE
// prompt gets a fixed summary, the rerank prompt echoes the deduplicated
// titles, and the answer prompt names the first title in the context.
func scriptedLLM() *fakeLLM {
	f := &fakeLLM{}
	f.complete = func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Create a one-sentence summary"):
			return hydeSummary, nil
		case strings.Contains(prompt, "Please re-rank"):
			seen := map[string]bool{}
			var titles []string
			for _, m := range titlePattern.FindAllStringSubmatch(prompt, -1) {
				if !seen[m[1]] {
					seen[m[1]] = true
					titles = append(titles, "**"+m[1]+"**")
				}
			}
			if len(titles) == 0 {
				return "No movies matched the query.", nil
			}
			return strings.Join(titles, "\n"), nil
		case strings.Contains(prompt, "Provide an answer"):
			matches := titlePattern.FindAllStringSubmatch(prompt, -1)
			if len(matches) == 0 {
				return "I could not find a relevant movie for you this time.", nil
			}
			return fmt.Sprintf("You should watch %s, it fits your query perfectly!", matches[0][1]), nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", prompt)
		}
	}
	return f
}

func dragonStore(t *testing.T) *fakeStore {
	t.Helper()
	release := time.Date(1983, 6, 19, 0, 0, 0, 0, time.UTC)
	dragonsLair := domain.MovieRecord{ID: 1, Title: "Dragon's Lair", Genre: "Fantasy", ReleaseDate: release, Overview: "A knight rescues a princess from a dragon."}
	castleKeep := domain.MovieRecord{ID: 2, Title: "Castle Keep", Genre: "War", ReleaseDate: release, Overview: "Soldiers defend a medieval castle."}
	skyWyrm := domain.MovieRecord{ID: 3, Title: "Sky Wyrm", Genre: "Fantasy", ReleaseDate: release, Overview: "A serpent rules the skies."}

	return &fakeStore{
		search: func(_ context.Context, table, query string, limit int) ([]domain.MovieRecord, error) {
			require.Equal(t, "movie", table)
			require.Equal(t, 3, limit)
			if query == hydeSummary {
				return []domain.MovieRecord{dragonsLair, skyWyrm}, nil
			}
			return []domain.MovieRecord{dragonsLair, castleKeep}, nil
		},
	}
}

func newPipeline(llm domain.LLMClient, store domain.MovieStore, observer domain.Observer, score bool) usecase.AnswerMovieQueryUsecase {
	return usecase.NewAnswerMovieQueryUsecase(
		usecase.NewQueryExpander(llm),
		usecase.NewSemanticRetriever(store),
		usecase.NewResultReranker(llm),
		usecase.NewAnswerSynthesizer(llm),
		observer,
		"movie",
		3,
		score,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestAnswerMovieQuery_DragonsScenario(t *testing.T) {
	llm := scriptedLLM()
	observer := &recordingObserver{}
	pipeline := newPipeline(llm, dragonStore(t), observer, true)

	output, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{
		Query:  "I would like to watch a movie with dragons",
		UserID: "AnonimizedLele",
	})
	require.NoError(t, err)

	assert.Len(t, output.SessionID, 32)
	assert.Equal(t, hydeSummary, output.ExpandedQuery)
	assert.Equal(t, 2, output.OriginalHits)
	assert.Equal(t, 2, output.ExpandedHits)

	// Merge yields 4 entries with Dragon's Lair duplicated; the reranker must
	// emit exactly 3 distinct titles.
	titles := titlePattern.FindAllStringSubmatch(output.RerankedContext, -1)
	require.Len(t, titles, 3)
	seen := map[string]bool{}
	for _, m := range titles {
		assert.False(t, seen[m[1]], "duplicate title %q in reranked context", m[1])
		seen[m[1]] = true
	}
	assert.True(t, seen["Dragon's Lair"])
	assert.True(t, seen["Castle Keep"])
	assert.True(t, seen["Sky Wyrm"])

	named := 0
	for title := range seen {
		if strings.Contains(output.Answer, title) {
			named++
		}
	}
	assert.Equal(t, 1, named, "the answer must name exactly one of the candidates")

	assert.Equal(t, []domain.FeedbackScore{domain.ScoreThumbUp}, observer.scores)
	assert.Empty(t, observer.failed)
}

func TestAnswerMovieQuery_MergeOrderOriginalFirst(t *testing.T) {
	llm := scriptedLLM()
	pipeline := newPipeline(llm, dragonStore(t), &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{
		Query: "I would like to watch a movie with dragons",
	})
	require.NoError(t, err)

	var rerankPrompt string
	for _, p := range llm.prompts {
		if strings.Contains(p, "Please re-rank") {
			rerankPrompt = p
		}
	}
	require.NotEmpty(t, rerankPrompt)

	var got []string
	for _, m := range titlePattern.FindAllStringSubmatch(rerankPrompt, -1) {
		got = append(got, m[1])
	}
	assert.Equal(t, []string{"Dragon's Lair", "Castle Keep", "Dragon's Lair", "Sky Wyrm"}, got)
}

func TestAnswerMovieQuery_Idempotent(t *testing.T) {
	pipeline := newPipeline(scriptedLLM(), dragonStore(t), &recordingObserver{}, false)
	input := usecase.AnswerMovieQueryInput{Query: "I would like to watch a movie with dragons"}

	first, err := pipeline.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := pipeline.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.ExpandedQuery, second.ExpandedQuery)
	assert.Equal(t, first.OriginalHits, second.OriginalHits)
	assert.Equal(t, first.ExpandedHits, second.ExpandedHits)
	assert.Equal(t, first.RerankedContext, second.RerankedContext)
	assert.Equal(t, first.Answer, second.Answer)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestAnswerMovieQuery_EmptyResults(t *testing.T) {
	store := &fakeStore{
		search: func(context.Context, string, string, int) ([]domain.MovieRecord, error) {
			return []domain.MovieRecord{}, nil
		},
	}
	pipeline := newPipeline(scriptedLLM(), store, &recordingObserver{}, false)

	output, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{
		Query: "an obscure movie nobody has heard of",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, output.OriginalHits)
	assert.Equal(t, 0, output.ExpandedHits)
	assert.NotEmpty(t, output.Answer, "an empty candidate set must still produce an answer")
}

func TestAnswerMovieQuery_ExpansionFailure(t *testing.T) {
	searched := false
	store := &fakeStore{
		search: func(context.Context, string, string, int) ([]domain.MovieRecord, error) {
			searched = true
			return nil, nil
		},
	}
	llm := &fakeLLM{complete: func(context.Context, string) (string, error) {
		return "", errors.New("llm unavailable")
	}}
	observer := &recordingObserver{}
	pipeline := newPipeline(llm, store, observer, true)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "dragons"})
	require.Error(t, err)

	se, ok := domain.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageExpansion, se.Stage)
	assert.False(t, searched, "retrieval must not run after a failed expansion")
	assert.Empty(t, observer.scores, "no feedback score on failure")
	assert.NotEmpty(t, observer.failed)
}

func TestAnswerMovieQuery_EmptyExpansionIsFatal(t *testing.T) {
	llm := &fakeLLM{complete: func(context.Context, string) (string, error) {
		return "   ", nil
	}}
	pipeline := newPipeline(llm, dragonStore(t), &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "dragons"})
	require.Error(t, err)

	se, ok := domain.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageExpansion, se.Stage)
	assert.ErrorIs(t, err, domain.ErrEmptyCompletion)
}

func TestAnswerMovieQuery_RetrievalFailure(t *testing.T) {
	store := &fakeStore{
		search: func(_ context.Context, _, query string, _ int) ([]domain.MovieRecord, error) {
			if query == hydeSummary {
				return nil, errors.New("table movie not found")
			}
			return []domain.MovieRecord{{ID: 1, Title: "Dragon's Lair"}}, nil
		},
	}
	pipeline := newPipeline(scriptedLLM(), store, &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "dragons"})
	require.Error(t, err)

	se, ok := domain.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageRetrieval, se.Stage, "one failed variant fails the whole retrieval")
}

func TestAnswerMovieQuery_RerankFailure(t *testing.T) {
	llm := scriptedLLM()
	inner := llm.complete
	llm.complete = func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Please re-rank") {
			return "", errors.New("rate limited")
		}
		return inner(ctx, prompt)
	}
	pipeline := newPipeline(llm, dragonStore(t), &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "I would like to watch a movie with dragons"})
	require.Error(t, err)

	se, ok := domain.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageRerank, se.Stage)
}

func TestAnswerMovieQuery_SynthesisFailure(t *testing.T) {
	llm := scriptedLLM()
	inner := llm.complete
	llm.complete = func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Provide an answer") {
			return "", errors.New("context deadline exceeded")
		}
		return inner(ctx, prompt)
	}
	pipeline := newPipeline(llm, dragonStore(t), &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "I would like to watch a movie with dragons"})
	require.Error(t, err)

	se, ok := domain.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageSynthesis, se.Stage)
}

func TestAnswerMovieQuery_EmptyQuery(t *testing.T) {
	pipeline := newPipeline(scriptedLLM(), dragonStore(t), &recordingObserver{}, false)

	_, err := pipeline.Execute(context.Background(), usecase.AnswerMovieQueryInput{Query: "  "})
	require.Error(t, err)
	_, ok := domain.AsStageError(err)
	assert.False(t, ok, "input validation is not a stage failure")
}
