package raghttp

import (
	"net/http"
	"strings"

	"movie-rag/internal/domain"
	"movie-rag/internal/usecase"

	"github.com/labstack/echo/v4"
)

// QueryRequest is the JSON body for the movie query endpoint.
type QueryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

// QueryResponse exposes the answer and the intermediate pipeline artifacts.
type QueryResponse struct {
	SessionID       string `json:"session_id"`
	ExpandedQuery   string `json:"expanded_query"`
	OriginalHits    int    `json:"original_hits"`
	ExpandedHits    int    `json:"expanded_hits"`
	RerankedContext string `json:"reranked_context"`
	Answer          string `json:"answer"`
}

// Handler serves the RAG pipeline over HTTP.
type Handler struct {
	pipeline usecase.AnswerMovieQueryUsecase
}

func NewHandler(pipeline usecase.AnswerMovieQueryUsecase) *Handler {
	return &Handler{pipeline: pipeline}
}

// AnswerQuery runs the full pipeline for the posted query.
func (h *Handler) AnswerQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	output, err := h.pipeline.Execute(c.Request().Context(), usecase.AnswerMovieQueryInput{
		Query:  req.Query,
		UserID: req.UserID,
		Limit:  req.Limit,
	})
	if err != nil {
		if se, ok := domain.AsStageError(err); ok {
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error": se.Error(),
				"stage": string(se.Stage),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, QueryResponse{
		SessionID:       output.SessionID,
		ExpandedQuery:   output.ExpandedQuery,
		OriginalHits:    output.OriginalHits,
		ExpandedHits:    output.ExpandedHits,
		RerankedContext: output.RerankedContext,
		Answer:          output.Answer,
	})
}
