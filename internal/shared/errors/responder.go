package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// internalDetail replaces the text of unmapped errors, which may carry SQL or
// broker messages.
const internalDetail = "the request could not be completed"

// ErrorMapper translates a domain error into a ProblemDetail. It reports false
// for errors it does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem+json responses. Errors are offered to each mapper
// in order; a ProblemDetail error is written as is; anything else is logged
// and reported as an opaque 500.
type Responder struct {
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewResponder builds a responder over mappers. A nil logger uses slog.Default.
func NewResponder(logger *slog.Logger, mappers ...ErrorMapper) *Responder {
	return &Responder{mappers: mappers, logger: logger}
}

// Respond writes problem, defaulting its instance to the request path.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError maps err and writes the result.
func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.log().LogAttrs(c.Request.Context(), slog.LevelError, "unhandled request error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	r.Respond(c, ErrInternal.WithDetail(internalDetail))
}

func (r *Responder) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}
