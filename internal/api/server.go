// Package api exposes the accelerator over HTTP: submit a job, read back the
// stored result. Computations run synchronously inside the request; the core
// is cheap enough that a job completes in microseconds at realistic sizes.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/anvil/internal/job"
)

type Server struct {
	store *MatmulStore
	clock func() time.Time
}

func NewServer(store *MatmulStore) *Server {
	if store == nil {
		store = NewMatmulStore()
	}
	return &Server{
		store: store,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/matmuls", s.handleCreateMatmul)
	e.GET("/v1/matmuls/:id", s.handleGetMatmul)
	e.DELETE("/v1/matmuls/:id", s.handleDeleteMatmul)
}

func (s *Server) handleCreateMatmul(c *echo.Context) error {
	req, err := decodeJSON[MatmulRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	resp, err := s.runMatmul(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return writeBadRequest(c, err.Error())
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// runMatmul validates the request, drives a core to completion and stores the
// result. Validation failures come back wrapping ErrInvalidRequest.
func (s *Server) runMatmul(ctx context.Context, req MatmulRequest) (MatmulResponse, error) {
	j := &job.Job{
		Width:    req.Width,
		Lanes:    req.Lanes,
		Hidden:   req.Hidden,
		Patches:  req.Patches,
		WideBias: req.WideBias,
		Input:    req.Input,
		Weights:  req.Weights,
		Bias:     req.Bias,
	}
	if j.Width == 0 {
		j.Width = job.DefaultWidth
	}
	if err := j.Validate(); err != nil {
		return MatmulResponse{}, newInvalidRequest(err.Error())
	}

	res, err := job.Run(ctx, j, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return MatmulResponse{}, err
		}
		// Anything else the core rejects is a bad job description.
		return MatmulResponse{}, newInvalidRequest(err.Error())
	}

	return s.store.Put(MatmulResponse{
		Object:    "matmul",
		CreatedAt: s.clock().Unix(),
		Status:    "completed",
		Width:     j.Width,
		Lanes:     j.Lanes,
		Hidden:    j.Hidden,
		Patches:   j.Patches,
		Output:    res.Output,
		Elements:  res.Elements,
		Ticks:     res.Ticks,
	}), nil
}

func (s *Server) handleGetMatmul(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "matmul not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteMatmul(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "matmul not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "matmul.deleted",
		"deleted": true,
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
