package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo"

	"github.com/bountyboard/mintwatch/packages/jsonmodels"
	"github.com/bountyboard/mintwatch/packages/reconciler"
)

const defaultMaxWait = time.Minute

// mintHandler serves the endpoints of the current mint attempt.
type mintHandler struct {
	reconciler *reconciler.Reconciler
	maxWait    time.Duration
}

func registerMintRoutes(server *echo.Echo, r *reconciler.Reconciler, maxWait time.Duration) {
	handler := &mintHandler{reconciler: r, maxWait: maxWait}

	server.POST("/mint", handler.start)
	server.POST("/mint/reset", handler.reset)
	server.GET("/mint/status", handler.status)
}

// start supersedes the current attempt. It answers as soon as the mint was handed to the ledger.
func (h *mintHandler) start(c echo.Context) error {
	var request jsonmodels.MintRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err))
	}

	status, err := h.reconciler.Start(request.Actor, request.Amount)
	if err != nil {
		if errors.Is(err, reconciler.ErrPrecondition) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse(err))
		}
		if errors.Is(err, reconciler.ErrShutdown) {
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse(err))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(err))
	}

	return c.JSON(http.StatusAccepted, jsonmodels.NewMintStatusResponse(status))
}

func (h *mintHandler) reset(c echo.Context) error {
	h.reconciler.Reset()

	return c.JSON(http.StatusOK, jsonmodels.NewMintStatusResponse(h.reconciler.Status()))
}

// status returns the status of the current attempt. With ?wait=<duration> it holds the request until the attempt
// left the pending phase or the wait elapsed.
func (h *mintHandler) status(c echo.Context) error {
	wait := c.QueryParam("wait")
	if wait == "" {
		return c.JSON(http.StatusOK, jsonmodels.NewMintStatusResponse(h.reconciler.Status()))
	}

	timeout, err := time.ParseDuration(wait)
	if err != nil || timeout < 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(errors.Newf("invalid wait %q", wait)))
	}
	if timeout > h.maxWait {
		timeout = h.maxWait
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	status, err := h.reconciler.Await(ctx)
	switch {
	case err == nil, errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusOK, jsonmodels.NewMintStatusResponse(status))
	case errors.Is(err, reconciler.ErrShutdown):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse(err))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(err))
	}
}
