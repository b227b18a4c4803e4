package webapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/atomic"
)

var healthy = atomic.NewBool(false)

func healthzWorker(ctx context.Context) {
	// set healthy to false as soon as worker exits
	defer healthy.Store(false)

	healthy.Store(true)
	<-ctx.Done()
}

func getHealthz(c echo.Context) error {
	if !healthy.Load() {
		return c.NoContent(http.StatusServiceUnavailable)
	}

	return c.NoContent(http.StatusOK)
}
