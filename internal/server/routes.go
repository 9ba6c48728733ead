package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Router is implemented by every handler.
type Router interface {
	RegisterRoutes(e *echo.Echo)
}

func RegisterRoutes(e *echo.Echo, routers ...Router) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, r := range routers {
		r.RegisterRoutes(e)
	}
}
