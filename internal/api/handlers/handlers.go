package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/api/handlers/common"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
	}
}
