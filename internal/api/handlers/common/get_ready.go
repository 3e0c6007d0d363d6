package common

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/contract/remote"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/util"
)

const (
	// https://en.wikipedia.org/wiki/List_of_HTTP_status_codes
	// 521 Web Server Is Down
	statusNotReady = 521

	rpcHealthBudget = 2 * time.Second
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. respond to queries).
// Does read-only probes apart from the general server ready state.
// Note that /-/ready is typically public (and not shielded by a mgmt-secret), we thus prevent information leakage here and only return `"Ready."`.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if !s.Ready() {
			log.Warn().Msg("Readiness check failed, server is not fully initialized")
			return c.String(statusNotReady, "Not ready.")
		}

		health, err := remote.Call(ctx, "getHealth", rpcHealthBudget, func(ctx context.Context) (*rpc.Health, error) {
			return s.RPC.GetHealth(ctx)
		})
		if err != nil {
			log.Warn().Err(err).Msg("Readiness check failed, ledger RPC endpoint unreachable")
			return c.String(statusNotReady, "Not ready.")
		}
		if health.Status != "healthy" {
			log.Warn().Str("status", health.Status).Msg("Readiness check failed, ledger RPC endpoint unhealthy")
			return c.String(statusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
