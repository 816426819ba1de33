package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"trip-memo/client"
	"trip-memo/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, up Upstream, cache Cache, logger *log.Logger) {
	e.POST("/api/memo/create", mutate(up, cache, logger, http.MethodPost, upstreamMemoPath, memoListKeys))
	e.POST("/api/memo/delete", mutate(up, cache, logger, http.MethodDelete, upstreamMemoPath, memoListKeys))
	e.POST("/api/spot/delete", mutate(up, cache, logger, http.MethodDelete, upstreamSpotPath, spotKeys))
	e.GET(domain.MemoListPath, readList(cache, logger, memoListKeyFromQuery))
	e.GET(domain.SpotListPath, readList(cache, logger, spotListKeyFromQuery))
	e.GET("/api/spot/readSpot", relay(up, logger, http.MethodGet, spotTarget))
	e.GET("/api/plan", relay(up, logger, http.MethodGet, planTarget))
	e.PUT("/api/plan/update", relay(up, logger, http.MethodPut, planUpdateTarget))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// relayStatus answers with the status code as the JSON body, the way the
// front-end proxies report upstream failures.
func relayStatus(c echo.Context, status int) error {
	return c.JSON(status, status)
}

func memoListKeys(s mutationScope) []string {
	return []string{domain.MemoListKey(s.PlanID, s.SpotID)}
}

// A deleted spot drops out of the spot list and takes its memos with it.
func spotKeys(s mutationScope) []string {
	return []string{domain.SpotListKey(s.PlanID), domain.MemoListKey(s.PlanID, s.SpotID)}
}

func mutate(up Upstream, cache Cache, logger *log.Logger, method, path string, keys func(mutationScope) []string) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newProxyRequestMetrics(c.Request().Context(), logger, c.Path())
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		body, readErr := io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize))
		if readErr != nil {
			metrics.SetErrorStage("read_body")
			return relayStatus(c, http.StatusBadRequest)
		}
		var scope mutationScope
		if sonic.Unmarshal(body, &scope) != nil || scope.PlanID == "" {
			metrics.SetErrorStage("invalid_body")
			return relayStatus(c, http.StatusBadRequest)
		}

		start := time.Now()
		status, resp, fwdErr := up.Forward(ctx, method, path, body)
		metrics.ObserveUpstream(time.Since(start), status)
		if fwdErr != nil {
			metrics.SetErrorStage("upstream")
			logger.WithError(fwdErr).WithField("route", c.Path()).Error("upstream request failed")
			return relayStatus(c, http.StatusBadGateway)
		}
		if status < 200 || status >= 300 {
			metrics.SetErrorStage("upstream_status")
			return relayStatus(c, status)
		}

		var applied bool
		if err := sonic.Unmarshal(resp, &applied); err != nil {
			metrics.SetErrorStage("decode_upstream")
			logger.WithError(err).WithField("route", c.Path()).Error("unexpected upstream body")
			return relayStatus(c, http.StatusBadGateway)
		}
		if applied {
			evict := keys(scope)
			cache.Evict(ctx, evict...)
			metrics.SetEvictedKeys(len(evict))
		}
		return c.JSON(http.StatusOK, applied)
	}
}

func memoListKeyFromQuery(q url.Values) (string, bool) {
	planID := q.Get("plan_id")
	spotID, err := strconv.Atoi(q.Get("spot_id"))
	if planID == "" || err != nil {
		return "", false
	}
	return domain.MemoListKey(planID, spotID), true
}

func spotListKeyFromQuery(q url.Values) (string, bool) {
	planID := q.Get("planId")
	if planID == "" {
		return "", false
	}
	return domain.SpotListKey(planID), true
}

func readList(cache Cache, logger *log.Logger, key func(url.Values) (string, bool)) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newProxyRequestMetrics(c.Request().Context(), logger, c.Path())
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		k, ok := key(c.QueryParams())
		if !ok {
			metrics.SetErrorStage("invalid_query")
			return relayStatus(c, http.StatusBadRequest)
		}
		metrics.SetCacheRead(true)
		data, fetchErr := cache.Fetch(ctx, k)
		if fetchErr != nil {
			var statusErr *client.StatusError
			if errors.As(fetchErr, &statusErr) {
				metrics.SetErrorStage("upstream_status")
				return relayStatus(c, statusErr.StatusCode)
			}
			metrics.SetErrorStage("upstream")
			logger.WithError(fetchErr).WithField("key", k).Error("list fetch failed")
			return relayStatus(c, http.StatusBadGateway)
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func spotTarget(c echo.Context) (string, bool) {
	planID, spotID := c.QueryParam("planId"), c.QueryParam("spotId")
	if planID == "" || spotID == "" {
		return "", false
	}
	return upstreamSpotPath + "?" + url.Values{"plan_id": {planID}, "spot_id": {spotID}}.Encode(), true
}

func planTarget(c echo.Context) (string, bool) {
	planID := c.QueryParam("planId")
	if planID == "" {
		return "", false
	}
	return upstreamPlanPath + "?" + url.Values{"plan_id": {planID}}.Encode(), true
}

func planUpdateTarget(echo.Context) (string, bool) {
	return upstreamPlanPath, true
}

// relay forwards the request unchanged and relays the upstream JSON answer.
func relay(up Upstream, logger *log.Logger, method string, target func(echo.Context) (string, bool)) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newProxyRequestMetrics(c.Request().Context(), logger, c.Path())
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		path, ok := target(c)
		if !ok {
			metrics.SetErrorStage("invalid_query")
			return relayStatus(c, http.StatusBadRequest)
		}
		var body []byte
		if method != http.MethodGet {
			var readErr error
			if body, readErr = io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize)); readErr != nil {
				metrics.SetErrorStage("read_body")
				return relayStatus(c, http.StatusBadRequest)
			}
		}

		start := time.Now()
		status, resp, fwdErr := up.Forward(ctx, method, path, body)
		metrics.ObserveUpstream(time.Since(start), status)
		if fwdErr != nil {
			metrics.SetErrorStage("upstream")
			logger.WithError(fwdErr).WithField("route", c.Path()).Error("upstream request failed")
			return relayStatus(c, http.StatusBadGateway)
		}
		if status < 200 || status >= 300 {
			metrics.SetErrorStage("upstream_status")
			return relayStatus(c, status)
		}
		return c.JSONBlob(http.StatusOK, resp)
	}
}
