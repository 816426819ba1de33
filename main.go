package main

import (
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"trip-memo/api"
	"trip-memo/client"
	"trip-memo/storage"
)

func main() {
	logger := log.New()
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		logger.SetLevel(log.DebugLevel)
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		logger.Fatal("missing API_URL")
	}
	up := client.New(apiURL)

	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			logger.Fatalf("invalid CACHE_TTL: %v", err)
		}
		ttl = d
	}
	rc := storage.NewRedisClient(os.Getenv("REDIS_CONNECTION_STRING"))
	if rc == nil {
		logger.Warn("REDIS_CONNECTION_STRING not set, list reads are not cached")
	}
	cache := storage.NewCache(api.NewUpstreamFetcher(up), rc, ttl, logger)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.Register(e, up, cache, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
