package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"trip-memo/client"
	"trip-memo/domain"
	"trip-memo/storage"
)

// NewUpstreamFetcher returns a cache fetcher resolving list keys against the
// backend API.
func NewUpstreamFetcher(up Upstream) storage.Fetcher {
	return storage.FetcherFunc(func(ctx context.Context, key string) ([]byte, error) {
		path, err := upstreamPathForKey(key)
		if err != nil {
			return nil, err
		}
		status, body, err := up.Forward(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, &client.StatusError{StatusCode: status, Body: body}
		}
		return body, nil
	})
}

func upstreamPathForKey(key string) (string, error) {
	u, err := url.Parse(key)
	if err != nil {
		return "", fmt.Errorf("invalid cache key %q: %w", key, err)
	}
	q := u.Query()
	switch u.Path {
	case domain.MemoListPath:
		return upstreamMemoPath + "?" + url.Values{
			"plan_id": {q.Get("plan_id")},
			"spot_id": {q.Get("spot_id")},
		}.Encode(), nil
	case domain.SpotListPath:
		return upstreamSpotListPath + "?" + url.Values{"plan_id": {q.Get("planId")}}.Encode(), nil
	default:
		return "", fmt.Errorf("no upstream for cache key %q", key)
	}
}
