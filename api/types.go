package api

import "context"

// Upstream relays requests to the backend API.
type Upstream interface {
	Forward(ctx context.Context, method, path string, body []byte) (int, []byte, error)
}

// Cache abstracts the list cache used by read handlers.
type Cache interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Evict(ctx context.Context, keys ...string)
}

// mutationScope is the part of a mutation body that identifies the lists it
// touches.
type mutationScope struct {
	PlanID string `json:"plan_id"`
	SpotID int    `json:"spot_id"`
}
