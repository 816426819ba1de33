package domain

import (
	"net/url"
	"strconv"
)

const (
	MemoListPath = "/api/memo/read"
	SpotListPath = "/api/spot/readSpotList"
)

// MemoListKey is the cache key of the memo list for one spot.
func MemoListKey(planID string, spotID int) string {
	return MemoListPath + "?plan_id=" + url.QueryEscape(planID) + "&spot_id=" + strconv.Itoa(spotID)
}

// SpotListKey is the cache key of the spot list for one plan.
func SpotListKey(planID string) string {
	return SpotListPath + "?planId=" + url.QueryEscape(planID)
}
