package api

const maxBodySize = 64 * 1024 // 64 KiB

// backend API paths
const (
	upstreamMemoPath     = "/memo"
	upstreamSpotPath     = "/spot"
	upstreamSpotListPath = "/spot/list"
	upstreamPlanPath     = "/plan"
)
