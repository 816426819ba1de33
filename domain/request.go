package domain

// CreateMemoRequest is the body of a create memo mutation. A nil Password is
// sent as null for public plans.
type CreateMemoRequest struct {
	Password *string `json:"password"`
	PlanID   string  `json:"plan_id"`
	SpotID   int     `json:"spot_id"`
	Text     string  `json:"text"`
	Mark     Mark    `json:"marked"`
}

// DeleteMemoRequest is the body of a delete memo mutation.
type DeleteMemoRequest struct {
	Password *string `json:"password"`
	PlanID   string  `json:"plan_id"`
	SpotID   int     `json:"spot_id"`
	MemoID   int     `json:"memo_id"`
}

// DeleteSpotRequest is the body of a delete spot mutation.
type DeleteSpotRequest struct {
	Password *string `json:"password"`
	PlanID   string  `json:"plan_id"`
	SpotID   int     `json:"spot_id"`
}
