package game

// Callback tells the authority how to report a step of the grant. With a URL
// the authority POSTs Payload there and waits for the reply; otherwise it
// enqueues a Cmd task on Queue with Payload.
type Callback struct {
	Cmd     string         `json:"cmd,omitempty"`
	Queue   string         `json:"queue,omitempty"`
	URL     string         `json:"url,omitempty"`
	Payload map[string]any `json:"payload"`
}

// GrantPayload is the body of a grant task.
type GrantPayload struct {
	UserID     string   `json:"userId"`
	EventID    string   `json:"eventId"`
	RewardID   string   `json:"rewardId"`
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	Qty        int      `json:"qty"`
	Processing Callback `json:"processing"`
	Callback   Callback `json:"callback"`
}

type queryRequest struct {
	UserID string `json:"userId"`
	Field  string `json:"field"`
}

type queryResponse struct {
	Value *float64 `json:"value"`
}
