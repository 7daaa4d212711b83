package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeDispatchSearch = "dispatch:search"

// SearchPayload is the durable job body: just the request to search for.
// Everything else is re-read from the store so replays act on current state.
type SearchPayload struct {
	RequestID string `json:"requestId"`
}

// NewSearchTask builds a dispatch search task, optionally delayed.
func NewSearchTask(requestID string, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(SearchPayload{RequestID: requestID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDispatchSearch, b)

	var opts []asynq.Option
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	return task, opts, nil
}
