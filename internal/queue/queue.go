package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Client wraps the asynq client behind the small interface the publish
// service depends on.
type Client struct {
	asynq *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynq: asynqClient}
}

func (c *Client) EnqueueFinalize(postID int64, delay time.Duration) error {
	taskPayload, err := json.Marshal(FinalizePostPayload{PostID: postID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeFinalizePost, taskPayload)

	_, err = c.asynq.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Finalize task scheduled for post %d", postID)
	return nil
}
