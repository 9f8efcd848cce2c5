package queue

import (
	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/repository"
)

// Queue finalizes deferred posts: platforms with container-style flows
// (Instagram) create the media at publish time and publish it here once
// the scheduled moment arrives.
type Queue struct {
	cfg      cfg.Config
	pr       repository.PostRepository
	ar       repository.SocialAccountRepository
	registry *platform.Registry
}

func NewQueue(
	cfg cfg.Config,
	pr repository.PostRepository,
	ar repository.SocialAccountRepository,
	registry *platform.Registry) *Queue {
	return &Queue{
		cfg:      cfg,
		pr:       pr,
		ar:       ar,
		registry: registry,
	}
}

const TaskTypeFinalizePost = "finalize:post"

type FinalizePostPayload struct {
	PostID int64 `json:"post_id"`
}
