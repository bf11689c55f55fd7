// Package queue defines message payloads exchanged over the message broker.
package queue

// QueueName is the durable queue carrying generation events.
const QueueName = "comment.generated"

// CommentGeneratedEvent is published after a comment was successfully
// generated and charged against the user's quota. It carries enough for
// downstream consumers to build a generation history without querying
// the primary database. The comment text itself is not shipped, only its
// size, to keep user content out of the broker.
type CommentGeneratedEvent struct {
	UserID      string `json:"user_id"`
	Tier        string `json:"tier"`
	UsedToday   int    `json:"used_today"`
	Limit       int    `json:"limit"`
	Model       string `json:"model"`
	Persona     string `json:"persona"`
	Language    string `json:"language"`
	CommentSize int    `json:"comment_size"`
	GeneratedAt string `json:"generated_at"`
}
