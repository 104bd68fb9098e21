package notification

import "context"

// Job is one notification to fan out to every configured channel.
type Job struct {
	Subject string
	Body    string
}

// SenderAPI is a single delivery channel. Channels fail independently: one
// channel erroring never prevents the others from delivering.
type SenderAPI interface {
	Name() string
	Send(ctx context.Context, job Job) error
}
