package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"memoryvault/core"

	"github.com/hibiken/asynq"
)

// TaskMagicLink is the asynq task type for queued sign-in mail.
const TaskMagicLink = "mail:magic_link"

type magicLinkPayload struct {
	To   string `json:"to"`
	Link string `json:"link"`
}

// QueueSender enqueues sign-in mail for the worker started by StartWorker.
type QueueSender struct {
	client   *asynq.Client
	maxRetry int
}

func NewQueueSender(redisURL string, maxRetry int) (*QueueSender, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if maxRetry < 0 {
		maxRetry = 0
	}
	return &QueueSender{client: asynq.NewClient(opt), maxRetry: maxRetry}, nil
}

func (q *QueueSender) SendMagicLink(ctx context.Context, to, link string) error {
	task, err := newMagicLinkTask(to, link, q.maxRetry)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue mail: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (q *QueueSender) Close() error {
	return q.client.Close()
}

func newMagicLinkTask(to, link string, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(magicLinkPayload{To: to, Link: link})
	if err != nil {
		return nil, err
	}
	// links expire after a day, so there is no point keeping the task longer
	return asynq.NewTask(
		TaskMagicLink,
		payload,
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// asynqLoggerAdapter routes asynq logs to the standard logger
type asynqLoggerAdapter struct{}

func (asynqLoggerAdapter) Debug(args ...interface{}) {}

func (asynqLoggerAdapter) Info(args ...interface{}) {
	log.Print(append([]interface{}{"[asynq] "}, args...)...)
}

func (asynqLoggerAdapter) Warn(args ...interface{}) {
	log.Print(append([]interface{}{"[asynq] WARN "}, args...)...)
}

func (asynqLoggerAdapter) Error(args ...interface{}) {
	log.Print(append([]interface{}{"[asynq] ERROR "}, args...)...)
}

func (asynqLoggerAdapter) Fatal(args ...interface{}) {
	log.Fatal(append([]interface{}{"[asynq] FATAL "}, args...)...)
}

// StartWorker runs an embedded asynq server delivering queued mail through inner.
// The returned func stops it.
func StartWorker(redisURL string, inner Sender) (stop func(), err error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency:     2,
		ShutdownTimeout: 10 * time.Second,
		Logger:          asynqLoggerAdapter{},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				core.LogErrorWithContext(core.SourceMail, "magic link delivery failed", err.Error(), map[string]interface{}{
					"task":    task.Type(),
					"retried": retried,
				})
			}
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskMagicLink, handleMagicLink(inner))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start mail worker: %w", err)
	}
	log.Println("Mail worker started")
	return srv.Shutdown, nil
}

func handleMagicLink(inner Sender) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var p magicLinkPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.To == "" || p.Link == "" {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if err := inner.SendMagicLink(ctx, p.To, p.Link); err != nil {
			log.Printf("Queued magic link to %s failed: %v", p.To, err)
			return err
		}
		return nil
	}
}
