package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/resendlabs/resend-go"
	"github.com/sefazor/fanvault-backend/internal/metrics"
	"go.uber.org/zap"
)

const (
	QueueKey       = "emails"
	FailedQueueKey = "emails:failed"
	MaxAttempts    = 3
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	HTML    string    `json:"html"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type failedJob struct {
	Job   Job       `json:"job"`
	Error string    `json:"error"`
	Time  time.Time `json:"time"`
}

func (s *EmailService) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	if err := s.redis.LPush(ctx, QueueKey, string(data)).Err(); err != nil {
		s.log.Error("queue email failed", zap.String("type", job.Type), zap.String("to", job.To), zap.Error(err))
		return fmt.Errorf("queue email: %w", err)
	}
	s.log.Debug("email queued", zap.String("type", job.Type), zap.String("to", job.To))
	return nil
}

func (s *EmailService) QueueLength(ctx context.Context) int64 {
	n, _ := s.redis.LLen(ctx, QueueKey).Result()
	return n
}

// Worker sends queued jobs. A failed job goes back on the queue until
// MaxAttempts, then to the failed list.
type Worker struct {
	redis      redis.Cmdable
	send       SendFunc
	from       string
	pollWait   time.Duration
	retryDelay time.Duration
	log        *zap.Logger
}

func NewWorker(rdb redis.Cmdable, send SendFunc, cfg Config, log *zap.Logger) *Worker {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = cfg.FromName + " <" + cfg.FromAddress + ">"
	}
	return &Worker{
		redis:      rdb,
		send:       send,
		from:       from,
		pollWait:   2 * time.Second,
		retryDelay: 5 * time.Second,
		log:        log,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("email worker stopped")
			return
		default:
			if err := w.ProcessNext(ctx); err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Warn("email queue poll failed", zap.Error(err))
				time.Sleep(w.pollWait)
			}
		}
	}
}

// ProcessNext handles at most one job. redis.Nil means the queue was empty.
func (w *Worker) ProcessNext(ctx context.Context) error {
	result, err := w.redis.BRPop(ctx, w.pollWait, QueueKey).Result()
	if err != nil {
		return err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error("bad email job", zap.Error(err))
		return nil
	}

	job.Tries++
	id, err := w.send(&resend.SendEmailRequest{
		From:    w.from,
		To:      []string{job.To},
		Subject: job.Subject,
		Html:    job.HTML,
	})
	if err == nil {
		metrics.RecordEmail(job.Type, "sent")
		w.log.Info("email sent", zap.String("type", job.Type), zap.String("to", job.To), zap.String("id", id))
		w.updateQueueLength(ctx)
		return nil
	}

	w.log.Warn("email send failed", zap.String("to", job.To), zap.Int("attempt", job.Tries), zap.Error(err))
	if job.Tries < MaxAttempts {
		metrics.RecordEmail(job.Type, "retry")
		if w.retryDelay > 0 {
			time.Sleep(w.retryDelay)
		}
		data, _ := json.Marshal(job)
		return w.redis.LPush(context.WithoutCancel(ctx), QueueKey, string(data)).Err()
	}

	metrics.RecordEmail(job.Type, "failed")
	data, _ := json.Marshal(failedJob{Job: job, Error: err.Error(), Time: time.Now()})
	w.log.Error("email moved to failed queue", zap.String("to", job.To), zap.Int("attempts", job.Tries))
	return w.redis.LPush(context.WithoutCancel(ctx), FailedQueueKey, string(data)).Err()
}

func (w *Worker) updateQueueLength(ctx context.Context) {
	if n, err := w.redis.LLen(ctx, QueueKey).Result(); err == nil {
		metrics.EmailQueueLength.Set(float64(n))
	}
}
