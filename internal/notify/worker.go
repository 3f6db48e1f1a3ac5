package notify

import (
	"context"
	"fmt"
	"log/slog"

	"sakanka/pkg/queue"
)

// ListingConfirmedBody renders the SMS sent to a seller once their listing
// is live.
func ListingConfirmedBody(title string, price float64) string {
	if price > 0 {
		return fmt.Sprintf("Sakanka: your listing %q is now live at GHS %.2f. Reply STOP to opt out.", title, price)
	}
	return fmt.Sprintf("Sakanka: your listing %q is now live. Reply STOP to opt out.", title)
}

// OTPBody renders the one-time code SMS used during sign-in.
func OTPBody(code string) string {
	return fmt.Sprintf("Sakanka verification code: %s. It expires in 5 minutes.", code)
}

// Worker drains the notification queue and delivers each message through
// the configured sender.
type Worker struct {
	queue  *queue.RedisNotifyQueue
	sender Sender
	logger *slog.Logger
}

func NewWorker(q *queue.RedisNotifyQueue, sender Sender, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{queue: q, sender: sender, logger: logger}
}

// Run starts the consumers and blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context, concurrency int) error {
	w.queue.Start(ctx, concurrency, w.deliver)
	<-ctx.Done()
	return ctx.Err()
}

func (w *Worker) deliver(ctx context.Context, job queue.Notification) error {
	if err := w.sender.Send(ctx, job.Phone, job.Body); err != nil {
		w.logger.Warn("sms delivery failed", "job_id", job.ID, "attempt", job.Attempts, "error", err)
		return err
	}
	w.logger.Info("sms delivered", "job_id", job.ID, "phone", job.Phone)
	return nil
}
