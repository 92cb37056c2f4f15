package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/pkg/pagination"
	"github.com/mo-amir99/course-progress-server/pkg/socketio"
)

// Pusher delivers real-time events to connected learners.
type Pusher interface {
	EmitToUser(userID, event string, payload any) error
}

// Mailer sends notification emails.
type Mailer interface {
	SendNotification(to, title, message string) error
	SendCourseCompleted(to, learnerName, courseTitle, courseID string) error
}

// Recipients resolves the account a notification is addressed to.
type Recipients interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Dispatcher persists notifications and fans them out to live sockets and email.
type Dispatcher struct {
	store      Store
	pusher     Pusher
	mailer     Mailer
	recipients Recipients
	logger     *slog.Logger
	now        func() time.Time
	mailing    sync.WaitGroup
}

// NewDispatcher builds a Dispatcher. pusher, mailer and recipients may be nil.
func NewDispatcher(store Store, pusher Pusher, mailer Mailer, recipients Recipients, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:      store,
		pusher:     pusher,
		mailer:     mailer,
		recipients: recipients,
		logger:     logger,
		now:        time.Now,
	}
}

// Notify stores n and delivers it. Only the store write can fail the call;
// push and email failures are logged. Email goes out in the background.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) (Notification, error) {
	if n.Data == nil {
		n.Data = map[string]interface{}{}
	}
	if err := d.store.Create(ctx, &n); err != nil {
		return Notification{}, err
	}

	if d.pusher != nil {
		if err := d.pusher.EmitToUser(n.UserID.String(), socketio.EventNotification, n); err != nil {
			d.logger.Warn("notification push failed",
				slog.String("userId", n.UserID.String()),
				slog.String("type", string(n.Type)),
				slog.String("error", err.Error()))
		}
	}

	if d.mailer != nil && d.recipients != nil {
		d.mailing.Add(1)
		go func(n Notification) {
			defer d.mailing.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			d.mail(ctx, n)
		}(n)
	}
	return n, nil
}

// Wait blocks until background emails have been attempted.
func (d *Dispatcher) Wait() {
	d.mailing.Wait()
}

// List returns the caller's notifications.
func (d *Dispatcher) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Notification, int64, error) {
	return d.store.ListByUser(ctx, userID, params)
}

// MarkRead flags one of the caller's notifications as read.
func (d *Dispatcher) MarkRead(ctx context.Context, userID, id uuid.UUID) (Notification, error) {
	return d.store.MarkRead(ctx, userID, id, d.now())
}

func (d *Dispatcher) mail(ctx context.Context, n Notification) {
	u, err := d.recipients.Get(ctx, n.UserID)
	if err != nil {
		d.logger.Warn("notification recipient lookup failed",
			slog.String("userId", n.UserID.String()),
			slog.String("error", err.Error()))
		return
	}

	if n.Type == TypeCourseCompleted {
		courseTitle, _ := n.Data["courseTitle"].(string)
		courseID, _ := n.Data["courseId"].(string)
		err = d.mailer.SendCourseCompleted(u.Email, u.FullName, courseTitle, courseID)
	} else {
		err = d.mailer.SendNotification(u.Email, n.Title, n.Message)
	}
	if err != nil {
		d.logger.Error("notification email failed",
			slog.String("userId", n.UserID.String()),
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()))
	}
}
