package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/pkg/utils"
)

// Delivery is one message on its way to one user.
type Delivery struct {
	Recipient Recipient
	Message   string
	// Notification is the stored in-app copy, nil when storing it failed.
	Notification *models.Notification
}

// Channel is one outbound route for a delivery.
type Channel interface {
	Name() string
	Enabled() bool
	Deliver(ctx context.Context, d Delivery) error
}

// Outbound hands deliveries to every enabled channel in order. A failing
// channel is logged and skipped; nothing is retried and nothing is
// reported back to the caller.
type Outbound struct {
	channels []Channel
	log      *slog.Logger
}

func NewOutbound(log *slog.Logger, channels ...Channel) *Outbound {
	return &Outbound{channels: channels, log: log}
}

func (o *Outbound) Dispatch(ctx context.Context, d Delivery) {
	for _, ch := range o.channels {
		if !ch.Enabled() {
			continue
		}
		if err := deliverSafely(ctx, ch, d); err != nil {
			o.log.Warn("notification delivery failed",
				"channel", ch.Name(), "user_id", d.Recipient.UserID, "error", err)
			continue
		}
		o.log.Debug("notification delivered", "channel", ch.Name(), "user_id", d.Recipient.UserID)
	}
}

func deliverSafely(ctx context.Context, ch Channel, d Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s channel: %v", ch.Name(), r)
		}
	}()
	return ch.Deliver(ctx, d)
}

type mailSender interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	Enabled() bool
	Send(ctx context.Context, message string, recipients ...string) error
}

const emailSubject = "SmartTrans Notification"

type emailChannel struct{ mailer mailSender }

// EmailChannel delivers through SMTP when credentials are configured.
func EmailChannel(m mailSender) Channel { return emailChannel{mailer: m} }

func (c emailChannel) Name() string  { return "email" }
func (c emailChannel) Enabled() bool { return c.mailer != nil && c.mailer.Enabled() }

func (c emailChannel) Deliver(ctx context.Context, d Delivery) error {
	if d.Recipient.Email == "" {
		return nil
	}
	return c.mailer.Send(ctx, d.Recipient.Email, emailSubject, utils.NotificationBody(d.Message))
}

type smsChannel struct{ sender smsSender }

// SMSChannel delivers through the SMS gateway when credentials are
// configured.
func SMSChannel(s smsSender) Channel { return smsChannel{sender: s} }

func (c smsChannel) Name() string  { return "sms" }
func (c smsChannel) Enabled() bool { return c.sender != nil && c.sender.Enabled() }

func (c smsChannel) Deliver(ctx context.Context, d Delivery) error {
	if d.Recipient.Phone == "" {
		return nil
	}
	return c.sender.Send(ctx, d.Message, d.Recipient.Phone)
}

type pushChannel struct{ hub *Hub }

// PushChannel forwards the stored notification to the recipient's live
// websocket sessions.
func PushChannel(hub *Hub) Channel { return pushChannel{hub: hub} }

func (c pushChannel) Name() string  { return "websocket" }
func (c pushChannel) Enabled() bool { return c.hub != nil }

func (c pushChannel) Deliver(ctx context.Context, d Delivery) error {
	if d.Notification == nil {
		return nil
	}
	msg, err := encodeMessage("notification", d.Notification)
	if err != nil {
		return err
	}
	c.hub.SendToUser(d.Recipient.UserID, msg)
	return nil
}

type eventChannel struct {
	publisher *EventPublisher
	now       func() time.Time
}

// EventChannel publishes every delivery to Redis when configured.
func EventChannel(p *EventPublisher) Channel { return eventChannel{publisher: p, now: time.Now} }

func (c eventChannel) Name() string  { return "redis" }
func (c eventChannel) Enabled() bool { return c.publisher.Enabled() }

func (c eventChannel) Deliver(ctx context.Context, d Delivery) error {
	return c.publisher.PublishNotification(ctx, newNotificationEvent(d, c.now()))
}
