// internal/delivery/gateway.go
package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

// Message is one outbound delivery. To is an email address for the email
// channel and a phone number for sms.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends one HTML email. No retry, no batching.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// SMSSender sends one SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Gateway routes a message to the transport for its channel. It is
// constructed once at startup with whatever transports are configured and
// injected wherever sends happen.
type Gateway struct {
	Mailer  Mailer
	SMS     SMSSender // nil means sms is not configured
	Timeout time.Duration
	Log     *zap.Logger
}

func NewGateway(mailer Mailer, sms SMSSender, timeout time.Duration, log *zap.Logger) *Gateway {
	return &Gateway{Mailer: mailer, SMS: sms, Timeout: timeout, Log: log}
}

// Send performs exactly one outbound call, bounded by the per-call timeout.
// A timed-out call surfaces as an error so the caller counts it as failed.
func (g *Gateway) Send(ctx context.Context, ch model.Channel, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	switch ch {
	case model.ChannelEmail:
		return g.Mailer.SendEmail(ctx, msg.To, msg.Subject, msg.Body)
	case model.ChannelSMS:
		if g.SMS == nil {
			return appErrors.ErrSMSUnimplemented
		}
		return g.SMS.SendSMS(ctx, msg.To, msg.Body)
	default:
		return fmt.Errorf("unknown channel %q", ch)
	}
}
