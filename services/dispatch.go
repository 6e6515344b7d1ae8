package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"review-service-server/models"
)

// EmailGateway delivers one composed message over email
type EmailGateway interface {
	Send(ctx context.Context, to, from, subject, htmlBody, textBody string) error
}

// SMSGateway delivers one composed message over SMS. Available reports
// whether the gateway is configured and reachable enough to try at all.
type SMSGateway interface {
	Send(ctx context.Context, to, from, body string) (messageID string, err error)
	Available() bool
}

// DispatchEngine selects channels, composes the stage message, sends it, and
// advances the stage on success. Channel failures are contained here: they
// are logged and the stage is left un-sent for the next pass. Only
// persistence failures escape.
type DispatchEngine struct {
	tracker     *RequestTracker
	ledger      *TokenLedger
	email       EmailGateway
	sms         SMSGateway
	fromEmail   string
	fromPhone   string
	sendTimeout time.Duration
}

// NewDispatchEngine creates a dispatch engine with injected gateways
func NewDispatchEngine(db *gorm.DB, ledger *TokenLedger, email EmailGateway, sms SMSGateway, fromEmail, fromPhone string, sendTimeout time.Duration) *DispatchEngine {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &DispatchEngine{
		tracker:     NewRequestTracker(db),
		ledger:      ledger,
		email:       email,
		sms:         sms,
		fromEmail:   fromEmail,
		fromPhone:   fromPhone,
		sendTimeout: sendTimeout,
	}
}

// DispatchContext bundles the entities a stage message is rendered from
type DispatchContext struct {
	Request    *models.ReviewRequest
	Status     *models.ReviewRequestStatus
	Settings   *models.ReviewFollowUpSettings
	Technician *models.Technician
	Company    *models.Company
	CheckIn    *models.CheckIn
}

// SendStage attempts one lifecycle stage over the enabled channels: email
// first, then SMS. Success means at least one channel accepted the message;
// the stage is then advanced exactly once. now is the caller's clock reading
// for the pass; stage timestamps are stamped with it, so scheduler and
// dispatcher always agree on when a stage went out.
func (e *DispatchEngine) SendStage(ctx context.Context, stage models.FollowUpStage, dc DispatchContext, now time.Time) (bool, error) {
	vars := e.templateVars(stage, dc)
	subject, message := dc.Settings.StageTemplates(stage)
	if stage == models.StageInitial && dc.Request.CustomMessage != "" {
		message = dc.Request.CustomMessage
	}
	composed := ComposeMessage(subject, message, vars)

	sent := false

	if dc.Settings.EnableEmailRequests && dc.Status.CustomerEmail != "" {
		if err := e.sendEmail(ctx, dc, composed); err != nil {
			log.Printf("⚠️ Email channel failed for review request %d stage %s: %v", dc.Request.ID, stage, err)
		} else {
			sent = true
			log.Printf("📧 Sent %s review email to %s for request %d", stage, dc.Status.CustomerEmail, dc.Request.ID)
		}
	}

	if dc.Settings.EnableSMSRequests && dc.Status.CustomerPhone != "" {
		if !e.smsAvailable() {
			log.Printf("⚠️ SMS gateway unavailable, skipping request %d stage %s", dc.Request.ID, stage)
		} else if messageID, err := e.sendSMS(ctx, dc, composed); err != nil {
			log.Printf("⚠️ SMS channel failed for review request %d stage %s: %v", dc.Request.ID, stage, err)
		} else {
			sent = true
			log.Printf("📱 Sent %s review SMS to %s for request %d (message %s)", stage, dc.Status.CustomerPhone, dc.Request.ID, messageID)
		}
	}

	if !sent {
		if stage == models.StageInitial {
			if err := e.tracker.MarkRequestFailed(dc.Request.ID); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if _, err := e.tracker.AdvanceStage(dc.Status.ID, stage, now); err != nil {
		if errors.Is(err, ErrStageConflict) {
			// A concurrent pass advanced this stage between our send and our
			// write. The message is out either way.
			log.Printf("ℹ️ Stage %s for status %d was already advanced elsewhere", stage, dc.Status.ID)
			return true, nil
		}
		return false, err
	}

	if err := e.tracker.MarkRequestSent(dc.Request.ID, now); err != nil {
		return false, err
	}

	return true, nil
}

// smsAvailable probes the gateway, absorbing panics from misbehaving client
// implementations the same way channel errors are absorbed.
func (e *DispatchEngine) smsAvailable() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ SMS availability check panicked: %v", r)
			ok = false
		}
	}()
	return e.sms != nil && e.sms.Available()
}

func (e *DispatchEngine) sendEmail(ctx context.Context, dc DispatchContext, msg ComposedMessage) error {
	if e.email == nil {
		return ErrChannelUnavailable
	}
	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	html := e.htmlBody(dc, msg)
	return e.email.Send(sendCtx, dc.Status.CustomerEmail, e.fromEmail, msg.Subject, html, msg.Body)
}

func (e *DispatchEngine) sendSMS(ctx context.Context, dc DispatchContext, msg ComposedMessage) (string, error) {
	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	body := msg.Body
	if !strings.Contains(body, e.ledger.ReviewLink(dc.Request.Token)) {
		body = body + " " + e.ledger.ReviewLink(dc.Request.Token)
	}
	return e.sms.Send(sendCtx, dc.Status.CustomerPhone, e.fromPhone, body)
}

// templateVars builds the substitution map. customerName, companyName and
// technicianName are always present; serviceType, location and reviewLink are
// stage-conditional on the data actually existing.
func (e *DispatchEngine) templateVars(stage models.FollowUpStage, dc DispatchContext) map[string]string {
	vars := map[string]string{
		"customerName":   dc.Status.CustomerName,
		"companyName":    "",
		"technicianName": "",
	}
	if dc.Company != nil {
		vars["companyName"] = dc.Company.Name
	}
	if dc.Technician != nil {
		vars["technicianName"] = dc.Technician.Name
	}
	if dc.Request.JobType != "" {
		vars["serviceType"] = dc.Request.JobType
	}
	if dc.CheckIn != nil && dc.CheckIn.Location != "" {
		vars["location"] = dc.CheckIn.Location
	}
	vars["reviewLink"] = e.ledger.ReviewLink(dc.Request.Token)
	return vars
}

// htmlBody wraps the plain-text body in minimal markup with the review link
// as a button and the mandatory unsubscribe footer.
func (e *DispatchEngine) htmlBody(dc DispatchContext, msg ComposedMessage) string {
	link := e.ledger.ReviewLink(dc.Request.Token)
	unsubscribe := e.ledger.UnsubscribeLink(dc.Request.Token)

	text := strings.ReplaceAll(msg.Body, "\n", "<br>")
	return fmt.Sprintf(`<html><body>
<p>%s</p>
<p><a href="%s" style="display:inline-block;padding:10px 20px;background:#1a73e8;color:#fff;text-decoration:none;border-radius:4px;">Leave a Review</a></p>
<p style="font-size:12px;color:#999;">Don't want these reminders? <a href="%s">Unsubscribe</a>.</p>
</body></html>`, text, link, unsubscribe)
}
