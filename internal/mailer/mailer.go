// Package mailer sends the customer-facing emails. Messages are rendered
// synchronously and delivered in the background; delivery failures are
// logged and never reach the caller.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"
	"time"

	"baby-bliss/internal/config"
	"baby-bliss/internal/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Notifier interface {
	BookingReceived(b models.Booking)
	BookingStatusChanged(b models.Booking)
	MessageReplied(m models.Message)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	sender      Sender
	from        string
	senderName  string
	frontendURL string
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// New returns an SMTP-backed service, or a log-only one when no host is set.
func New(cfg config.SMTPConfig, frontendURL string, logger *zap.Logger) *Service {
	var sender Sender
	if cfg.Host == "" {
		sender = logSender{logger: logger}
	} else {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return NewWithSender(sender, cfg, frontendURL, logger)
}

func NewWithSender(sender Sender, cfg config.SMTPConfig, frontendURL string, logger *zap.Logger) *Service {
	return &Service{
		sender:      sender,
		from:        cfg.From,
		senderName:  cfg.SenderName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (s *Service) BookingReceived(b models.Booking) {
	subject := fmt.Sprintf("We received your booking %s", b.Reference)
	s.send(b.ClientEmail, subject, bookingReceivedPage, map[string]any{
		"Booking":   b,
		"LookupURL": s.lookupURL(b),
	})
}

func (s *Service) BookingStatusChanged(b models.Booking) {
	subject := fmt.Sprintf("Your booking %s is %s", b.Reference, b.Status)
	s.send(b.ClientEmail, subject, bookingStatusPage, map[string]any{
		"Booking":   b,
		"Status":    string(b.Status),
		"LookupURL": s.lookupURL(b),
	})
}

func (s *Service) MessageReplied(m models.Message) {
	subject := "Re: " + m.Subject
	if m.Subject == "" {
		subject = "Reply to your message"
	}
	s.send(m.Email, subject, messageReplyPage, map[string]any{"Message": m})
}

// Wait blocks until queued deliveries have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) lookupURL(b models.Booking) string {
	if s.frontendURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("reference", b.Reference)
	q.Set("email", b.ClientEmail)
	return s.frontendURL + "/booking-status?" + q.Encode()
}

func (s *Service) send(to, subject string, page *template.Template, data any) {
	if to == "" {
		return
	}

	body, err := render(page, data)
	if err != nil {
		s.logger.Error("failed to render email", zap.String("template", page.Name()), zap.Error(err))
		return
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.senderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sender.DialAndSend(m); err != nil {
			s.logger.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
			return
		}
		s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	}()
}

func render(page *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Monday, January 2, 2006")
	},
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"title": func(p models.Package) string {
		s := string(p)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// logSender stands in for SMTP when it is not configured.
type logSender struct {
	logger *zap.Logger
}

func (l logSender) DialAndSend(msgs ...*gomail.Message) error {
	for _, m := range msgs {
		l.logger.Info("smtp not configured, email not sent",
			zap.Strings("to", m.GetHeader("To")),
			zap.Strings("subject", m.GetHeader("Subject")),
		)
	}
	return nil
}
