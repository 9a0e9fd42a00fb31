// Package email implements the email transport: an IMAP poll loop that
// forwards authorized inbound mail to the bus, and an SMTP sender that turns
// outbound markdown replies into correctly threaded multipart messages.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"

	"github.com/nobletrout/mailbridge/pkg/config"
)

const (
	channelName         = "email"
	defaultReplySubject = "Mailbridge reply"
)

// Channel is the email transport. It owns no connections between calls:
// the poll loop opens one IMAP session per cycle and every Send builds its
// own SMTP transport.
type Channel struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates an email channel from the given configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Channel {
	return &Channel{
		cfg:    cfg,
		logger: logger.With().Str("channel", channelName).Logger(),
	}
}

// Name returns the constant channel identifier.
func (c *Channel) Name() string {
	return channelName
}

// Send delivers message as a threaded reply email. The recipient may carry
// encoded thread metadata after the separator; without it the mail is sent
// unthreaded with the default subject.
func (c *Channel) Send(ctx context.Context, message, recipient string) error {
	target, meta := splitRecipient(recipient)

	if !validAddress(c.cfg.FromAddress) {
		return fmt.Errorf("invalid from address for email channel")
	}
	if !validAddress(target) {
		return fmt.Errorf("invalid email recipient")
	}

	e := email.NewEmail()
	e.From = strings.TrimSpace(c.cfg.FromAddress)
	e.To = []string{strings.TrimSpace(target)}

	var subject *string
	if meta != nil {
		subject = meta.Subject
	}
	e.Subject = replySubject(subject)

	// In-Reply-To plus References is what places this message inside the
	// original thread in mail clients.
	if meta != nil && meta.MessageID != nil {
		if id := strings.TrimSpace(*meta.MessageID); id != "" {
			e.Headers.Set("In-Reply-To", id)
			e.Headers.Set("References", id)
		}
	}

	e.Text = []byte(message)
	e.HTML = []byte(markdownToHTML(message))

	addr := net.JoinHostPort(c.cfg.SMTPServer, strconv.Itoa(c.cfg.SMTPPort))
	login, password := c.cfg.SMTPCredentials()
	auth := smtp.PlainAuth("", login, password, c.cfg.SMTPServer)
	tlsConfig := &tls.Config{ServerName: c.cfg.SMTPServer}

	var err error
	if c.cfg.SMTPStartTLS {
		err = e.SendWithStartTLS(addr, auth, tlsConfig)
	} else {
		err = e.SendWithTLS(addr, auth, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// HealthCheck reports whether the channel can reach both its mailbox and
// its relay. It is intentionally shallow: any failure collapses to false.
func (c *Channel) HealthCheck(ctx context.Context) bool {
	if !validAddress(c.cfg.FromAddress) {
		return false
	}
	if !c.checkIMAPConnectivity() {
		return false
	}
	return c.checkSMTPConnectivity()
}

// isSenderAllowed applies the allow-list: the wildcard entry admits anyone,
// otherwise only exact case-insensitive matches pass. An empty list denies
// everything.
func (c *Channel) isSenderAllowed(sender string) bool {
	for _, entry := range c.cfg.AllowedSenders {
		if entry == "*" {
			return true
		}
	}
	for _, entry := range c.cfg.AllowedSenders {
		if strings.EqualFold(entry, sender) {
			return true
		}
	}
	return false
}

// validAddress checks the basic shape of an email identity. The CR/LF check
// guards against header injection through a crafted recipient.
func validAddress(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" &&
		strings.Contains(trimmed, "@") &&
		!strings.ContainsAny(trimmed, "\r\n")
}

// replySubject derives the outbound subject from the original thread
// subject, prefixing "Re: " unless it is already there.
func replySubject(subject *string) string {
	if subject == nil {
		return defaultReplySubject
	}
	trimmed := strings.TrimSpace(*subject)
	if trimmed == "" {
		return defaultReplySubject
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "re:") {
		return trimmed
	}
	return "Re: " + trimmed
}
