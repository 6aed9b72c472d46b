package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/okian/stockwatch/internal/domain/model"
)

// Sender sends composed messages; *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// MailConfig describes the SMTP relay.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// NewSMTPClient builds a STARTTLS client with LOGIN auth.
func NewSMTPClient(cfg MailConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendMail, err)
	}
	return c, nil
}

// AttachmentFunc returns a file to attach for the outcome, or "" for none.
type AttachmentFunc func(o *model.RunOutcome) string

// MailReporter mails a plain-text report.
type MailReporter struct {
	sender     Sender
	from       string
	to         []string
	loc        *time.Location
	attachment AttachmentFunc
}

// MailOption configures a MailReporter.
type MailOption func(*MailReporter)

// WithAttachment attaches the file returned by fn when it exists.
func WithAttachment(fn AttachmentFunc) MailOption {
	return func(r *MailReporter) { r.attachment = fn }
}

// WithLocation sets the time zone used in the body.
func WithLocation(loc *time.Location) MailOption {
	return func(r *MailReporter) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// NewMailReporter returns a reporter sending from one address to recipients.
func NewMailReporter(sender Sender, from string, to []string, opts ...MailOption) (*MailReporter, error) {
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	r := &MailReporter{sender: sender, from: from, to: to, loc: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name implements Reporter.
func (r *MailReporter) Name() string { return "mail" }

// Compose builds the message for an outcome without sending it.
func (r *MailReporter) Compose(o *model.RunOutcome) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(r.from); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildMessage, err)
	}
	if err := m.To(r.to...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildMessage, err)
	}
	m.Subject(Subject(o))
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, FormatText(o, r.loc))

	if r.attachment != nil {
		if path := r.attachment(o); path != "" {
			if _, err := os.Stat(path); err == nil {
				m.AttachFile(path)
			}
		}
	}
	return m, nil
}

// Deliver implements Reporter.
func (r *MailReporter) Deliver(ctx context.Context, o *model.RunOutcome) error {
	m, err := r.Compose(o)
	if err != nil {
		return err
	}
	if err := r.sender.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", ErrSendMail, err)
	}
	return nil
}
