// Package notification delivers temporary credentials to newly provisioned users.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

var credentialBody = template.Must(template.New("credentials").Parse(
	`Hello {{.Name}},

An account was created for you at {{.Institution}}.

  Login:              {{.Email}}
  Temporary password: {{.Password}}

You will be asked to choose a new password when you first sign in.
`))

type credentialData struct {
	Name        string
	Institution string
	Email       string
	Password    string
}

// sendFunc delivers a composed message
type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// MailNotifier sends the temporary password to the user's email address over SMTP
type MailNotifier struct {
	from   string
	send   sendFunc
	logger *zap.Logger
}

// NewMailNotifier creates a MailNotifier from SMTP settings
func NewMailNotifier(cfg config.MailConfig, logger *zap.Logger) (*MailNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tlsPolicy := gomail.TLSOpportunistic
	if cfg.TLS {
		tlsPolicy = gomail.TLSMandatory
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(tlsPolicy),
		gomail.WithTimeout(defaultSendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return newMailNotifier(cfg.From, client.DialAndSendWithContext, logger), nil
}

func newMailNotifier(from string, send func(ctx context.Context, msgs ...*gomail.Msg) error, logger *zap.Logger) *MailNotifier {
	return &MailNotifier{
		from: from,
		send: func(ctx context.Context, msg *gomail.Msg) error {
			return send(ctx, msg)
		},
		logger: logger,
	}
}

// NotifyTemporaryPassword implements provisioning.CredentialNotifier
func (n *MailNotifier) NotifyTemporaryPassword(ctx context.Context, tc tenancy.TenantContext, user *identity.User, tempPassword string) error {
	msg, err := n.compose(tc, user, tempPassword)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	n.logger.Debug("Temporary password sent",
		zap.String("tenant_id", tc.TenantID.String()),
		zap.String("user_id", user.ID.String()))
	return nil
}

func (n *MailNotifier) compose(tc tenancy.TenantContext, user *identity.User, tempPassword string) (*gomail.Msg, error) {
	institution := tc.InstitutionName
	if institution == "" {
		institution = tc.PartitionName
	}

	var body bytes.Buffer
	if err := credentialBody.Execute(&body, credentialData{
		Name:        user.FullName(),
		Institution: institution,
		Email:       user.Email,
		Password:    tempPassword,
	}); err != nil {
		return nil, fmt.Errorf("render credentials: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(institution, n.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(user.Email); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(fmt.Sprintf("Your %s account", institution))
	msg.SetBodyString(gomail.TypeTextPlain, body.String())
	return msg, nil
}
