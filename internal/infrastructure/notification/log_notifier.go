package notification

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LogNotifier records that a credential was issued without delivering it.
// It is used when mail is disabled; the password itself is never logged.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// NotifyTemporaryPassword implements provisioning.CredentialNotifier
func (n *LogNotifier) NotifyTemporaryPassword(_ context.Context, tc tenancy.TenantContext, user *identity.User, _ string) error {
	n.logger.Info("Temporary password issued, mail delivery disabled",
		zap.String("tenant_id", tc.TenantID.String()),
		zap.String("partition", tc.PartitionName),
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return nil
}

// Notifier is the credential delivery contract shared by both notifiers
type Notifier interface {
	NotifyTemporaryPassword(ctx context.Context, tc tenancy.TenantContext, user *identity.User, tempPassword string) error
}

// New returns a MailNotifier when mail is enabled and a LogNotifier otherwise
func New(cfg config.MailConfig, logger *zap.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return NewLogNotifier(logger), nil
	}
	return NewMailNotifier(cfg, logger)
}
