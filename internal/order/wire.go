package order

import (
	"atelier/internal/backend"
	"atelier/internal/notify"
	"atelier/internal/session"

	"go.uber.org/zap"
)

func NewModule(client *backend.Client, sess *session.Session, notifier notify.Notifier, logger *zap.Logger) *Board {
	return NewBoard(client, sess, notifier, logger)
}
