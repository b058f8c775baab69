package product

import (
	"atelier/internal/backend"
	"atelier/internal/notify"
	"atelier/internal/session"

	"go.uber.org/zap"
)

func NewModule(client *backend.Client, sess *session.Session, notifier notify.Notifier, logger *zap.Logger) (*AddForm, *ListView) {
	form := NewAddForm(client, notifier, logger)
	list := NewListView(client, sess, notifier, logger)
	return form, list
}
