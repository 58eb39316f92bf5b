package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/models"
)

const NotificationLimit = 50

type NotificationService struct {
	store NotificationStore
	log   *zap.Logger
	now   func() time.Time
}

func NewNotificationService(store NotificationStore, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, log: log, now: now}
}

// Notify stores n. Failures are logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	ts := s.now()
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt, n.UpdatedAt = ts, ts
	if err := s.store.Create(ctx, n); err != nil {
		s.log.Warn("notification dropped",
			zap.String("type", string(n.Type)),
			zap.String("recipient", n.RecipientID.Hex()),
			zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, recipient primitive.ObjectID) ([]*models.Notification, error) {
	list, err := s.store.ListForRecipient(ctx, recipient, NotificationLimit)
	if err != nil {
		return nil, Internal("list notifications", err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	if err := s.store.MarkRead(ctx, id, recipient, s.now()); err != nil {
		return storeErr(err, "Notification not found", "mark notification read")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, recipient, s.now())
	if err != nil {
		return 0, Internal("mark notifications read", err)
	}
	return n, nil
}
