package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/pubsub"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// NotificationDispatcher enqueues notifications inside the caller's
// transaction and fans them out once that transaction is committed.
type NotificationDispatcher struct {
	notificationRepo repository.NotificationRepository
	publisher        pubsub.Publisher
}

func NewNotificationDispatcher(
	notificationRepo repository.NotificationRepository,
	publisher pubsub.Publisher,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify stores a notification. Any error must fail the triggering operation.
func (d *NotificationDispatcher) Notify(
	ctx context.Context, userID string, notificationType entity.NotificationType, format string, a ...any,
) (*entity.Notification, error) {
	if userID == "" {
		return nil, nil
	}

	notification := &entity.Notification{
		UserID:  userID,
		Type:    notificationType,
		Message: fmt.Sprintf(format, a...),
	}

	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create notification: %v", err)
		return nil, errorx.Unknown
	}

	return notification, nil
}

// Publish fans committed notifications out to subscribers. The records are
// already durable, so failures are only logged.
func (d *NotificationDispatcher) Publish(ctx context.Context, notifications ...*entity.Notification) {
	topic := xcontext.Configs(ctx).Kafka.NotificationTopic
	for _, n := range notifications {
		if n == nil {
			continue
		}

		b, err := json.Marshal(model.ConvertNotification(n))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal notification %d: %v", n.ID, err)
			continue
		}

		err = d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(n.UserID), Msg: b})
		if err != nil {
			common.IncCounter(common.NotificationPublishFailure, string(n.Type))
			xcontext.Logger(ctx).Warnf("Cannot publish notification %d: %v", n.ID, err)
		}
	}
}

type NotificationDomain interface {
	GetMyNotifications(context.Context, *model.GetMyNotificationsRequest) (*model.GetMyNotificationsResponse, error)
	GetList(context.Context, *model.GetListNotificationRequest) (*model.GetListNotificationResponse, error)
	MarkRead(context.Context, *model.MarkNotificationReadRequest) (*model.MarkNotificationReadResponse, error)
}

type notificationDomain struct {
	notificationRepo   repository.NotificationRepository
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewNotificationDomain(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
) *notificationDomain {
	return &notificationDomain{
		notificationRepo:   notificationRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *notificationDomain) GetMyNotifications(
	ctx context.Context, req *model.GetMyNotificationsRequest,
) (*model.GetMyNotificationsResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	notifications, err := d.notificationRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx), offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyNotificationsResponse{Notifications: convertNotifications(notifications)}, nil
}

func (d *notificationDomain) GetList(
	ctx context.Context, req *model.GetListNotificationRequest,
) (*model.GetListNotificationResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	notifications, err := d.notificationRepo.GetList(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetListNotificationResponse{Notifications: convertNotifications(notifications)}, nil
}

func (d *notificationDomain) MarkRead(
	ctx context.Context, req *model.MarkNotificationReadRequest,
) (*model.MarkNotificationReadResponse, error) {
	notification, err := d.notificationRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found notification")
		}

		xcontext.Logger(ctx).Errorf("Cannot get notification: %v", err)
		return nil, errorx.Unknown
	}

	if notification.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.Unauthorized, "Notification belongs to another user")
	}

	if !notification.Read {
		if err := d.notificationRepo.MarkRead(ctx, notification.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark notification as read: %v", err)
			return nil, errorx.Unknown
		}
		notification.Read = true
	}

	return &model.MarkNotificationReadResponse{Notification: model.ConvertNotification(notification)}, nil
}

func convertNotifications(notifications []entity.Notification) []model.Notification {
	result := []model.Notification{}
	for i := range notifications {
		result = append(result, model.ConvertNotification(&notifications[i]))
	}

	return result
}
