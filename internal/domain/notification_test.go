package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/pubsub"
	"github.com/rwa-lab/backend/pkg/testutil"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_NotificationDispatcher(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)

	publisher := &testutil.MockPublisher{}
	dispatcher := NewNotificationDispatcher(repository.NewNotificationRepository(), publisher)

	// Market maker sides are skipped.
	n, err := dispatcher.Notify(ctx, "", entity.NotificationTrade, "ignored")
	require.NoError(t, err)
	require.Nil(t, n)

	txCtx := xcontext.WithDBTransaction(ctx)
	n, err = dispatcher.Notify(txCtx, testutil.User1.ID, entity.NotificationTrade, "Trade #%d filled", 7)
	require.NoError(t, err)
	require.NoError(t, xcontext.WithCommitDBTransaction(txCtx))

	dispatcher.Publish(ctx, n, nil)

	packs := publisher.Packs()
	require.Len(t, packs, 1)
	require.Equal(t, []byte(testutil.User1.ID), packs[0].Key)

	var msg model.Notification
	require.NoError(t, json.Unmarshal(packs[0].Msg, &msg))
	require.Equal(t, "Trade #7 filled", msg.Message)
	require.Equal(t, string(entity.NotificationTrade), msg.Type)
	require.False(t, msg.Read)

	// Fan-out failures do not affect the stored record.
	failing := NewNotificationDispatcher(repository.NewNotificationRepository(), &testutil.MockPublisher{
		PublishFunc: func(context.Context, string, *pubsub.Pack) error { return errors.New("broker down") },
	})
	failing.Publish(ctx, n)
	require.Equal(t, int64(1), countNotifications(t, ctx, testutil.User1.ID))
}

func Test_notificationDomain(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxAdmin := testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID)
	for _, userID := range []string{testutil.PendingUser.ID, testutil.RejectedUser.ID} {
		_, err := d.user.SetKYCStatus(ctxAdmin, &model.SetKYCStatusRequest{UserID: userID, Status: "approved"})
		require.NoError(t, err)
	}

	ctxPending := testutil.NewMockContextWithUserID(ctx, testutil.PendingUser.ID)
	_, err := d.user.SetRole(ctxAdmin, &model.SetUserRoleRequest{UserID: testutil.PendingUser.ID, Role: "user"})
	require.NoError(t, err)

	mine, err := d.notification.GetMyNotifications(ctxPending, &model.GetMyNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Notifications, 2)

	// Newest first.
	require.Equal(t, string(entity.NotificationAdmin), mine.Notifications[0].Type)
	require.Equal(t, string(entity.NotificationKYC), mine.Notifications[1].Type)

	// Only the owner can mark a notification as read.
	id := mine.Notifications[0].ID
	_, err = d.notification.MarkRead(testutil.NewMockContextWithUserID(ctx, testutil.RejectedUser.ID),
		&model.MarkNotificationReadRequest{ID: id})
	requireCode(t, err, errorx.Unauthorized)

	read, err := d.notification.MarkRead(ctxPending, &model.MarkNotificationReadRequest{ID: id})
	require.NoError(t, err)
	require.True(t, read.Notification.Read)

	// Marking twice is harmless.
	_, err = d.notification.MarkRead(ctxPending, &model.MarkNotificationReadRequest{ID: id})
	require.NoError(t, err)

	_, err = d.notification.MarkRead(ctxPending, &model.MarkNotificationReadRequest{ID: 100})
	requireCode(t, err, errorx.NotFound)

	all, err := d.notification.GetList(ctxAdmin, &model.GetListNotificationRequest{})
	require.NoError(t, err)
	require.Len(t, all.Notifications, 3)

	_, err = d.notification.GetList(ctxPending, &model.GetListNotificationRequest{})
	requireCode(t, err, errorx.Unauthorized)
}
