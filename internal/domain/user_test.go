package domain

import (
	"testing"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/testutil"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_userDomain_Register(t *testing.T) {
	ctx := testutil.NewMockContext()
	d := newTestDomains()

	ctxNew := testutil.NewMockContextWithUserID(ctx, "new-user")
	resp, err := d.user.Register(ctxNew, &model.RegisterRequest{
		Username:      "newuser",
		Email:         "new@rwa.test",
		WalletAddress: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	})
	require.NoError(t, err)
	require.Equal(t, "new-user", resp.User.ID)
	require.Equal(t, string(entity.KYCNotSubmitted), resp.User.KYCStatus)
	require.Equal(t, string(entity.RoleUser), resp.User.Role)
	require.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", resp.User.WalletAddress)

	// Registering again returns the stored user unchanged.
	again, err := d.user.Register(ctxNew, &model.RegisterRequest{Username: "other", Email: "other@rwa.test"})
	require.NoError(t, err)
	require.Equal(t, resp.User.Username, again.User.Username)
	require.Equal(t, resp.User.Email, again.User.Email)
	require.Equal(t, resp.User.WalletAddress, again.User.WalletAddress)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func Test_userDomain_Register_Invalid(t *testing.T) {
	ctx := testutil.NewMockContext()
	d := newTestDomains()

	tests := []struct {
		name   string
		userID string
		req    *model.RegisterRequest
		code   errorx.Code
	}{
		{
			name: "anonymous",
			req:  &model.RegisterRequest{Username: "user"},
			code: errorx.Unauthenticated,
		},
		{
			name:   "invalid email",
			userID: "u",
			req:    &model.RegisterRequest{Email: "not an email"},
			code:   errorx.ValidationError,
		},
		{
			name:   "invalid wallet",
			userID: "u",
			req:    &model.RegisterRequest{WalletAddress: "0x123"},
			code:   errorx.ValidationError,
		},
		{
			name:   "short username",
			userID: "u",
			req:    &model.RegisterRequest{Username: "ab"},
			code:   errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.user.Register(testutil.NewMockContextWithUserID(ctx, tt.userID), tt.req)
			requireCode(t, err, tt.code)
		})
	}
}

func Test_userDomain_GetUser(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	// Other users cannot see sensitive fields.
	resp, err := d.user.GetUser(testutil.NewMockContextWithUserID(ctx, testutil.User2.ID),
		&model.GetUserRequest{ID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.Username, resp.User.Username)
	require.Empty(t, resp.User.Email)

	me, err := d.user.GetMe(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID), &model.GetMeRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.Email, me.User.Email)

	_, err = d.user.GetUser(ctx, &model.GetUserRequest{ID: "unknown"})
	requireCode(t, err, errorx.NotFound)
}

func Test_userDomain_UpdateProfile(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.user.UpdateProfile(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.UpdateProfileRequest{Bio: "collector", Avatar: "https://img/avatar.png"})
	require.NoError(t, err)
	require.Equal(t, "collector", resp.User.Bio)

	user := getUser(t, ctx, testutil.User1.ID)
	require.Equal(t, "collector", user.Profile.Data.Bio)
	require.Equal(t, "https://img/avatar.png", user.Profile.Data.Avatar)

	_, err = d.user.UpdateProfile(testutil.NewMockContextWithUserID(ctx, "unknown"), &model.UpdateProfileRequest{})
	requireCode(t, err, errorx.NotFound)
}

func Test_userDomain_RequestKYC(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	tests := []struct {
		name   string
		userID string
		code   errorx.Code
	}{
		{name: "not submitted", userID: testutil.NotSubmittedUser.ID},
		{name: "rejected", userID: testutil.RejectedUser.ID},
		{name: "pending", userID: testutil.PendingUser.ID, code: errorx.InvalidState},
		{name: "approved", userID: testutil.User1.ID, code: errorx.InvalidState},
		{name: "unknown", userID: "unknown", code: errorx.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := d.user.RequestKYC(testutil.NewMockContextWithUserID(ctx, tt.userID), &model.RequestKYCRequest{})
			if tt.code != 0 {
				requireCode(t, err, tt.code)
				return
			}

			require.NoError(t, err)
			require.Equal(t, string(entity.KYCPending), resp.User.KYCStatus)
			require.Equal(t, entity.KYCPending, getUser(t, ctx, tt.userID).KYCStatus)
			require.Equal(t, int64(1), countNotifications(t, ctx, tt.userID))
		})
	}
}

func Test_userDomain_SetKYCStatus(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxAdmin := testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID)

	// Non admins are rejected.
	_, err := d.user.SetKYCStatus(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.SetKYCStatusRequest{UserID: testutil.PendingUser.ID, Status: "approved"})
	requireCode(t, err, errorx.Unauthorized)

	_, err = d.user.SetKYCStatus(ctxAdmin,
		&model.SetKYCStatusRequest{UserID: testutil.PendingUser.ID, Status: "pending"})
	requireCode(t, err, errorx.ValidationError)

	_, err = d.user.SetKYCStatus(ctxAdmin,
		&model.SetKYCStatusRequest{UserID: "unknown", Status: "approved"})
	requireCode(t, err, errorx.NotFound)

	resp, err := d.user.SetKYCStatus(ctxAdmin,
		&model.SetKYCStatusRequest{UserID: testutil.PendingUser.ID, Status: "approved"})
	require.NoError(t, err)
	require.Equal(t, string(entity.KYCApproved), resp.User.KYCStatus)
	require.Equal(t, entity.KYCApproved, getUser(t, ctx, testutil.PendingUser.ID).KYCStatus)

	// Exactly one notification for the target.
	require.Equal(t, int64(1), countNotifications(t, ctx, testutil.PendingUser.ID))
	require.Len(t, d.publisher.Packs(), 1)
	require.Equal(t, []byte(testutil.PendingUser.ID), d.publisher.Packs()[0].Key)
}

func Test_userDomain_SetRole(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxAdmin := testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID)

	// The only admin cannot demote itself.
	_, err := d.user.SetRole(ctxAdmin, &model.SetUserRoleRequest{UserID: testutil.AdminUser.ID, Role: "user"})
	requireCode(t, err, errorx.InvariantViolation)
	require.Equal(t, entity.RoleAdmin, getUser(t, ctx, testutil.AdminUser.ID).Role)

	_, err = d.user.SetRole(ctxAdmin, &model.SetUserRoleRequest{UserID: testutil.User1.ID, Role: "owner"})
	requireCode(t, err, errorx.ValidationError)

	_, err = d.user.SetRole(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.SetUserRoleRequest{UserID: testutil.User1.ID, Role: "admin"})
	requireCode(t, err, errorx.Unauthorized)

	resp, err := d.user.SetRole(ctxAdmin, &model.SetUserRoleRequest{UserID: testutil.User1.ID, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoleAdmin), resp.User.Role)
	require.Equal(t, int64(1), countNotifications(t, ctx, testutil.User1.ID))

	// With a second admin, demotion is allowed.
	_, err = d.user.SetRole(ctxAdmin, &model.SetUserRoleRequest{UserID: testutil.AdminUser.ID, Role: "user"})
	require.NoError(t, err)
	require.Equal(t, entity.RoleUser, getUser(t, ctx, testutil.AdminUser.ID).Role)
}

func Test_userDomain_GetList(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.user.GetList(testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID),
		&model.GetListUserRequest{Limit: 3})
	require.NoError(t, err)
	require.Len(t, resp.Users, 3)

	_, err = d.user.GetList(testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID),
		&model.GetListUserRequest{Limit: 51})
	requireCode(t, err, errorx.BadRequest)

	_, err = d.user.GetList(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID), &model.GetListUserRequest{})
	requireCode(t, err, errorx.Unauthorized)
}
