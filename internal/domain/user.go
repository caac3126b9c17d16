package domain

import (
	"context"
	"errors"
	"net/mail"

	"github.com/ethereum/go-ethereum/common"
	rwacommon "github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/enum"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/rwa-lab/backend/pkg/xlock"
	"gorm.io/gorm"
)

var adminRoles = []entity.Role{entity.RoleAdmin}

type UserDomain interface {
	Register(context.Context, *model.RegisterRequest) (*model.RegisterResponse, error)
	GetUser(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	UpdateProfile(context.Context, *model.UpdateProfileRequest) (*model.UpdateProfileResponse, error)
	RequestKYC(context.Context, *model.RequestKYCRequest) (*model.RequestKYCResponse, error)
	GetList(context.Context, *model.GetListUserRequest) (*model.GetListUserResponse, error)
	SetKYCStatus(context.Context, *model.SetKYCStatusRequest) (*model.SetKYCStatusResponse, error)
	SetRole(context.Context, *model.SetUserRoleRequest) (*model.SetUserRoleResponse, error)
}

type userDomain struct {
	userRepo           repository.UserRepository
	globalRoleVerifier *rwacommon.GlobalRoleVerifier
	dispatcher         *NotificationDispatcher
	locker             *xlock.Locker
}

func NewUserDomain(
	userRepo repository.UserRepository,
	dispatcher *NotificationDispatcher,
	locker *xlock.Locker,
) *userDomain {
	return &userDomain{
		userRepo:           userRepo,
		globalRoleVerifier: rwacommon.NewGlobalRoleVerifier(userRepo),
		dispatcher:         dispatcher,
		locker:             locker,
	}
}

func (d *userDomain) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	if req.Username != "" {
		if err := checkUsername(req.Username); err != nil {
			return nil, err
		}
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, errorx.New(errorx.ValidationError, "Invalid email address")
		}
	}

	wallet := req.WalletAddress
	if wallet != "" {
		if !common.IsHexAddress(wallet) {
			return nil, errorx.New(errorx.ValidationError, "Invalid wallet address")
		}
		wallet = common.HexToAddress(wallet).Hex()
	}

	defer d.locker.Lock(xlock.UserKey(userID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.userRepo.GetByID(ctx, userID)
	if err == nil {
		return &model.RegisterResponse{User: model.ConvertUser(user, true)}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	user = &entity.User{
		ID:            userID,
		Username:      req.Username,
		Email:         req.Email,
		WalletAddress: wallet,
		KYCStatus:     entity.KYCNotSubmitted,
		Role:          entity.RoleUser,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) getUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := d.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

func (d *userDomain) GetUser(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error) {
	user, err := d.getUser(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserResponse{
		User: model.ConvertUser(user, req.ID == xcontext.RequestUserID(ctx)),
	}, nil
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	user, err := d.getUser(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetMeResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) UpdateProfile(
	ctx context.Context, req *model.UpdateProfileRequest,
) (*model.UpdateProfileResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	defer d.locker.Lock(xlock.UserKey(userID))()

	user, err := d.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := entity.UserProfile{Bio: req.Bio, Avatar: req.Avatar}
	if err := d.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update profile: %v", err)
		return nil, errorx.Unknown
	}

	user.Profile.Data = profile
	return &model.UpdateProfileResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) RequestKYC(ctx context.Context, req *model.RequestKYCRequest) (*model.RequestKYCResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	defer d.locker.Lock(xlock.UserKey(userID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed := []entity.KYCStatus{entity.KYCNotSubmitted, entity.KYCRejected}
	if user.KYCStatus != entity.KYCNotSubmitted && user.KYCStatus != entity.KYCRejected {
		return nil, errorx.New(errorx.InvalidState, "Cannot request kyc while status is %s", user.KYCStatus)
	}

	if err := d.userRepo.UpdateKYCStatus(ctx, userID, allowed, entity.KYCPending); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update kyc status: %v", err)
		return nil, errorx.Unknown
	}
	user.KYCStatus = entity.KYCPending

	notification, err := d.dispatcher.Notify(ctx, userID, entity.NotificationKYC,
		"Your KYC request has been submitted for review")
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notification)
	return &model.RequestKYCResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) GetList(ctx context.Context, req *model.GetListUserRequest) (*model.GetListUserResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	users, err := d.userRepo.GetList(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.User{}
	for i := range users {
		result = append(result, model.ConvertUser(&users[i], true))
	}

	return &model.GetListUserResponse{Users: result}, nil
}

func (d *userDomain) SetKYCStatus(
	ctx context.Context, req *model.SetKYCStatusRequest,
) (*model.SetKYCStatusResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	status, err := enum.ToEnum[entity.KYCStatus](req.Status)
	if err != nil || (status != entity.KYCApproved && status != entity.KYCRejected) {
		return nil, errorx.New(errorx.ValidationError, "KYC status must be approved or rejected")
	}

	defer d.locker.Lock(xlock.UserKey(req.UserID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := d.userRepo.UpdateKYCStatus(ctx, user.ID, nil, status); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update kyc status: %v", err)
		return nil, errorx.Unknown
	}
	user.KYCStatus = status

	notification, err := d.dispatcher.Notify(ctx, user.ID, entity.NotificationKYC,
		"Your KYC status has been updated to %s", status)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notification)
	return &model.SetKYCStatusResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) SetRole(ctx context.Context, req *model.SetUserRoleRequest) (*model.SetUserRoleResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	role, err := enum.ToEnum[entity.Role](req.Role)
	if err != nil {
		return nil, errorx.New(errorx.ValidationError, "Invalid role")
	}

	defer d.locker.Lock(xlock.RoleKey, xlock.UserKey(req.UserID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if user.Role == entity.RoleAdmin && role != entity.RoleAdmin {
		admins, err := d.userRepo.CountByRole(ctx, entity.RoleAdmin)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count admins: %v", err)
			return nil, errorx.Unknown
		}

		if admins <= 1 {
			return nil, errorx.New(errorx.InvariantViolation, "Cannot demote the last admin")
		}
	}

	if err := d.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update role: %v", err)
		return nil, errorx.Unknown
	}
	user.Role = role

	notification, err := d.dispatcher.Notify(ctx, user.ID, entity.NotificationAdmin,
		"Your role has been updated to %s", role)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notification)
	return &model.SetUserRoleResponse{User: model.ConvertUser(user, true)}, nil
}
