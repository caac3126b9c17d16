package common

import (
	"context"
	"errors"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

var (
	ErrNotRegistered  = errors.New("user is not registered")
	ErrRoleNotAllowed = errors.New("user role does not have permission")
	ErrKYCNotApproved = errors.New("user kyc is not approved")
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

// Verify checks that the request user exists and has one of requiredRoles.
// It returns the loaded user so callers need not read it again.
func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.Role) (*entity.User, error) {
	u, err := verifier.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, ErrNotRegistered
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return nil, ErrRoleNotAllowed
	}

	return u, nil
}

// VerifyKYC checks that the user with the given id exists and its KYC was
// approved.
func (verifier *GlobalRoleVerifier) VerifyKYC(ctx context.Context, userID string) (*entity.User, error) {
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotRegistered
	}

	if u.KYCStatus != entity.KYCApproved {
		return nil, ErrKYCNotApproved
	}

	return u, nil
}
