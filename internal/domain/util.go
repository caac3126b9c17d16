package domain

import (
	"context"
	"errors"
	"regexp"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"

	mathUtil "github.com/pkg/math"
)

var usernameRegex = regexp.MustCompile("^[A-Za-z0-9_]*$")

func checkUsername(userName string) error {
	if len(userName) < 4 {
		return errorx.New(errorx.BadRequest, "Username too short (at least 4 characters)")
	}

	if len(userName) > 32 {
		return errorx.New(errorx.BadRequest, "Username too long (at most 32 characters)")
	}

	if !usernameRegex.MatchString(userName) {
		return errorx.New(errorx.BadRequest, "Name contains invalid characters")
	}

	return nil
}

// pagination normalizes offset and limit against the api server configs.
func pagination(ctx context.Context, offset, limit int) (int, int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return mathUtil.MaxInt(offset, 0), limit, nil
}

// verifyAdmin maps the role verifier result to the error taxonomy.
func verifyAdmin(ctx context.Context, verifier *common.GlobalRoleVerifier) error {
	if _, err := verifier.Verify(ctx, adminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.Unauthorized, "Permission denied")
	}

	return nil
}

// verifyKYC maps the KYC verifier result to the error taxonomy.
func verifyKYC(ctx context.Context, verifier *common.GlobalRoleVerifier, userID string) error {
	if _, err := verifier.VerifyKYC(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotRegistered) {
			return errorx.New(errorx.NotFound, "Not found user %s", userID)
		}

		return errorx.New(errorx.Unauthorized, "User %s has not passed KYC", userID)
	}

	return nil
}

// mapStaleVersion converts a lost optimistic race into a Conflict and any
// other storage error into Unknown.
func mapStaleVersion(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrStaleVersion) {
		return errorx.New(errorx.Conflict, "The record was modified concurrently, please retry")
	}

	xcontext.Logger(ctx).Errorf("Cannot %s: %v", op, err)
	return errorx.Unknown
}
