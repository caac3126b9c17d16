package main

import (
	"errors"
	"fmt"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func (s *srv) startAdmin(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	s.loadRepos()

	id := cctx.String("id")
	_, err := s.userRepo.GetByID(s.ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.userRepo.Create(s.ctx, &entity.User{
			ID:        id,
			Username:  id,
			KYCStatus: entity.KYCNotSubmitted,
			Role:      entity.RoleAdmin,
		})
	case err == nil:
		err = s.userRepo.UpdateRole(s.ctx, id, entity.RoleAdmin)
	}

	if err != nil {
		return fmt.Errorf("cannot grant admin role: %w", err)
	}

	xcontext.Logger(s.ctx).Infof("User %s is an admin now", id)
	return nil
}

func (s *srv) startToken(cctx *cli.Context) error {
	s.loadTokenEngine()

	cfg := xcontext.Configs(s.ctx).Auth.AccessToken
	token, err := s.tokenEngine.Generate(cfg.Expiration.Duration, model.AccessToken{ID: cctx.String("id")})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
