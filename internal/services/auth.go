package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/cryptox"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

type RegisterInput struct {
	Username string
	FullName string
	Position models.Position
	Password []byte
}

// ProfileInput edits a user. Empty fields are left unchanged.
type ProfileInput struct {
	FullName string
	Position models.Position
	Password []byte
}

// AuthService manages local accounts and the active session.
//
// The session is the id of the logged in user kept in the metadata table, so
// it survives restarts until Logout.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	// Current returns the session user or common.ErrNoSession.
	Current(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Delete removes a user. Deleting the session user fails with
	// common.ErrSelfDelete.
	Delete(ctx context.Context, id int64) error
}

type authService struct {
	store Storage
	clock timex.Clock
	log   logging.Logger
}

func NewAuthService(s Storage, clock timex.Clock, log logging.Logger) AuthService {
	return &authService{store: s, clock: clock, log: log}
}

func (a *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)

	var missing fields
	missing.require(!blank(username), "username")
	missing.require(!blank(in.FullName), "full name")
	missing.require(in.Position.Valid(), "position")
	missing.require(len(in.Password) > 0, "password")
	if err := missing.err(); err != nil {
		return nil, err
	}

	r, err := a.store.Repos()
	if err != nil {
		return nil, err
	}

	if _, err := r.Users.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("user %q: %w", username, common.ErrAlreadyExists)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	now := timex.Stamp(a.clock.Now())
	salt := cryptox.NewSalt()
	u := &models.User{
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		Position:     in.Position,
		PasswordHash: cryptox.HashPassword(in.Password, salt),
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := r.Users.Insert(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id

	a.log.Info(ctx, "user registered", "username", username, "position", string(in.Position))
	return u, nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	r, err := a.store.Repos()
	if err != nil {
		return nil, err
	}

	u, err := r.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !cryptox.VerifyPassword(password, u.Salt, u.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	if err := metadata.SetInt64(ctx, r.Metadata, common.SessionUserKey, u.ID); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	r, err := a.store.Repos()
	if err != nil {
		return err
	}
	return r.Metadata.Delete(ctx, common.SessionUserKey)
}

func (a *authService) Current(ctx context.Context) (*models.User, error) {
	r, err := a.store.Repos()
	if err != nil {
		return nil, err
	}
	return currentUser(ctx, r)
}

func currentUser(ctx context.Context, r *store.Repositories) (*models.User, error) {
	id, ok, err := metadata.GetInt64(ctx, r.Metadata, common.SessionUserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoSession
	}

	u, err := r.Users.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoSession
	}
	return u, err
}

func (a *authService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*models.User, error) {
	if in.Position != "" && !in.Position.Valid() {
		return nil, &ValidationError{Missing: []string{"position"}}
	}

	r, err := a.store.Repos()
	if err != nil {
		return nil, err
	}

	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !blank(in.FullName) {
		u.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Position != "" {
		u.Position = in.Position
	}
	if len(in.Password) > 0 {
		u.Salt = cryptox.NewSalt()
		u.PasswordHash = cryptox.HashPassword(in.Password, u.Salt)
	}
	u.UpdatedAt = timex.Stamp(a.clock.Now())

	if err := r.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *authService) List(ctx context.Context) ([]models.User, error) {
	r, err := a.store.Repos()
	if err != nil {
		return nil, err
	}
	return r.Users.List(ctx)
}

func (a *authService) Delete(ctx context.Context, id int64) error {
	r, err := a.store.Repos()
	if err != nil {
		return err
	}

	current, err := currentUser(ctx, r)
	if err != nil && !errors.Is(err, common.ErrNoSession) {
		return err
	}
	if current != nil && current.ID == id {
		return common.ErrSelfDelete
	}

	if err := r.Users.Delete(ctx, id); err != nil {
		return err
	}
	a.log.Info(ctx, "user deleted", "id", id)
	return nil
}
