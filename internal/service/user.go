package service

import (
	"context"
	"strings"

	"github.com/deppfellow/user-service/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserStore is the persistence contract the user service relies on.
// *repository.UserRepository implements it.
type UserStore interface {
	Create(ctx context.Context, fields model.UserFields) (*model.User, error)
	FindAll(ctx context.Context, opts model.ListOptions) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, fields model.UserFields) (*model.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// WelcomeEnqueuer schedules the welcome email of a new user.
type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, firstName string) error
}

// UserService implements the user operations on top of a UserStore.
//
// Store errors are returned unchanged; translating them into responses is
// the handler's job.
type UserService struct {
	store   UserStore
	welcome WelcomeEnqueuer
	logger  *zerolog.Logger
}

// NewUserService builds a UserService. welcome may be nil, which disables
// welcome emails.
func NewUserService(store UserStore, welcome WelcomeEnqueuer, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, welcome: welcome, logger: logger}
}

// Create stores a new user and, when enabled and an email is present,
// schedules its welcome email. Scheduling failures are logged only.
func (s *UserService) Create(ctx context.Context, fields model.UserFields) (*model.User, error) {
	user, err := s.store.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	if s.welcome != nil && user.Email != nil && *user.Email != "" {
		if err := s.welcome.EnqueueWelcomeEmail(ctx, *user.Email, firstName(user.Name)); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("user_id", user.ID).
				Msg("failed to schedule welcome email")
		}
	}

	return user, nil
}

// List returns the users matching opts.
func (s *UserService) List(ctx context.Context, opts model.ListOptions) ([]model.User, error) {
	return s.store.FindAll(ctx, opts)
}

// Get returns user id, or nil when absent.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.store.FindByID(ctx, id)
}

// Update replaces the provided fields of user id; nil when absent.
func (s *UserService) Update(ctx context.Context, id int64, fields model.UserFields) (*model.User, error) {
	return s.store.Update(ctx, id, fields)
}

// Delete removes user id and reports whether it existed.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

// firstName builds a caser per call; a cases.Caser is stateful.
func firstName(name *string) string {
	if name == nil {
		return "there"
	}

	parts := strings.Fields(*name)
	if len(parts) == 0 {
		return "there"
	}
	return cases.Title(language.Und).String(parts[0])
}
