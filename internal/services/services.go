package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/notify"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/validation"
)

// crud holds the read, patch and list operations every entity service shares.
type crud[T any, F repository.Filter] struct {
	repo   *repository.Repository[T, F]
	schema validation.Schema
}

func (c crud[T, F]) Get(ctx context.Context, id string) (*T, error) {
	return c.repo.FindByID(ctx, id)
}

func (c crud[T, F]) List(ctx context.Context, f F) (*repository.Page[T], error) {
	if err := validation.Validate(c.schema, &f); err != nil {
		return nil, err
	}
	return c.repo.FindMany(ctx, f)
}

// patch validates an update request and writes the fields it carries. Keys in
// lists hold []string values stored as comma separated text.
func (c crud[T, F]) patch(ctx context.Context, id string, req any, lists ...string) (*T, error) {
	if err := validation.Validate(c.schema, req); err != nil {
		return nil, err
	}
	p := repository.Patch(req)
	for _, key := range lists {
		if v, ok := p[key].([]string); ok {
			p[key] = joinList(v)
		}
	}
	return c.repo.Update(ctx, id, p)
}

// deleteWithOwner removes a profile and the user account that owns it in one
// transaction. dependents, when set, clears rows referencing the profile first.
func deleteWithOwner[T any, F repository.Filter](
	ctx context.Context,
	db *gorm.DB,
	repos *repository.Repositories,
	id string,
	profiles func(*repository.Repositories) *repository.Repository[T, F],
	owner func(*T) string,
	dependents func(tx *gorm.DB, profile *T) error,
) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repos.WithTx(tx)
		profile, err := profiles(txRepos).FindByID(ctx, id)
		if err != nil {
			return err
		}
		if dependents != nil {
			if err := dependents(tx, profile); err != nil {
				return err
			}
		}
		if _, err := profiles(txRepos).Delete(ctx, id); err != nil {
			return err
		}
		_, err = txRepos.Users.Delete(ctx, owner(profile))
		return err
	})
}

// newUser expects creds already passed through normalizeEmail.
func newUser(creds dtos.Credentials, name, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        creds.Email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

// Emails are stored and matched lowercase.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// cleanList trims entries and drops the blank ones.
func cleanList(items []string) []string {
	if items == nil {
		return nil
	}
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

func cleanListPtr(items *[]string) {
	if items != nil {
		*items = cleanList(*items)
	}
}

func joinList(items []string) string {
	return strings.Join(cleanList(items), ",")
}

// welcomer sends the greeting for new accounts. Delivery problems are logged
// and never reach the caller.
type welcomer struct {
	mailer notify.Mailer
	log    *zap.Logger
}

func (w welcomer) send(ctx context.Context, role, name, email string) {
	msg, err := notify.Welcome(role, name, email)
	if err == nil {
		err = w.mailer.Send(ctx, msg)
	}
	if err != nil {
		w.log.Warn("welcome email failed",
			zap.String("role", role),
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
