package repository

import (
	"context"
	"encoding/json"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// UserRepository defines account persistence
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByAccount(ctx context.Context, account string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	FindAll(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	store store.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.store.Add(ctx, "users", user)
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	raw, err := r.store.Get(ctx, "users", id)
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOneBy(ctx, "phone", phone)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOneBy(ctx, "username", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOneBy(ctx, "email", email)
}

// FindByAccount resolves a login identifier through the three indexed
// lookup paths in order: phone, then username, then email.
func (r *userRepository) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	for _, field := range []string{"phone", "username", "email"} {
		user, err := r.findOneBy(ctx, field, account)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, store.ErrNotFound
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.Update(ctx, "users", user)
}

func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	raws, err := r.store.GetAll(ctx, "users")
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(raws))
	for _, raw := range raws {
		user, err := decodeUser(raw)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *userRepository) findOneBy(ctx context.Context, field, value string) (*model.User, error) {
	raws, err := r.store.Query(ctx, "users", field, value)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, store.ErrNotFound
	}
	return decodeUser(raws[0])
}

func decodeUser(raw json.RawMessage) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
