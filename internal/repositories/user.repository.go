package repositories

import (
	"context"
	"topup/internal/constants"
	"topup/internal/database"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	List(ctx context.Context, tx *gorm.DB, role *Role) ([]*User, error)
	IDsByRole(ctx context.Context, tx *gorm.DB, role Role) ([]uuid.UUID, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Delete(ctx context.Context, tx *gorm.DB, user *User) error
}

type userRepository struct {
	cache    database.CacheClient
	audience database.CacheClient
	log      logger.Logger
}

func NewUserRepository(cache, audience database.CacheClient) UserRepository {
	return &userRepository{
		cache:    cache,
		audience: audience,
		log:      logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var cached User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithHash(constants.UserCachePrefix).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get user from cache", "userID", id, "error", err)
	}
	if found {
		return &cached, nil
	}

	user, err := gorm.G[*User](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		if err = classify(err, "User not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get user by id", err, "userID", id)
	}

	r.addUserToCache(ctx, user)
	return user, nil
}

func (r *userRepository) GetByEmail(
	ctx context.Context,
	tx *gorm.DB,
	email string,
) (*User, error) {
	log := r.log.Function("GetByEmail")

	user, err := gorm.G[*User](tx).Where("email = ?", NormalizeEmail(email)).First(ctx)
	if err != nil {
		if err = classify(err, "User not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get user by email", err)
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, role *Role) ([]*User, error) {
	log := r.log.Function("List")

	query := gorm.G[*User](tx).Order("name ASC")
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	users, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list users", err)
	}

	return users, nil
}

// IDsByRole returns every user holding role. Results are cached briefly and
// dropped whenever a user is created or deleted.
func (r *userRepository) IDsByRole(
	ctx context.Context,
	tx *gorm.DB,
	role Role,
) ([]uuid.UUID, error) {
	log := r.log.Function("IDsByRole")

	var cached []uuid.UUID
	found, err := database.NewCacheBuilder(r.audience, string(role)).
		WithHash(constants.AudienceCachePrefix).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get audience from cache", "role", role, "error", err)
	}
	if found {
		return cached, nil
	}

	var ids []uuid.UUID
	if err := tx.WithContext(ctx).
		Model(&User{}).
		Where("role = ?", role).
		Pluck("id", &ids).Error; err != nil {
		return nil, log.Err("failed to get user ids by role", err, "role", role)
	}

	if err := database.NewCacheBuilder(r.audience, string(role)).
		WithHash(constants.AudienceCachePrefix).
		WithStruct(ids).
		WithTTL(constants.AudienceCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache audience", "role", role, "error", err)
	}

	return ids, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := gorm.G[User](tx).Create(ctx, user); err != nil {
		if err = classify(err, ""); isClassified(err) {
			return err
		}
		return log.Err("failed to create user", err, "email", user.Email)
	}

	r.clearAudienceCache(ctx, user.Role)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Delete")

	if err := tx.WithContext(ctx).Unscoped().Delete(&User{}, "id = ?", user.ID).Error; err != nil {
		return log.Err("failed to delete user", err, "userID", user.ID)
	}

	if err := database.NewCacheBuilder(r.cache, user.ID).
		WithHash(constants.UserCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		log.Warn("failed to clear user cache", "userID", user.ID, "error", err)
	}
	r.clearAudienceCache(ctx, user.Role)

	return nil
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) {
	if err := database.NewCacheBuilder(r.cache, user.ID).
		WithHash(constants.UserCachePrefix).
		WithStruct(user).
		WithTTL(constants.UserCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("addUserToCache").
			Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}
}

func (r *userRepository) clearAudienceCache(ctx context.Context, role Role) {
	if err := database.NewCacheBuilder(r.audience, string(role)).
		WithHash(constants.AudienceCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("clearAudienceCache").
			Warn("failed to clear audience cache", "role", role, "error", err)
	}
}
