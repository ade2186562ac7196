package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opCountUsers = "store.count_users"
	opListUsers  = "store.list_users"
	opCreateUser = "store.create_user"
	opDeleteUser = "store.delete_user"
)

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		s.logError(opCountUsers, "query_failed", err)
		return 0, newStoreError(opCountUsers, "query_failed", err)
	}
	return count, nil
}

// ListUsers returns up to limit users ordered by experience descending, the
// order the leaderboard renders them in. A non-empty search term matches
// name or phone as a substring.
func (s *Store) ListUsers(ctx context.Context, search string, limit int) ([]User, error) {
	query := s.db.WithContext(ctx).Order("exp DESC")
	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + term + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var users []User
	if err := query.Find(&users).Error; err != nil {
		s.logError(opListUsers, "query_failed", err)
		return nil, newStoreError(opListUsers, "query_failed", err)
	}
	return users, nil
}

// NewUser carries the fields of the add-user form.
type NewUser struct {
	Name   string
	Phone  string
	Exp    int64
	AIMode string
}

// CreateUser inserts one user after a best-effort phone uniqueness check.
// The check races with concurrent inserts; the unique index on phone is the
// real guarantee and surfaces as a query error.
func (s *Store) CreateUser(ctx context.Context, input NewUser) (User, error) {
	phone := strings.TrimSpace(input.Phone)
	name := strings.TrimSpace(input.Name)
	if phone == "" || name == "" || input.Exp < 0 {
		return User{}, newStoreError(opCreateUser, "invalid_input", ErrInvalidRow)
	}

	var existing User
	err := s.db.WithContext(ctx).Where("phone = ?", phone).Take(&existing).Error
	if err == nil {
		return User{}, newStoreError(opCreateUser, "phone_exists", ErrPhoneExists)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opCreateUser, "lookup_failed", err, zap.String("phone", phone))
		return User{}, newStoreError(opCreateUser, "lookup_failed", err)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreateUser, "id_generation_failed", err)
		return User{}, newStoreError(opCreateUser, "id_generation_failed", err)
	}

	mode := strings.TrimSpace(input.AIMode)
	if mode == "" {
		mode = "casual"
	}
	user := User{
		ID:        id,
		Name:      name,
		Phone:     phone,
		Exp:       input.Exp,
		AIMode:    mode,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.logError(opCreateUser, "insert_failed", err, zap.String("phone", phone))
		return User{}, newStoreError(opCreateUser, "insert_failed", err)
	}
	return user, nil
}

// DeleteUser removes one user by identifier. Deleting an absent row is not
// an error.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&User{}).Error; err != nil {
		s.logError(opDeleteUser, "delete_failed", err, zap.String("user_id", id))
		return newStoreError(opDeleteUser, "delete_failed", err)
	}
	return nil
}
