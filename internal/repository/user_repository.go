package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type UserRepository interface {
	// Create stores the user and the profile matching its role.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	CountJoined(ctx context.Context, r DateRange) (int64, error)
	CountActive(ctx context.Context, r DateRange) (int64, error)
	ListJoined(ctx context.Context, r DateRange) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		switch user.Role {
		case models.RolePatient:
			return tx.Create(&models.PatientProfile{UserID: user.ID}).Error
		case models.RoleDoctor:
			return tx.Create(&models.DoctorProfile{UserID: user.ID}).Error
		}
		return nil
	}))
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepository) CountJoined(ctx context.Context, dr DateRange) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("date_joined >= ? AND date_joined < ?", dr.From, dr.end()).
		Count(&n).Error
	return n, err
}

func (r *userRepository) CountActive(ctx context.Context, dr DateRange) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_login >= ? AND last_login < ?", dr.From, dr.end()).
		Count(&n).Error
	return n, err
}

func (r *userRepository) ListJoined(ctx context.Context, dr DateRange) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("date_joined >= ? AND date_joined < ?", dr.From, dr.end()).
		Order("date_joined").
		Find(&users).Error
	return users, err
}
