package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sakanka/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ProductModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone_number", "full_name", "location", "role", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// GetUserByPhone looks up a user by phone number.
func (s *GormStore) GetUserByPhone(phone string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("phone_number = ?", phone).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreateProduct inserts a new listing.
func (s *GormStore) CreateProduct(p domain.Product) error {
	model := productToModel(p)
	return s.db.Create(&model).Error
}

// GetProduct returns one listing by ID.
func (s *GormStore) GetProduct(id string) (domain.Product, bool, error) {
	var model ProductModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, err
	}
	return productFromModel(model), true, nil
}

// ListActiveProducts returns active listings, newest first.
func (s *GormStore) ListActiveProducts(limit int) ([]domain.Product, error) {
	var models []ProductModel
	err := s.db.
		Where("status = ?", string(domain.ProductActive)).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return productsFromModels(models), nil
}

// SearchProducts runs a substring match over title and description, with an
// optional location substring filter. Active listings only, newest first.
func (s *GormStore) SearchProducts(query, location string, limit int) ([]domain.Product, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	q := s.db.
		Where("status = ?", string(domain.ProductActive)).
		Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	if location = strings.TrimSpace(location); location != "" {
		q = q.Where("location ILIKE ?", "%"+location+"%")
	}
	var models []ProductModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	return productsFromModels(models), nil
}

// ListProductsByPhone returns listings tied to a phone number (USSD flow).
func (s *GormStore) ListProductsByPhone(phone string, limit int) ([]domain.Product, error) {
	var models []ProductModel
	err := s.db.
		Where("phone_number = ?", phone).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return productsFromModels(models), nil
}

// SetProductStatus updates a listing status.
func (s *GormStore) SetProductStatus(id string, status domain.ProductStatus) error {
	return s.db.Model(&ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// SetProductImage attaches an image URL to a listing.
func (s *GormStore) SetProductImage(id, imageURL string) error {
	return s.db.Model(&ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_url":  imageURL,
			"updated_at": time.Now().UTC(),
		}).Error
}

func productsFromModels(models []ProductModel) []domain.Product {
	res := make([]domain.Product, 0, len(models))
	for _, m := range models {
		res = append(res, productFromModel(m))
	}
	return res
}
