package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"sakanka/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	PhoneNumber  string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	Location     string
	Role         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ProductModel struct {
	ID          string  `gorm:"primaryKey"`
	SellerID    string  `gorm:"not null;index"`
	Title       string  `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`
	Quantity    int     `gorm:"not null"`
	Location    string  `gorm:"index"`
	Language    string  `gorm:"not null"`
	ImageURL    string
	PhoneNumber string         `gorm:"index"`
	Status      string         `gorm:"not null;index"`
	Attributes  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

// productAttributes keeps extraction context alongside the listing without
// widening the relational schema.
type productAttributes struct {
	OriginalText string `json:"originalText,omitempty"`
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		PhoneNumber:  u.PhoneNumber,
		FullName:     u.FullName,
		Location:     u.Location,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		PhoneNumber:  m.PhoneNumber,
		FullName:     m.FullName,
		Location:     m.Location,
		Role:         domain.UserRole(m.Role),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func productToModel(p domain.Product) ProductModel {
	attrs, _ := json.Marshal(productAttributes{OriginalText: p.OriginalText})
	return ProductModel{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Location:    p.Location,
		Language:    string(p.Language),
		ImageURL:    p.ImageURL,
		PhoneNumber: p.PhoneNumber,
		Status:      string(p.Status),
		Attributes:  datatypes.JSON(attrs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func productFromModel(m ProductModel) domain.Product {
	var attrs productAttributes
	if len(m.Attributes) > 0 {
		_ = json.Unmarshal(m.Attributes, &attrs)
	}
	return domain.Product{
		ID:           m.ID,
		SellerID:     m.SellerID,
		Title:        m.Title,
		Description:  m.Description,
		Price:        m.Price,
		Quantity:     m.Quantity,
		Location:     m.Location,
		Language:     domain.Language(m.Language),
		ImageURL:     m.ImageURL,
		PhoneNumber:  m.PhoneNumber,
		Status:       domain.ProductStatus(m.Status),
		OriginalText: attrs.OriginalText,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
