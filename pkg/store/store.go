package store

import "sakanka/pkg/domain"

// Store defines persistence operations for users and product listings.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByPhone(phone string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// products
	CreateProduct(domain.Product) error
	GetProduct(id string) (domain.Product, bool, error)
	ListActiveProducts(limit int) ([]domain.Product, error)
	SearchProducts(query, location string, limit int) ([]domain.Product, error)
	ListProductsByPhone(phone string, limit int) ([]domain.Product, error)
	SetProductStatus(id string, status domain.ProductStatus) error
	SetProductImage(id, imageURL string) error
}

// SessionStore tracks which issued access tokens are still live; deleting a
// token revokes it before its JWT expiry.
type SessionStore interface {
	SaveToken(token, userID string) error
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
