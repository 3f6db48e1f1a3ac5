package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"sakanka/internal/notify"
	"sakanka/internal/util"
	"sakanka/pkg/domain"
	"sakanka/pkg/storage"
	"sakanka/pkg/store"
)

const (
	defaultBrowseLimit = 20
	maxBrowseLimit     = 50
	searchLimit        = 20
	ussdListingLimit   = 3
	presignExpiry      = 15 * time.Minute
)

// Notifier enqueues an SMS for asynchronous delivery.
type Notifier interface {
	Notify(ctx context.Context, phone, body string) error
}

// Listings is the marketplace listing service.
type Listings struct {
	store    store.Store
	objects  storage.ObjectStore
	notifier Notifier
	logger   *slog.Logger
}

func NewListings(st store.Store, objects storage.ObjectStore, notifier Notifier, logger *slog.Logger) *Listings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listings{store: st, objects: objects, notifier: notifier, logger: logger}
}

// ListingInput is the payload for creating a listing from a confirmed draft.
type ListingInput struct {
	Title        string
	Description  string
	Price        float64
	Quantity     int
	Location     string
	Language     domain.Language
	PhoneNumber  string
	OriginalText string
}

// Create persists a new active listing for seller. The contact phone falls
// back to the seller's profile number when the input omits one. On success a
// confirmation SMS is enqueued; notification failures never fail the create.
func (l *Listings) Create(ctx context.Context, seller domain.User, in ListingInput) (domain.Product, error) {
	if seller.Role != domain.RoleSeller && seller.Role != domain.RoleAdmin {
		return domain.Product{}, ErrNotSeller
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Product{}, fmt.Errorf("%w: title required", ErrInvalidListing)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must be a number >= 0", ErrInvalidListing)
	}
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "Not specified"
	}
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		phone = seller.PhoneNumber
	}
	language := in.Language
	if language == "" {
		language = domain.LanguageTwi
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:           util.NewID(),
		SellerID:     seller.ID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Quantity:     quantity,
		Location:     location,
		Language:     language,
		PhoneNumber:  phone,
		Status:       domain.ProductActive,
		OriginalText: in.OriginalText,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.store.CreateProduct(product); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	if l.notifier != nil && phone != "" {
		body := notify.ListingConfirmedBody(product.Title, product.Price)
		if err := l.notifier.Notify(ctx, phone, body); err != nil {
			l.logger.Warn("listing notification enqueue failed", "product_id", product.ID, "error", err)
		}
	}
	return product, nil
}

// Browse returns active listings newest first.
func (l *Listings) Browse(limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}
	return l.store.ListActiveProducts(limit)
}

// Search matches active listings whose title or description contains query,
// optionally narrowed to a location substring.
func (l *Listings) Search(query, location string) ([]domain.Product, error) {
	return l.store.SearchProducts(strings.TrimSpace(query), strings.TrimSpace(location), searchLimit)
}

// Get returns one listing.
func (l *Listings) Get(id string) (domain.Product, error) {
	product, ok, err := l.store.GetProduct(id)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

// MyListings returns the caller's listings by contact phone, capped for the
// USSD screen.
func (l *Listings) MyListings(phone string) ([]domain.Product, error) {
	return l.store.ListProductsByPhone(phone, ussdListingLimit)
}

// MarkStatus updates a listing's lifecycle status; only the seller who owns
// the listing (or an admin) may change it.
func (l *Listings) MarkStatus(user domain.User, productID string, status domain.ProductStatus) error {
	product, ok, err := l.store.GetProduct(productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	if product.SellerID != user.ID && user.Role != domain.RoleAdmin {
		return ErrNotSeller
	}
	return l.store.SetProductStatus(productID, status)
}

// AttachImage uploads a listing photo and saves its access URL. The uploader
// must own the listing.
func (l *Listings) AttachImage(ctx context.Context, user domain.User, productID string, r io.Reader, size int64, contentType string) (string, error) {
	if l.objects == nil {
		return "", fmt.Errorf("image storage not configured")
	}
	product, ok, err := l.store.GetProduct(productID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrProductNotFound
	}
	if product.SellerID != user.ID && user.Role != domain.RoleAdmin {
		return "", ErrNotSeller
	}
	key, err := storage.ImageKey(productID, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if err := l.objects.PutImage(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	url, err := l.objects.PresignGet(ctx, key, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign image: %w", err)
	}
	if err := l.store.SetProductImage(productID, url); err != nil {
		return "", fmt.Errorf("save image url: %w", err)
	}
	return url, nil
}
