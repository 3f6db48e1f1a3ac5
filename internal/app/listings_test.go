package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"sakanka/pkg/domain"
	"sakanka/pkg/store"
)

type fakeNotifier struct {
	phones []string
	bodies []string
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, phone, body string) error {
	if f.err != nil {
		return f.err
	}
	f.phones = append(f.phones, phone)
	f.bodies = append(f.bodies, body)
	return nil
}

func newTestListings(t *testing.T) (*Listings, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	return NewListings(store.NewMemoryStore(), nil, notifier, nil), notifier
}

func seller() domain.User {
	return domain.User{ID: "u1", PhoneNumber: "+233200000001", Role: domain.RoleSeller}
}

func TestCreateListingRequiresSellerRole(t *testing.T) {
	l, _ := newTestListings(t)
	buyer := domain.User{ID: "u2", Role: domain.RoleBuyer}
	_, err := l.Create(context.Background(), buyer, ListingInput{Title: "Tomatoes", Price: 10, Quantity: 1})
	if !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
}

func TestCreateListingPhoneFallsBackToProfile(t *testing.T) {
	l, notifier := newTestListings(t)
	product, err := l.Create(context.Background(), seller(), ListingInput{
		Title:    "Tomatoes",
		Price:    25,
		Quantity: 2,
		Language: domain.LanguageTwi,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.PhoneNumber != "+233200000001" {
		t.Fatalf("phone fallback failed: %q", product.PhoneNumber)
	}
	if product.Status != domain.ProductActive {
		t.Fatalf("new listings must be active, got %q", product.Status)
	}
	if len(notifier.phones) != 1 || notifier.phones[0] != "+233200000001" {
		t.Fatalf("expected one confirmation SMS, got %v", notifier.phones)
	}
	if !strings.Contains(notifier.bodies[0], "Tomatoes") {
		t.Fatalf("confirmation SMS missing title: %q", notifier.bodies[0])
	}
}

func TestCreateListingRejectsBadNumbers(t *testing.T) {
	l, _ := newTestListings(t)
	for _, price := range []float64{math.NaN(), math.Inf(1), -5} {
		if _, err := l.Create(context.Background(), seller(), ListingInput{Title: "x", Price: price}); !errors.Is(err, ErrInvalidListing) {
			t.Fatalf("price %v must be rejected, got %v", price, err)
		}
	}
	product, err := l.Create(context.Background(), seller(), ListingInput{Title: "x", Price: 5, Quantity: -2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Quantity != 1 {
		t.Fatalf("quantity must clamp to 1, got %d", product.Quantity)
	}
}

func TestCreateListingNotifierFailureDoesNotFailCreate(t *testing.T) {
	st := store.NewMemoryStore()
	l := NewListings(st, nil, &fakeNotifier{err: errors.New("queue down")}, nil)
	if _, err := l.Create(context.Background(), seller(), ListingInput{Title: "Yam", Price: 8}); err != nil {
		t.Fatalf("create must not fail on notification error: %v", err)
	}
}

func TestBrowseLimitDefaultsAndCap(t *testing.T) {
	l, _ := newTestListings(t)
	for i := 0; i < 60; i++ {
		if _, err := l.Create(context.Background(), seller(), ListingInput{Title: "item", Price: 1}); err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	products, err := l.Browse(0)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(products) != defaultBrowseLimit {
		t.Fatalf("default browse limit = %d, want %d", len(products), defaultBrowseLimit)
	}
	products, err = l.Browse(500)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(products) != maxBrowseLimit {
		t.Fatalf("capped browse limit = %d, want %d", len(products), maxBrowseLimit)
	}
}

func TestMarkStatusOwnerOnly(t *testing.T) {
	l, _ := newTestListings(t)
	product, err := l.Create(context.Background(), seller(), ListingInput{Title: "Rice", Price: 30})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := domain.User{ID: "u9", Role: domain.RoleSeller}
	if err := l.MarkStatus(other, product.ID, domain.ProductSold); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("non-owner must be rejected, got %v", err)
	}
	if err := l.MarkStatus(seller(), product.ID, domain.ProductSold); err != nil {
		t.Fatalf("owner mark sold: %v", err)
	}
	got, err := l.Get(product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.ProductSold {
		t.Fatalf("status = %q, want sold", got.Status)
	}
}

func TestUSSDMenus(t *testing.T) {
	l, _ := newTestListings(t)

	main := l.USSDReply("+233200000001", "")
	if !strings.HasPrefix(main, "CON Welcome to Sakanka") {
		t.Fatalf("main menu: %q", main)
	}
	if got := l.USSDReply("+233200000001", "1"); !strings.HasPrefix(got, "CON Sell Your Product") {
		t.Fatalf("sell menu: %q", got)
	}
	if got := l.USSDReply("+233200000001", "1*1"); !strings.HasPrefix(got, "END Please call") {
		t.Fatalf("voice sell: %q", got)
	}
	if got := l.USSDReply("+233200000001", "2*0"); got != main {
		t.Fatalf("*0 must return to main menu, got %q", got)
	}
	if got := l.USSDReply("+233200000001", "9"); !strings.HasPrefix(got, "END Thank you") {
		t.Fatalf("default end: %q", got)
	}
}

func TestUSSDListings(t *testing.T) {
	l, _ := newTestListings(t)

	if got := l.USSDReply("+233200000001", "3"); got != "END You have no active listings." {
		t.Fatalf("empty listings: %q", got)
	}
	if _, err := l.Create(context.Background(), seller(), ListingInput{Title: "Tomatoes", Price: 25}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := l.USSDReply("+233200000001", "3")
	if !strings.HasPrefix(got, "CON Your Listings:") || !strings.Contains(got, "1. Tomatoes - GHS 25") {
		t.Fatalf("listings menu: %q", got)
	}
	if !strings.HasSuffix(got, "0. Back") {
		t.Fatalf("listings menu missing back option: %q", got)
	}
}
