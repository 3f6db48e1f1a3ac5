package domain

import "time"

// Language identifies one of the supported marketplace languages.
type Language string

const (
	LanguageTwi     Language = "twi"
	LanguageGa      Language = "ga"
	LanguageHausa   Language = "hausa"
	LanguageEnglish Language = "english"
)

// ParseLanguage maps user input onto a supported language.
// Unknown or empty values fall back to English.
func ParseLanguage(raw string) Language {
	switch Language(raw) {
	case LanguageTwi, LanguageGa, LanguageHausa, LanguageEnglish:
		return Language(raw)
	default:
		return LanguageEnglish
	}
}

// Action distinguishes the two sides of a marketplace exchange.
type Action string

const (
	ActionSell Action = "sell"
	ActionBuy  Action = "buy"
)

// ParseAction defaults to sell for unknown input.
func ParseAction(raw string) Action {
	if Action(raw) == ActionBuy {
		return ActionBuy
	}
	return ActionSell
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductSold     ProductStatus = "sold"
	ProductInactive ProductStatus = "inactive"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

// Turn is one role-tagged message in an assistant conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// ProductDraft is an unpersisted, user-editable product record produced by
// extraction and reviewed before listing. Price is always >= 0 and Quantity
// always >= 1, even when extraction degrades.
type ProductDraft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Quantity     int      `json:"quantity"`
	Location     string   `json:"location"`
	Language     Language `json:"language"`
	OriginalText string   `json:"originalText"`
}

// Product is a persisted marketplace listing.
type Product struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"sellerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Quantity    int           `json:"quantity"`
	Location    string        `json:"location"`
	Language    Language      `json:"language"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	Status      ProductStatus `json:"status"`
	// OriginalText preserves the transcription the listing came from.
	OriginalText string    `json:"originalText,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// User is a marketplace account, identified by phone number.
type User struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phoneNumber"`
	FullName     string    `json:"fullName"`
	Location     string    `json:"location"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
