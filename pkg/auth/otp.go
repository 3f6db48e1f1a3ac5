package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"sakanka/internal/util"
)

// OTP challenge purposes.
const (
	OTPPurposeSignup = "signup"
	OTPPurposeLogin  = "login"
)

var (
	ErrOTPSendRateLimited  = errors.New("too many verification code requests")
	ErrOTPChallengeInvalid = errors.New("verification request is invalid")
	ErrOTPCodeInvalid      = errors.New("incorrect verification code")
	ErrOTPCodeExpired      = errors.New("verification code expired")
	ErrOTPTooManyAttempts  = errors.New("too many verification attempts")
	errOTPPurposeInvalid   = errors.New("invalid verification purpose")
	errOTPPhoneInvalid     = errors.New("phone number is required")
)

// OTPStore issues and verifies one-time codes sent to phone numbers.
// Codes are bcrypt-hashed at rest; redis enforces TTL and resend spacing.
type OTPStore struct {
	client            *redis.Client
	keyPrefix         string
	challengeTTL      time.Duration
	resendAfter       time.Duration
	maxVerifyAttempts int
}

type otpChallenge struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Purpose   string    `json:"purpose"`
	CodeHash  string    `json:"codeHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
}

// NewOTPStore builds a redis-backed OTP store.
func NewOTPStore(addr, password string) (*OTPStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("otp redis addr is required")
	}
	return &OTPStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		keyPrefix:         "sakanka:auth:otp",
		challengeTTL:      5 * time.Minute,
		resendAfter:       time.Minute,
		maxVerifyAttempts: 5,
	}, nil
}

// CreateChallenge generates a 6-digit code for the phone number and returns
// the challenge id plus the plaintext code for delivery. At most one code per
// phone/purpose per resend window.
func (s *OTPStore) CreateChallenge(phone, purpose string) (string, string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", "", errOTPPhoneInvalid
	}
	if purpose != OTPPurposeSignup && purpose != OTPPurposeLogin {
		return "", "", errOTPPurposeInvalid
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resendKey := fmt.Sprintf("%s:resend:%s:%s", s.keyPrefix, purpose, phone)
	allowed, err := s.client.SetNX(ctx, resendKey, "1", s.resendAfter).Result()
	if err != nil {
		return "", "", err
	}
	if !allowed {
		return "", "", ErrOTPSendRateLimited
	}

	code, err := generateNumericCode(6)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", "", fmt.Errorf("generate otp code: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", "", fmt.Errorf("hash otp code: %w", err)
	}
	challenge := otpChallenge{
		ID:        util.NewID(),
		Phone:     phone,
		Purpose:   purpose,
		CodeHash:  string(codeHash),
		ExpiresAt: time.Now().UTC().Add(s.challengeTTL),
	}
	raw, err := json.Marshal(challenge)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", "", fmt.Errorf("marshal otp challenge: %w", err)
	}
	if err := s.client.Set(ctx, s.challengeKey(challenge.ID), raw, s.challengeTTL+time.Minute).Err(); err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", "", err
	}
	return challenge.ID, code, nil
}

// VerifyChallenge checks the code for a challenge issued for the given
// purpose. A successful verification consumes the challenge.
func (s *OTPStore) VerifyChallenge(challengeID, phone, purpose, code string) error {
	challengeID = strings.TrimSpace(challengeID)
	code = strings.TrimSpace(code)
	if challengeID == "" || code == "" {
		return ErrOTPChallengeInvalid
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := s.challengeKey(challengeID)
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrOTPChallengeInvalid
	}
	if err != nil {
		return err
	}
	var challenge otpChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return ErrOTPChallengeInvalid
	}
	if challenge.Phone != strings.TrimSpace(phone) || challenge.Purpose != purpose {
		return ErrOTPChallengeInvalid
	}
	if time.Now().UTC().After(challenge.ExpiresAt) {
		_ = s.client.Del(ctx, key).Err()
		return ErrOTPCodeExpired
	}
	if challenge.Attempts >= s.maxVerifyAttempts {
		_ = s.client.Del(ctx, key).Err()
		return ErrOTPTooManyAttempts
	}
	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		challenge.Attempts++
		if updated, err := json.Marshal(challenge); err == nil {
			_ = s.client.Set(ctx, key, updated, redis.KeepTTL).Err()
		}
		return ErrOTPCodeInvalid
	}
	_ = s.client.Del(ctx, key).Err()
	return nil
}

func (s *OTPStore) challengeKey(id string) string {
	return fmt.Sprintf("%s:challenge:%s", s.keyPrefix, id)
}

func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
