package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sakanka/internal/notify"
	"sakanka/internal/util"
	"sakanka/pkg/auth"
	"sakanka/pkg/domain"
)

type sendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Purpose     string `json:"purpose"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req sendOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phoneNumber is required")
		return
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(phone) {
		writeError(w, http.StatusTooManyRequests, "too many codes requested, try again later")
		return
	}
	purpose := req.Purpose
	if purpose == "" {
		purpose = auth.OTPPurposeLogin
	}
	challengeID, code, err := s.otp.CreateChallenge(phone, purpose)
	if err != nil {
		if errors.Is(err, auth.ErrOTPSendRateLimited) {
			writeError(w, http.StatusTooManyRequests, "a code was sent recently, wait before retrying")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(r.Context(), phone, notify.OTPBody(code)); err != nil {
			util.LoggerFromContext(r.Context()).Warn("otp sms enqueue failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"challengeId": challengeID})
}

type signupRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "phoneNumber and a password of at least 8 characters are required")
		return
	}
	if err := s.otp.VerifyChallenge(req.ChallengeID, phone, auth.OTPPurposeSignup, req.Code); err != nil {
		writeOTPError(w, err)
		return
	}
	if _, exists, err := s.store.GetUserByPhone(phone); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	} else if exists {
		writeError(w, http.StatusConflict, "phone number already registered")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	role := domain.RoleBuyer
	if domain.UserRole(req.Role) == domain.RoleSeller {
		role = domain.RoleSeller
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		PhoneNumber:  phone,
		FullName:     strings.TrimSpace(req.FullName),
		Location:     strings.TrimSpace(req.Location),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveUser(user); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeSession(w, user, http.StatusCreated)
}

func writeOTPError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrOTPCodeExpired):
		writeError(w, http.StatusBadRequest, "verification code expired, request a new one")
	case errors.Is(err, auth.ErrOTPTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "too many attempts, request a new code")
	case errors.Is(err, auth.ErrOTPCodeInvalid), errors.Is(err, auth.ErrOTPChallengeInvalid):
		writeError(w, http.StatusBadRequest, "invalid verification code")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, found, err := s.store.GetUserByPhone(strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid phone number or password")
		return
	}
	s.writeSession(w, user, http.StatusOK)
}

// writeSession issues an access token, registers it as a live session and
// returns it with the user payload.
func (s *Server) writeSession(w http.ResponseWriter, user domain.User, status int) {
	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.sessions.SaveToken(token, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	if err := s.sessions.DeleteSession(token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
