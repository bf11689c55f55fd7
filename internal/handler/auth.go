package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/config"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/quota"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/repository"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/utils"
)

// UserStore is the slice of the user repository the handlers need.
// *repository.UserRepo satisfies it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, day string) error
	Get(ctx context.Context, email string) (model.User, error)
	CommitUsage(ctx context.Context, email, day string) error
}

// AuthHandler bundles dependencies for signup, login and /v1/me. Users
// may be nil when the database was unreachable at startup; every
// endpoint then answers 500 rather than crashing.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Quota *quota.Ledger
}

func NewAuthHandler(cfg config.Config, users UserStore, ledger *quota.Ledger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Quota: ledger}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDataPart struct {
	Email string     `json:"email"`
	Tier  model.Tier `json:"tier"`
	Usage int        `json:"usage"`
	Limit int        `json:"limit"` // -1 means no daily cap
}

type loginResp struct {
	Success  bool         `json:"success"`
	UserData userDataPart `json:"userData"`
	Token    string       `json:"token,omitempty"`
}

// Signup creates a new free-tier account with zero usage dated today.
func (h *AuthHandler) Signup(c echo.Context) error {
	if h.Users == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database not configured"})
	}
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Create(ctx, req.Email, hash, quota.Day(time.Now())); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// Login verifies credentials and returns the account's tier and today's
// effective usage. A missing account and a wrong password produce the
// same 401 so the endpoint does not leak which emails are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.Users == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database not configured"})
	}
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	now := time.Now()
	resp := loginResp{
		Success: true,
		UserData: userDataPart{
			Email: u.Email,
			Tier:  u.Tier,
			Usage: h.Quota.EffectiveUsed(u, now),
			Limit: h.Quota.LimitFor(u.Tier),
		},
	}
	if tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Email, h.Cfg.AccessTTLMin); err == nil {
		resp.Token = tok.Token
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated account's state. Protected by the JWT
// middleware, which stores the token subject under "user_id".
func (h *AuthHandler) Me(c echo.Context) error {
	if h.Users == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database not configured"})
	}
	email, _ := c.Get("user_id").(string)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now()
	return c.JSON(http.StatusOK, userDataPart{
		Email: u.Email,
		Tier:  u.Tier,
		Usage: h.Quota.EffectiveUsed(u, now),
		Limit: h.Quota.LimitFor(u.Tier),
	})
}
