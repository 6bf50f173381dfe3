package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/auth"
	"github.com/abetworks/crm-backend/internal/config"
	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/repository"
)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName string, role model.Role) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler bundles dependencies for the register/login/refresh endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type authResp struct {
	Message      string           `json:"message"`
	User         model.PublicUser `json:"user"`
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
}

// Register creates a user and returns tokens immediately. New users always
// start with the default role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists with this email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}

	u, err := h.Users.Create(ctx, req.Email, hash, req.FirstName, req.LastName, model.RoleUser)
	if err != nil {
		// The unique index can still fire on a concurrent insert; report it
		// the same way as the pre-check.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists with this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}
	return c.JSON(http.StatusCreated, authResp{
		Message:      "User registered successfully",
		User:         u.Public(),
		Token:        access.Value,
		RefreshToken: refresh.Value,
	})
}

// Login verifies credentials and returns a new token pair. A missing user,
// a deactivated user and a wrong password all produce the identical 400
// response so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during login"})
	}
	if !u.IsActive || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during login"})
	}
	return c.JSON(http.StatusOK, authResp{
		Message:      "Login successful",
		User:         u.Public(),
		Token:        access.Value,
		RefreshToken: refresh.Value,
	})
}

// Refresh exchanges a valid refresh token for a fresh pair. Refresh tokens
// are stateless, so the previous one stays usable until its own expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Refresh token is required"})
	}

	ident, err := auth.Verify(h.Cfg.RefreshSecret, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Refresh does re-check the account, so a deactivated user is locked
	// out at the next rotation even though outstanding access tokens keep
	// working until they expire.
	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil || !u.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid refresh token"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during token refresh"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":        access.Value,
		"refreshToken": refresh.Value,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Public()})
}

func (h *AuthHandler) issuePair(u *model.User) (auth.Token, auth.Token, error) {
	ident := auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
	access, err := auth.NewAccessToken(h.Cfg.AccessSecret, ident, h.Cfg.AccessTTL)
	if err != nil {
		return auth.Token{}, auth.Token{}, err
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshSecret, ident, h.Cfg.RefreshTTL)
	if err != nil {
		return auth.Token{}, auth.Token{}, err
	}
	return access, refresh, nil
}
