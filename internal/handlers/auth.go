package handlers

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// FirebaseTokenVerifier is the part of the Firebase auth client used for login.
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         TokenIssuer
	firebaseAuth   FirebaseTokenVerifier // nil when Firebase is not configured
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, tokens TokenIssuer, firebaseAuth FirebaseTokenVerifier) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Register creates a local account with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	_, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.EmailTaken))
	}
	if !repositories.IsNotFound(err) {
		return internalError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, err)
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     req.Name,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.EmailTaken))
		}
		return internalError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login exchanges email and password for an access token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.BadCredentials))
		}
		return internalError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.BadCredentials))
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// user, and issues a local token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Msg("firebase token rejected")
		return echo.NewHTTPError(http.StatusForbidden, tr(c, i18n.InvalidToken))
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	emailVerified, _ := token.Claims["email_verified"].(bool)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.FirebaseNoEmail))
	}

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	switch {
	case err == nil:
		// an unverified claim never overwrites the stored email
		if emailVerified {
			user.Email = email
		}
		if name != "" {
			user.Name = name
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.EmailTaken))
			}
			return internalError(c, err)
		}
	case repositories.IsNotFound(err):
		user, err = h.linkFirebaseUser(ctx, firebaseUID, email, name, emailVerified)
		if errors.Is(err, errEmailNotVerified) {
			logger.Ctx(ctx).Warn().Str("firebase_uid", firebaseUID).Msg("refused to link firebase account with unverified email")
			return echo.NewHTTPError(http.StatusForbidden, tr(c, i18n.EmailNotVerified))
		}
		if err != nil {
			return internalError(c, err)
		}
	default:
		return internalError(c, err)
	}

	localJWT, err := h.tokens.Issue(user)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// errEmailNotVerified stops an unverified Firebase email from claiming an
// existing local account.
var errEmailNotVerified = errors.New("firebase email not verified")

// linkFirebaseUser attaches firebaseUID to the account with the same email,
// creating that account when none exists. Linking to an existing account
// requires a verified email.
func (h *AuthHandler) linkFirebaseUser(ctx context.Context, firebaseUID, email, name string, emailVerified bool) (*models.User, error) {
	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return nil, err
		}
		user = &models.User{Email: email, Name: name, FirebaseUID: &firebaseUID}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if !emailVerified {
		return nil, errEmailNotVerified
	}
	user.FirebaseUID = &firebaseUID
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
