package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitetrack/sitetrack/internal/platform/httpx"
	"github.com/sitetrack/sitetrack/internal/shared"
)

// Handler wires the /auth HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	validate *validator.Validate
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		csrf:     csrf,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes under /auth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/otp/request", h.handleRequestOTP)
	r.Post("/otp/verify", h.handleVerifyOTP)
	r.Post("/google", h.handleGoogleSignIn)
	r.Get("/me", h.handleMe)
	r.Get("/csrf", h.handleCSRFToken)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, err, "register")
		return
	}
	h.establishSession(w, r, user)
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err, "login")
		return
	}
	h.establishSession(w, r, user)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.RequestOTP(r.Context(), req.Email); err != nil {
		h.respondError(w, err, "request otp")
		return
	}
	// Always 202: unknown addresses look identical to known ones.
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		h.respondError(w, err, "verify otp")
		return
	}
	h.establishSession(w, r, user)
	httpx.JSON(w, http.StatusOK, user)
}

type googleRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *Handler) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.GoogleSignIn(r.Context(), req.Code)
	if err != nil {
		h.respondError(w, err, "google sign-in")
		return
	}
	h.establishSession(w, r, user)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	user, err := h.service.users.GetByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, err, "me")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, user User) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("no session on auth route")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	sess.Set("role", user.Role)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.FieldProblem(w, map[string]string{"body": "invalid request"})
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrOTPExpired),
		errors.Is(err, shared.ErrOTPMismatch):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	case errors.Is(err, ErrEmailTaken):
		httpx.FieldProblem(w, map[string]string{"email": "This email is already registered."})
	case errors.Is(err, ErrWeakPassword):
		httpx.FieldProblem(w, map[string]string{"password": "Use at least 8 characters."})
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
