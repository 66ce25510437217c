package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/config"
	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/repository"
	"github.com/iliyamo/office-room-booking/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.  Employees are
// the authentication principals; every issued token is scoped to the
// employee's company.
type AuthHandler struct {
	Cfg       config.Config
	Companies *repository.CompanyRepo
	Employees *repository.EmployeeRepo
	Tokens    *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, companies *repository.CompanyRepo,
	employees *repository.EmployeeRepo, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Companies: companies, Employees: employees, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyID   uint64 `json:"company_id"`   // join an existing company
	CompanyName string `json:"company_name"` // or found a new one (registrant becomes ADMIN)
	Role        string `json:"role"`         // ADMIN | EMPLOYEE, ignored when founding
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type employeePart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID uint64 `json:"company_id"`
}
type authResp struct {
	Employee employeePart `json:"employee"`
	Access   tokenPart    `json:"access"`
	Refresh  tokenPart    `json:"refresh"`
}

// ListCompanies handles GET /v1/auth/companies: the public company
// directory, so a registrant can find the company_id to join.
func (h *AuthHandler) ListCompanies(c echo.Context) error {
	companies, err := h.Companies.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load companies"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": companies})
}

// Register creates an employee and returns tokens immediately.  The
// caller either joins an existing company by ID or founds a new one by
// name, in which case the registrant becomes its ADMIN.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	companyID := req.CompanyID
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch {
	case strings.TrimSpace(req.CompanyName) != "":
		co := &model.Company{Name: strings.TrimSpace(req.CompanyName)}
		if err := h.Companies.Create(ctx, co); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create company failed"})
		}
		companyID = co.ID
		role = model.RoleAdmin
	case companyID != 0:
		if _, err := h.Companies.GetByID(ctx, companyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if role != model.RoleAdmin && role != model.RoleEmployee {
			role = model.RoleEmployee
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id or company_name required"})
	}

	eid, err := h.Employees.Create(ctx, companyID, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create employee failed"})
	}

	return h.issuePair(c, http.StatusCreated, ctx, employeePart{
		ID: eid, Email: req.Email, Role: role, CompanyID: companyID,
	})
}

// Login verifies credentials and returns a new token pair.  Deleted
// accounts are invisible to GetByEmail, so they fail like a wrong
// password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	emp, err := h.Employees.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(emp.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issuePair(c, http.StatusOK, ctx, employeePart{
		ID: emp.ID, Email: emp.Email, Role: emp.Role, CompanyID: emp.CompanyID,
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a
// fresh pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	employeeID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	emp, err := h.Employees.GetByID(ctx, employeeID)
	if err != nil || !emp.Active() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	return h.issuePair(c, http.StatusOK, ctx, employeePart{
		ID: emp.ID, Email: emp.Email, Role: emp.Role, CompanyID: emp.CompanyID,
	})
}

// RefreshAccess issues a new access token from a refresh token WITHOUT
// rotating it.  Useful for clients that refresh eagerly.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	employeeID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	emp, err := h.Employees.GetByID(ctx, employeeID)
	if err != nil || !emp.Active() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, emp.ID, emp.CompanyID, emp.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes a single session by refresh token.  The protected
// LogoutAll variant revokes every session of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every refresh token of the authenticated employee.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForEmployee(ctx, employeeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity back from the token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"employee_id": c.Get("employee_id"),
		"company_id":  c.Get("company_id"),
		"role":        c.Get("role"),
	})
}

// issuePair signs an access token, stores a hashed refresh token and
// writes the standard auth response.
func (h *AuthHandler) issuePair(c echo.Context, status int, ctx context.Context, emp employeePart) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, emp.ID, emp.CompanyID, emp.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, emp.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		Employee: emp,
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:  tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}
