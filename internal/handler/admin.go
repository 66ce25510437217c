package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/config"
	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// AdminHandler bundles the repositories admins manage: company profile,
// employees (soft delete), rooms, global timeslots, calendar events and
// per-room occupancy listings.  Everything except timeslots is scoped
// to the admin's own company.
type AdminHandler struct {
	Cfg          config.Config
	Companies    *repository.CompanyRepo
	Employees    *repository.EmployeeRepo
	Rooms        *repository.RoomRepo
	Timeslots    *repository.TimeslotRepo
	Events       *repository.EventRepo
	Reservations *repository.ReservationRepo
}

func NewAdminHandler(cfg config.Config, companies *repository.CompanyRepo,
	employees *repository.EmployeeRepo, rooms *repository.RoomRepo,
	timeslots *repository.TimeslotRepo, events *repository.EventRepo,
	reservations *repository.ReservationRepo) *AdminHandler {
	if companies == nil || employees == nil || rooms == nil || timeslots == nil ||
		events == nil || reservations == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{
		Cfg:          cfg,
		Companies:    companies,
		Employees:    employees,
		Rooms:        rooms,
		Timeslots:    timeslots,
		Events:       events,
		Reservations: reservations,
	}
}

// ---- company ----

type companyReq struct {
	Name string `json:"name"`
}

// GetCompany handles GET /v1/admin/company.
func (h *AdminHandler) GetCompany(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	co, err := h.Companies.GetByID(c.Request().Context(), companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load company"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": co})
}

// UpdateCompany handles PUT /v1/admin/company (rename).
func (h *AdminHandler) UpdateCompany(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req companyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	co := &model.Company{ID: companyID, Name: strings.TrimSpace(req.Name)}
	if err := h.Companies.Update(c.Request().Context(), co); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update company"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "company updated"})
}

// ---- employees ----

type createEmployeeReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // ADMIN | EMPLOYEE
}

// ListEmployees handles GET /v1/admin/employees (active only).
func (h *AdminHandler) ListEmployees(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	employees, err := h.Employees.ListByCompany(c.Request().Context(), companyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load employees"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": employees})
}

// CreateEmployee handles POST /v1/admin/employees.
func (h *AdminHandler) CreateEmployee(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEmployeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleEmployee {
		role = model.RoleEmployee
	}

	id, err := h.Employees.Create(c.Request().Context(), companyID, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create employee failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"item": employeePart{ID: id, Email: req.Email, Role: role, CompanyID: companyID},
	})
}

// UpdateEmployeeRole handles PATCH /v1/admin/employees/:id.
func (h *AdminHandler) UpdateEmployeeRole(c echo.Context) error {
	emp, err := h.companyEmployee(c)
	if err != nil {
		return err // response already written
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleEmployee {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or EMPLOYEE"})
	}
	if err := h.Employees.UpdateRole(c.Request().Context(), emp.ID, role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

// DeleteEmployee handles DELETE /v1/admin/employees/:id.  Deletion is
// soft: the account is flipped to DELETED so reservation history stays
// intact while logins and new bookings stop working.
func (h *AdminHandler) DeleteEmployee(c echo.Context) error {
	emp, err := h.companyEmployee(c)
	if err != nil {
		return err
	}
	if err := h.Employees.SetStatus(c.Request().Context(), emp.ID, model.EmployeeStatusDeleted); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete employee"})
	}
	return c.NoContent(http.StatusNoContent)
}

// companyEmployee loads the :id employee and verifies company scope,
// writing the error response itself when something is off.
func (h *AdminHandler) companyEmployee(c echo.Context) (*model.Employee, error) {
	companyID, err := getCompanyID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	emp, err := h.Employees.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load employee"})
	}
	if emp.CompanyID != companyID {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
	}
	return emp, nil
}

// ---- rooms ----

type roomReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
	Location string `json:"location"`
}

// CreateRoom handles POST /v1/admin/rooms.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity required"})
	}
	room := &model.Room{
		CompanyID: companyID,
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		Location:  strings.TrimSpace(req.Location),
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": room})
}

// UpdateRoom handles PUT/PATCH /v1/admin/rooms/:id.
func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	room, err := h.companyRoom(c)
	if err != nil {
		return err
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) != "" {
		room.Name = strings.TrimSpace(req.Name)
	}
	if req.Capacity != 0 {
		room.Capacity = req.Capacity
	}
	if strings.TrimSpace(req.Location) != "" {
		room.Location = strings.TrimSpace(req.Location)
	}
	if err := h.Rooms.Update(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": room})
}

// DeleteRoom handles DELETE /v1/admin/rooms/:id.  Rooms with existing
// reservations cannot be removed.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	room, err := h.companyRoom(c)
	if err != nil {
		return err
	}
	if err := h.Rooms.Delete(c.Request().Context(), room.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RoomReservations handles GET /v1/admin/rooms/:id/reservations?date=
// — the occupancy listing for one room on one day.
func (h *AdminHandler) RoomReservations(c echo.Context) error {
	room, err := h.companyRoom(c)
	if err != nil {
		return err
	}
	date, ok := parseDate(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query param must be YYYY-MM-DD"})
	}
	items, err := h.Reservations.ListByRoomAndDate(c.Request().Context(), room.ID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminHandler) companyRoom(c echo.Context) (*model.Room, error) {
	companyID, err := getCompanyID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	if room.CompanyID != companyID {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return room, nil
}

// ---- timeslots ----

type timeslotReq struct {
	StartTime string `json:"start_time"` // HH:MM or HH:MM:SS
	EndTime   string `json:"end_time"`
}

func validClock(s string) bool {
	if _, err := time.Parse("15:04:05", s); err == nil {
		return true
	}
	if _, err := time.Parse("15:04", s); err == nil {
		return true
	}
	return false
}

// CreateTimeslot handles POST /v1/admin/timeslots.  Timeslots are
// global across companies.
func (h *AdminHandler) CreateTimeslot(c echo.Context) error {
	var req timeslotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !validClock(req.StartTime) || !validClock(req.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time/end_time must be HH:MM[:SS]"})
	}
	if req.EndTime <= req.StartTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	slot := &model.Timeslot{StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.Timeslots.Create(c.Request().Context(), slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create timeslot"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": slot})
}

// UpdateTimeslot handles PUT /v1/admin/timeslots/:id.
func (h *AdminHandler) UpdateTimeslot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid timeslot id"})
	}
	var req timeslotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !validClock(req.StartTime) || !validClock(req.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time/end_time must be HH:MM[:SS]"})
	}
	if req.EndTime <= req.StartTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	slot := &model.Timeslot{ID: id, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.Timeslots.Update(c.Request().Context(), slot); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "timeslot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update timeslot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": slot})
}

// DeleteTimeslot handles DELETE /v1/admin/timeslots/:id.  Referenced
// timeslots cannot be removed.
func (h *AdminHandler) DeleteTimeslot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid timeslot id"})
	}
	if err := h.Timeslots.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "timeslot not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "timeslot has reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete timeslot"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- company events ----

type eventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, starts_at and ends_at required"})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	event := &model.CompanyEvent{
		CompanyID:   companyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   callerID,
	}
	if err := h.Events.Create(c.Request().Context(), event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": event})
}

// UpdateEvent handles PUT /v1/admin/events/:id.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	event, err := h.companyEvent(c)
	if err != nil {
		return err
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) != "" {
		event.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if !req.StartsAt.IsZero() {
		event.StartsAt = req.StartsAt
	}
	if !req.EndsAt.IsZero() {
		event.EndsAt = req.EndsAt
	}
	if !event.EndsAt.After(event.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	if err := h.Events.Update(c.Request().Context(), event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": event})
}

// DeleteEvent handles DELETE /v1/admin/events/:id.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	event, err := h.companyEvent(c)
	if err != nil {
		return err
	}
	if err := h.Events.Delete(c.Request().Context(), event.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete event"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) companyEvent(c echo.Context) (*model.CompanyEvent, error) {
	companyID, err := getCompanyID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if event.CompanyID != companyID {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return event, nil
}
