package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// BrowseHandler serves the read-mostly employee endpoints: rooms,
// timeslots, company events, room reviews and earned achievements.
// Everything is scoped to the caller's company from the token.
type BrowseHandler struct {
	Rooms        *repository.RoomRepo
	Timeslots    *repository.TimeslotRepo
	Events       *repository.EventRepo
	Reviews      *repository.ReviewRepo
	Achievements *repository.AchievementRepo
}

func NewBrowseHandler(rooms *repository.RoomRepo, timeslots *repository.TimeslotRepo,
	events *repository.EventRepo, reviews *repository.ReviewRepo,
	achievements *repository.AchievementRepo) *BrowseHandler {
	if rooms == nil || timeslots == nil || events == nil || reviews == nil || achievements == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{
		Rooms:        rooms,
		Timeslots:    timeslots,
		Events:       events,
		Reviews:      reviews,
		Achievements: achievements,
	}
}

// ListRooms handles GET /v1/rooms.
func (h *BrowseHandler) ListRooms(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rooms, err := h.Rooms.ListByCompany(c.Request().Context(), companyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// GetRoom handles GET /v1/rooms/:id.  Rooms of other companies read as
// missing.
func (h *BrowseHandler) GetRoom(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	if room.CompanyID != companyID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": room})
}

// ListTimeslots handles GET /v1/timeslots.  Timeslots are global.
func (h *BrowseHandler) ListTimeslots(c echo.Context) error {
	slots, err := h.Timeslots.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load timeslots"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// ListEvents handles GET /v1/events for the caller's company calendar.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	events, err := h.Events.ListByCompany(c.Request().Context(), companyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

type createReviewReq struct {
	Rating  uint8  `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /v1/rooms/:id/reviews.  One review per
// employee per room; a second attempt conflicts.
func (h *BrowseHandler) CreateReview(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5"})
	}

	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	if room.CompanyID != companyID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	review := &model.RoomReview{
		RoomID:     roomID,
		EmployeeID: callerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.Reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": review})
}

// ListRoomReviews handles GET /v1/rooms/:id/reviews.
func (h *BrowseHandler) ListRoomReviews(c echo.Context) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	if room.CompanyID != companyID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	reviews, err := h.Reviews.ListByRoom(ctx, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reviews"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}

// DeleteReview handles DELETE /v1/reviews/:id.  Employees can only
// remove their own reviews.
func (h *BrowseHandler) DeleteReview(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	ctx := c.Request().Context()
	review, err := h.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load review"})
	}
	if review.EmployeeID != callerID {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not allowed"})
	}
	if err := h.Reviews.Delete(ctx, reviewID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete review"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAchievements handles GET /v1/achievements: the full badge ladder,
// so clients can show progress toward unearned badges too.
func (h *BrowseHandler) ListAchievements(c echo.Context) error {
	defs, err := h.Achievements.ListDefinitions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load achievements"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": defs})
}

// MyAchievements handles GET /v1/my-achievements.
func (h *BrowseHandler) MyAchievements(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	badges, err := h.Achievements.ListForEmployee(c.Request().Context(), callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load achievements"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": badges})
}
