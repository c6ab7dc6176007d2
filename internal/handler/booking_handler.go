package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/internal/auth"
	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	"github.com/stayhub/service-booking/internal/middleware"
	"github.com/stayhub/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	// Public availability endpoint for calendar disabling.
	r.GET("/api/v1/rooms/:roomId/availability", h.GetRoomAvailability)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleGuest), h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/hotel", middleware.RequireRole(auth.RoleHost), h.ListHotelBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.PATCH("/:id/status", middleware.RequireRole(auth.RoleHost), h.UpdateBookingStatus)
		bookings.PATCH("/:id/payment", middleware.RequireRole(auth.RoleHost), h.UpdatePaymentStatus)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMyBookings handles GET /api/v1/bookings (guest's own bookings).
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListMyBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListHotelBookings handles GET /api/v1/bookings/hotel (host's hotels).
func (h *BookingHandler) ListHotelBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListHotelBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, bookingID, ok := callerAndID(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), caller, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	caller, bookingID, ok := callerAndID(c)
	if !ok {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), caller, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBookingStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	caller, bookingID, ok := callerAndID(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBookingStatus(c.Request.Context(), caller, bookingID, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdatePaymentStatus handles PATCH /api/v1/bookings/:id/payment.
func (h *BookingHandler) UpdatePaymentStatus(c *gin.Context) {
	caller, bookingID, ok := callerAndID(c)
	if !ok {
		return
	}

	var body struct {
		PaymentStatus string `json:"payment_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePaymentStatus(c.Request.Context(), caller, bookingID, body.PaymentStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRoomAvailability handles GET /api/v1/rooms/:roomId/availability.
func (h *BookingHandler) GetRoomAvailability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.service.GetRoomAvailability(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// callerAndID extracts the authenticated caller and the :id path param.
func callerAndID(c *gin.Context) (bookingDomain.Caller, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return bookingDomain.Caller{}, uuid.Nil, false
	}
	role, _ := middleware.GetUserRole(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return bookingDomain.Caller{}, uuid.Nil, false
	}
	return bookingDomain.Caller{UserID: userID, Role: role}, bookingID, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
