package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/dto"
	"github.com/seatsurge/eventbooking/internal/service"
	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService       service.EventService
	reservationService service.ReservationService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, reservationService service.ReservationService) *EventHandler {
	return &EventHandler{
		eventService:       eventService,
		reservationService: reservationService,
	}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("organizer_id", userID),
		attribute.Int("capacity", req.Capacity),
	)

	result, err := h.eventService.CreateEvent(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.eventService.ListUpcomingEvents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", result.Count))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// Availability handles GET /events/:id/availability
func (h *EventHandler) Availability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.reservationService.GetAvailability(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// Cancel handles POST /events/:id/cancel. Only the event's creator or a
// super admin may cancel.
func (h *EventHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("user_id", userID),
	)

	event, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	role := c.GetString("role")
	if event.OrganizerID != userID && role != domain.RoleSuperAdmin {
		span.SetStatus(codes.Error, "forbidden")
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: "only the event creator or a super admin can cancel an event",
			Code:  "FORBIDDEN",
		})
		return
	}

	result, err := h.eventService.CancelEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("cascade_size", result.CancelledReservations))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// OrganizerEvents handles GET /admin/events
func (h *EventHandler) OrganizerEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.organizer_events")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	span.SetAttributes(attribute.String("organizer_id", userID))

	result, err := h.eventService.GetOrganizerEvents(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", result.Count))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
