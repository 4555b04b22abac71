package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/dto"
)

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	CreateEventFunc        func(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEventFunc           func(ctx context.Context, eventID string) (*dto.EventResponse, error)
	ListUpcomingEventsFunc func(ctx context.Context) (*dto.EventListResponse, error)
	GetOrganizerEventsFunc func(ctx context.Context, organizerID string) (*dto.EventListResponse, error)
	CancelEventFunc        func(ctx context.Context, eventID string) (*dto.CancelEventResponse, error)
}

func (m *MockEventService) CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, organizerID, req)
	}
	return nil, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockEventService) ListUpcomingEvents(ctx context.Context) (*dto.EventListResponse, error) {
	if m.ListUpcomingEventsFunc != nil {
		return m.ListUpcomingEventsFunc(ctx)
	}
	return nil, nil
}

func (m *MockEventService) GetOrganizerEvents(ctx context.Context, organizerID string) (*dto.EventListResponse, error) {
	if m.GetOrganizerEventsFunc != nil {
		return m.GetOrganizerEventsFunc(ctx, organizerID)
	}
	return nil, nil
}

func (m *MockEventService) CancelEvent(ctx context.Context, eventID string) (*dto.CancelEventResponse, error) {
	if m.CancelEventFunc != nil {
		return m.CancelEventFunc(ctx, eventID)
	}
	return nil, nil
}

func setupEventRouter(handler *EventHandler, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			if role != "" {
				c.Set("role", role)
			}
			c.Next()
		})
	}

	router.POST("/events", handler.Create)
	router.GET("/events", handler.List)
	router.GET("/events/:id", handler.Get)
	router.GET("/events/:id/availability", handler.Availability)
	router.POST("/events/:id/cancel", handler.Cancel)
	router.GET("/admin/events", handler.OrganizerEvents)

	return router
}

func TestEventHandler_Create(t *testing.T) {
	startsAt := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name           string
		userID         string
		request        *dto.CreateEventRequest
		mockFunc       func(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "successful creation",
			userID: "org-123",
			request: &dto.CreateEventRequest{
				Title:    "Summer Concert",
				StartsAt: startsAt,
				Capacity: 100,
			},
			mockFunc: func(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
				return &dto.EventResponse{
					ID:             "event-123",
					OrganizerID:    organizerID,
					Title:          req.Title,
					StartsAt:       req.StartsAt,
					Capacity:       req.Capacity,
					AvailableSeats: req.Capacity,
					Status:         "active",
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized - no user_id",
			userID:         "",
			request:        &dto.CreateEventRequest{Title: "X", StartsAt: startsAt, Capacity: 10},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:   "validation error from service",
			userID: "org-123",
			request: &dto.CreateEventRequest{
				Title:    "ok",
				StartsAt: startsAt,
				Capacity: 10,
			},
			mockFunc: func(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
				return nil, domain.ErrInvalidTitle
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEventService{
				CreateEventFunc: tt.mockFunc,
			}
			handler := NewEventHandler(mockService, &MockReservationService{})
			router := setupEventRouter(handler, tt.userID, "")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestEventHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		mockFunc       func(ctx context.Context, eventID string) (*dto.EventResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful get",
			eventID: "event-123",
			mockFunc: func(ctx context.Context, eventID string) (*dto.EventResponse, error) {
				return &dto.EventResponse{ID: eventID, Title: "Summer Concert", Status: "active"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "not found",
			eventID: "non-existent",
			mockFunc: func(ctx context.Context, eventID string) (*dto.EventResponse, error) {
				return nil, domain.ErrEventNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEventService{
				GetEventFunc: tt.mockFunc,
			}
			handler := NewEventHandler(mockService, &MockReservationService{})
			router := setupEventRouter(handler, "", "")

			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventID, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestEventHandler_Availability(t *testing.T) {
	mockReservations := &MockReservationService{
		GetAvailabilityFunc: func(ctx context.Context, eventID string) (*dto.AvailabilityResponse, error) {
			return &dto.AvailabilityResponse{
				EventID:        eventID,
				Capacity:       100,
				AvailableSeats: 42,
				Reserved:       58,
				Status:         "active",
				AsOf:           time.Now(),
			}, nil
		},
	}
	handler := NewEventHandler(&MockEventService{}, mockReservations)
	router := setupEventRouter(handler, "", "")

	req := httptest.NewRequest(http.MethodGet, "/events/event-123/availability", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response dto.AvailabilityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.AvailableSeats != 42 || response.Reserved != 58 {
		t.Errorf("unexpected snapshot: %+v", response)
	}
}

func TestEventHandler_Cancel(t *testing.T) {
	getEvent := func(ctx context.Context, eventID string) (*dto.EventResponse, error) {
		return &dto.EventResponse{
			ID:          eventID,
			OrganizerID: "org-123",
			Title:       "Summer Concert",
			Status:      "active",
		}, nil
	}

	tests := []struct {
		name           string
		userID         string
		role           string
		getEventFunc   func(ctx context.Context, eventID string) (*dto.EventResponse, error)
		cancelFunc     func(ctx context.Context, eventID string) (*dto.CancelEventResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:         "creator can cancel",
			userID:       "org-123",
			getEventFunc: getEvent,
			cancelFunc: func(ctx context.Context, eventID string) (*dto.CancelEventResponse, error) {
				return &dto.CancelEventResponse{
					EventID:               eventID,
					Status:                "cancelled",
					CancelledReservations: 3,
					Message:               "Event cancelled, all reservations released",
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:         "super admin can cancel someone else's event",
			userID:       "admin-1",
			role:         domain.RoleSuperAdmin,
			getEventFunc: getEvent,
			cancelFunc: func(ctx context.Context, eventID string) (*dto.CancelEventResponse, error) {
				return &dto.CancelEventResponse{EventID: eventID, Status: "cancelled"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "other user is forbidden",
			userID:         "user-999",
			role:           domain.RoleUser,
			getEventFunc:   getEvent,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "unauthorized - no user_id",
			userID:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:   "event not found",
			userID: "org-123",
			getEventFunc: func(ctx context.Context, eventID string) (*dto.EventResponse, error) {
				return nil, domain.ErrEventNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:         "already cancelled",
			userID:       "org-123",
			getEventFunc: getEvent,
			cancelFunc: func(ctx context.Context, eventID string) (*dto.CancelEventResponse, error) {
				return nil, domain.ErrEventNotActive
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_STATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEventService{
				GetEventFunc:    tt.getEventFunc,
				CancelEventFunc: tt.cancelFunc,
			}
			handler := NewEventHandler(mockService, &MockReservationService{})
			router := setupEventRouter(handler, tt.userID, tt.role)

			req := httptest.NewRequest(http.MethodPost, "/events/event-123/cancel", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestEventHandler_List(t *testing.T) {
	mockService := &MockEventService{
		ListUpcomingEventsFunc: func(ctx context.Context) (*dto.EventListResponse, error) {
			return &dto.EventListResponse{
				Data: []*dto.EventResponse{
					{ID: "event-1", Status: "active"},
					{ID: "event-2", Status: "active"},
				},
				Count: 2,
			}, nil
		},
	}
	handler := NewEventHandler(mockService, &MockReservationService{})
	router := setupEventRouter(handler, "", "")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response dto.EventListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Count != 2 {
		t.Errorf("expected count 2, got %d", response.Count)
	}
}

func TestEventHandler_OrganizerEvents(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		expectedStatus int
	}{
		{name: "successful list", userID: "org-123", expectedStatus: http.StatusOK},
		{name: "unauthorized - no user_id", userID: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEventService{
				GetOrganizerEventsFunc: func(ctx context.Context, organizerID string) (*dto.EventListResponse, error) {
					if organizerID != tt.userID {
						t.Errorf("expected organizer %q, got %q", tt.userID, organizerID)
					}
					return &dto.EventListResponse{Data: []*dto.EventResponse{}}, nil
				},
			}
			handler := NewEventHandler(mockService, &MockReservationService{})
			router := setupEventRouter(handler, tt.userID, "")

			req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
