package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/application"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/transport/mw"
)

// Handler holds all HTTP handler methods.
type Handler struct {
	svc *application.Service
	hub *Hub
}

// NewHandler creates a new Handler.
func NewHandler(svc *application.Service, hub *Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

type permissionReport struct {
	Status string `json:"status" validate:"required,oneof=granted denied undetermined"`
}

type itemBody struct {
	DurationDays int       `json:"duration_days"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiredAt    time.Time `json:"expired_at"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	Link         string    `json:"link"`
}

type itemEventRequest struct {
	Type     string    `json:"type" validate:"required,oneof=ITEM_ACTIVATED ITEM_RENEWED ITEM_DURATION_UPDATED ITEM_DEACTIVATED"`
	EventID  string    `json:"event_id"`
	ItemName string    `json:"item_name" validate:"required"`
	Item     *itemBody `json:"item"`
}

// --- Notifications ---

// Initialize POST /notifications/init
func (h *Handler) Initialize(c echo.Context) error {
	owner := mustOwner(c)
	return c.JSON(http.StatusOK, h.svc.Initialize(c.Request().Context(), owner))
}

// Sync POST /notifications/sync
func (h *Handler) Sync(c echo.Context) error {
	owner := mustOwner(c)
	res := h.svc.SyncUser(c.Request().Context(), owner)
	if res.Skipped && res.Error == domain.ErrSyncInProgress.Error() {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusOK, res)
}

// ListScheduled GET /notifications/scheduled
func (h *Handler) ListScheduled(c echo.Context) error {
	owner := mustOwner(c)

	list, err := h.svc.ListScheduled(c.Request().Context(), owner)
	if err != nil {
		return echo.ErrInternalServerError
	}
	if list == nil {
		list = []domain.ScheduledNotification{}
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list})
}

// CancelAll DELETE /notifications/scheduled
func (h *Handler) CancelAll(c echo.Context) error {
	owner := mustOwner(c)
	n := h.svc.CancelAll(c.Request().Context(), owner)
	return c.JSON(http.StatusOK, map[string]int{"cancelled": n})
}

// --- Permission ---

// GetPermission GET /notifications/permission
func (h *Handler) GetPermission(c echo.Context) error {
	owner := mustOwner(c)
	return c.JSON(http.StatusOK, map[string]bool{
		"granted": h.svc.HasPermission(c.Request().Context(), owner),
	})
}

// RequestPermission POST /notifications/permission
// A grant triggers a sync of the caller's notifications.
func (h *Handler) RequestPermission(c echo.Context) error {
	owner := mustOwner(c)
	ctx := c.Request().Context()

	if !h.svc.RequestPermission(ctx, owner) {
		return c.JSON(http.StatusOK, map[string]any{"granted": false})
	}
	res := h.svc.SyncUser(ctx, owner)
	return c.JSON(http.StatusOK, map[string]any{"granted": true, "sync": res})
}

// ReportPermission PUT /notifications/permission
func (h *Handler) ReportPermission(c echo.Context) error {
	owner := mustOwner(c)

	var req permissionReport
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	status, _ := domain.ParsePermissionStatus(req.Status)
	if err := h.svc.ReportPermission(c.Request().Context(), owner, status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Items ---

// ItemEvent POST /items/events
func (h *Handler) ItemEvent(c echo.Context) error {
	owner := mustOwner(c)

	var req itemEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ev := domain.Event{
		Type:     domain.EventType(req.Type),
		EventID:  req.EventID,
		Owner:    owner,
		ItemName: req.ItemName,
	}
	if req.Item != nil {
		ev.Item = &domain.Item{
			Name:         req.ItemName,
			Owner:        owner,
			DurationDays: req.Item.DurationDays,
			CreatedAt:    req.Item.CreatedAt,
			ExpiredAt:    req.Item.ExpiredAt,
			Category:     domain.Category(req.Item.Category),
			Description:  req.Item.Description,
			Icon:         req.Item.Icon,
			Link:         req.Item.Link,
		}
	}

	out, err := h.svc.HandleEvent(c.Request().Context(), ev)
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidItem):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

// CancelItem DELETE /items/:name/notifications
// Always scoped to the caller; the all-owners cancel is not reachable over HTTP.
func (h *Handler) CancelItem(c echo.Context) error {
	owner := mustOwner(c)
	if owner == "" {
		return echo.ErrUnauthorized
	}

	h.svc.CancelForItem(c.Request().Context(), c.Param("name"), owner)
	return c.NoContent(http.StatusNoContent)
}

// --- SSE Handler ---

// Stream GET /notifications/stream (SSE)
func (h *Handler) Stream(c echo.Context) error {
	owner := mustOwner(c)

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sendCh := make(chan []byte, 32)
	client := h.hub.Register(owner, sendCh)
	defer h.hub.Unregister(client)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"ok\"}\n\n")
	w.Flush()

	log.Info().Str("owner", owner).Msg("SSE stream opened")

	ctx := c.Request().Context()
	for {
		select {
		case msg, ok := <-sendCh:
			if !ok {
				return nil
			}
			if _, err := w.Write(msg); err != nil {
				return nil
			}
			w.Flush()

		case <-ctx.Done():
			log.Info().Str("owner", owner).Msg("SSE stream closed by client")
			return nil
		}
	}
}

// --- Healthcheck ---

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"sse_clients": h.hub.ConnectedCount(),
	})
}

// --- Helpers ---

func mustOwner(c echo.Context) string {
	owner, _ := c.Get(mw.OwnerKey).(string)
	return owner
}
