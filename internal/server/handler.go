package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/service"
	"github.com/agendamed/agenda/internal/timeutil"
	"github.com/agendamed/agenda/internal/weekimage"
)

// Handler exposes the scheduling engine over HTTP.
type Handler struct {
	schedule    *service.ScheduleService
	bookings    *service.BookingService
	templates   *service.TemplateService
	replication *service.ReplicationService
	deletion    *service.DeletionService
	logger      *zap.Logger
}

func NewHandler(
	schedule *service.ScheduleService,
	bookings *service.BookingService,
	templates *service.TemplateService,
	replication *service.ReplicationService,
	deletion *service.DeletionService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		schedule:    schedule,
		bookings:    bookings,
		templates:   templates,
		replication: replication,
		deletion:    deletion,
		logger:      logger,
	}
}

// RegisterRoutes mounts the API on the provided group.
//
//	GET    /professionals/:id/week               - Week view (slots + bookings)
//	GET    /professionals/:id/week.png           - Week view rendered as PNG
//	POST   /slots                                - Create one slot
//	POST   /slots/batch                          - Create a batch, all or nothing
//	PUT    /slots/:id/position                   - Move or resize a slot
//	POST   /slots/:id/bookings                   - Book a slot
//	DELETE /bookings/:id                         - Delete a booking
//	PUT    /bookings/:id/status                  - Toggle pending/confirmed
//	GET    /professionals/:id/templates          - List templates
//	POST   /templates                            - Create a template
//	PUT    /templates/:id                        - Edit, with propagation decision
//	DELETE /templates/:id                        - Delete a template
//	POST   /templates/:id/generate               - Materialize over a time range
//	POST   /professionals/:id/weeks/copy         - Replicate a week
//	POST   /professionals/:id/deletion-plan      - Preview a bulk deletion
//	POST   /professionals/:id/deletion-execute   - Apply a previewed plan
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/professionals/:id/week", h.GetWeek)
	g.GET("/professionals/:id/week.png", h.GetWeekImage)

	g.POST("/slots", h.CreateSlot)
	g.POST("/slots/batch", h.CreateSlotsBatch)
	g.PUT("/slots/:id/position", h.MoveSlot)

	g.POST("/slots/:id/bookings", h.CreateBooking)
	g.DELETE("/bookings/:id", h.DeleteBooking)
	g.PUT("/bookings/:id/status", h.SetBookingStatus)

	g.GET("/professionals/:id/templates", h.ListTemplates)
	g.POST("/templates", h.CreateTemplate)
	g.PUT("/templates/:id", h.SaveTemplate)
	g.DELETE("/templates/:id", h.DeleteTemplate)
	g.POST("/templates/:id/generate", h.GenerateSlots)

	g.POST("/professionals/:id/weeks/copy", h.CopyWeek)
	g.POST("/professionals/:id/deletion-plan", h.PlanDeletion)
	g.POST("/professionals/:id/deletion-execute", h.ExecuteDeletion)
}

// GetWeek handles GET /professionals/:id/week?date=YYYY-MM-DD. Any date
// in the week works; it is snapped to its Monday.
func (h *Handler) GetWeek(c echo.Context) error {
	professionalID := c.Param("id")
	date := c.QueryParam("date")
	if _, err := timeutil.ParseDate(date); err != nil {
		return writeError(c, &service.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}
	monday := timeutil.MondayOf(date)

	slots, bookings, err := h.schedule.ListWeek(c.Request().Context(), professionalID, monday)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"monday":   monday,
		"slots":    slots,
		"bookings": bookings,
	})
}

// GetWeekImage handles GET /professionals/:id/week.png?date=YYYY-MM-DD.
func (h *Handler) GetWeekImage(c echo.Context) error {
	professionalID := c.Param("id")
	date := c.QueryParam("date")
	parsed, err := timeutil.ParseDate(date)
	if err != nil {
		return writeError(c, &service.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}
	monday := timeutil.MondayOf(date)

	slots, bookings, err := h.schedule.ListWeek(c.Request().Context(), professionalID, monday)
	if err != nil {
		return writeError(c, err)
	}
	png, err := weekimage.Render(parsed, slots, bookings)
	if err != nil {
		h.logger.Error("render week image", zap.Error(err))
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// CreateSlot handles POST /slots.
func (h *Handler) CreateSlot(c echo.Context) error {
	var slot model.Slot
	if err := c.Bind(&slot); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	created, err := h.schedule.CreateSlot(c.Request().Context(), &slot)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// CreateSlotsBatch handles POST /slots/batch. The whole batch passes
// validation or nothing is written.
func (h *Handler) CreateSlotsBatch(c echo.Context) error {
	var payloads []*model.Slot
	if err := c.Bind(&payloads); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	created, err := h.schedule.CreateSlotsBatch(c.Request().Context(), payloads)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type positionRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// MoveSlot handles PUT /slots/:id/position. On 409 nothing changed and
// the client reverts its optimistic placement; on 200 the body carries
// the applied (normalized) interval.
func (h *Handler) MoveSlot(c echo.Context) error {
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	slot, err := h.schedule.MoveOrResizeSlot(c.Request().Context(), c.Param("id"), req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slot)
}

// CreateBooking handles POST /slots/:id/bookings.
func (h *Handler) CreateBooking(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	booking, err := h.bookings.CreateBooking(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// DeleteBooking handles DELETE /bookings/:id.
func (h *Handler) DeleteBooking(c echo.Context) error {
	if err := h.bookings.DeleteBooking(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetBookingStatus handles PUT /bookings/:id/status.
func (h *Handler) SetBookingStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	booking, err := h.bookings.SetBookingStatus(c.Request().Context(), c.Param("id"), model.BookingStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListTemplates handles GET /professionals/:id/templates.
func (h *Handler) ListTemplates(c echo.Context) error {
	templates, err := h.templates.ListTemplates(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// CreateTemplate handles POST /templates.
func (h *Handler) CreateTemplate(c echo.Context) error {
	var tpl model.SlotTemplate
	if err := c.Bind(&tpl); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	created, err := h.templates.CreateTemplate(c.Request().Context(), &tpl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type templateSaveRequest struct {
	model.SlotTemplate
	Decision string `json:"decision"` // "", "propagate" or "template-only"
}

// SaveTemplate handles PUT /templates/:id. When the template has
// materialized slots and no decision is given, the response carries
// state "confirming" and nothing is written; the client re-submits with
// a decision.
func (h *Handler) SaveTemplate(c echo.Context) error {
	var req templateSaveRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	req.SlotTemplate.ID = c.Param("id")
	result, err := h.templates.SaveEdits(c.Request().Context(), &req.SlotTemplate, service.PropagationDecision(req.Decision))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteTemplate handles DELETE /templates/:id.
func (h *Handler) DeleteTemplate(c echo.Context) error {
	if err := h.templates.DeleteTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type generateRequest struct {
	Date       string `json:"date"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
}

// GenerateSlots handles POST /templates/:id/generate.
func (h *Handler) GenerateSlots(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	created, err := h.templates.GenerateSlots(c.Request().Context(), c.Param("id"), req.Date, req.RangeStart, req.RangeEnd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type copyWeekRequest struct {
	SourceMonday  string   `json:"source_monday"`
	TargetMondays []string `json:"target_mondays"`
}

// CopyWeek handles POST /professionals/:id/weeks/copy.
func (h *Handler) CopyWeek(c echo.Context) error {
	var req copyWeekRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	if len(req.TargetMondays) == 0 {
		return writeError(c, &service.ValidationError{Field: "target_mondays", Reason: "at least one target week required"})
	}
	results, err := h.replication.CopyWeek(c.Request().Context(), c.Param("id"), req.SourceMonday, req.TargetMondays)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

type deletionPlanRequest struct {
	Monday  string   `json:"monday,omitempty"`
	SlotIDs []string `json:"slot_ids,omitempty"`
}

// PlanDeletion handles POST /professionals/:id/deletion-plan. With a
// monday it plans a whole-week deletion, otherwise an explicit id set.
func (h *Handler) PlanDeletion(c echo.Context) error {
	var req deletionPlanRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}

	var plan *service.DeletionPlan
	var err error
	if req.Monday != "" {
		plan, err = h.deletion.PlanWeekDeletion(c.Request().Context(), c.Param("id"), req.Monday)
	} else {
		plan, err = h.deletion.PlanDeletion(c.Request().Context(), c.Param("id"), req.SlotIDs)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// ExecuteDeletion handles POST /professionals/:id/deletion-execute with
// a previously returned plan as body. Bookings are re-checked at this
// point, so a slot booked since planning survives.
func (h *Handler) ExecuteDeletion(c echo.Context) error {
	var plan service.DeletionPlan
	if err := c.Bind(&plan); err != nil {
		return writeError(c, &service.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	plan.ProfessionalID = c.Param("id")
	deleted, err := h.deletion.Execute(c.Request().Context(), &plan)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}
