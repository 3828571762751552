package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salaryviz/internal/models"
	"salaryviz/internal/scale"
	"salaryviz/internal/view"
)

type Handler struct {
	coord  atomic.Pointer[view.Coordinator]
	frames *FrameStore
}

// NewHandler returns a handler serving frames from store. Until a
// coordinator is set every event endpoint answers 503.
func NewHandler(store *FrameStore) *Handler {
	return &Handler{frames: store}
}

// SetCoordinator makes the API live.
func (h *Handler) SetCoordinator(c *view.Coordinator) {
	h.coord.Store(c)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/views/:name", h.GetFrame)
	api.GET("/rows", h.GetRows)

	live := h.requireCoordinator
	api.POST("/render", h.Render, live)
	api.GET("/brush", h.Selection, live)
	api.POST("/brush", h.Brush, live)
	api.DELETE("/brush", h.ClearBrush, live)
	api.POST("/zoom", h.Zoom, live)
	api.DELETE("/zoom", h.ResetZoom, live)
	api.POST("/zoom/wheel", h.ZoomWheel, live)
	api.POST("/zoom/pan", h.ZoomPan, live)
	api.POST("/hover/:name", h.HoverEnter, live)
	api.DELETE("/hover/:name", h.HoverExit, live)
	api.POST("/resize", h.Resize, live)
}

// --- REQUESTS ---

type brushRequest struct {
	View string  `json:"view"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
}

type brushResponse struct {
	view.FilterResult
	Message string `json:"message"`
}

type zoomRequest struct {
	View string `json:"view"`
	scale.Transform
	Active bool `json:"active"`
}

type wheelRequest struct {
	View   string  `json:"view"`
	Factor float64 `json:"factor"`
	PX     float64 `json:"px"`
	PY     float64 `json:"py"`
	Active bool    `json:"active"`
}

type panRequest struct {
	View   string  `json:"view"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Active bool    `json:"active"`
}

type hoverRequest struct {
	Index int `json:"index"`
}

type resizeRequest struct {
	Views map[string]models.Size `json:"views"`
}

// --- HANDLERS ---

func (h *Handler) requireCoordinator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.coord.Load() == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		return next(c)
	}
}

func (h *Handler) Health(c echo.Context) error {
	if h.coord.Load() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetFrame(c echo.Context) error {
	f, version, ok := h.frames.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no frame for view "+strconv.Quote(c.Param("name")))
	}
	c.Response().Header().Set("X-Frame-Version", strconv.Itoa(version))
	return c.JSON(http.StatusOK, f)
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetRows pages through the current working set.
func (h *Handler) GetRows(c echo.Context) error {
	coord := h.coord.Load()
	if coord == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
	}
	rows := coord.WorkingSet()
	total := len(rows)
	limit, offset := getPaginationParams(c, 100)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data": []models.Row{}, "total": total, "limit": limit, "offset": offset,
		})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   rows[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) Render(c echo.Context) error {
	if err := h.coord.Load().Render(); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Selection reports the current filter without changing it.
func (h *Handler) Selection(c echo.Context) error {
	res := h.coord.Load().Selection()
	return c.JSON(http.StatusOK, brushResponse{FilterResult: res, Message: filterMessage(res)})
}

func (h *Handler) Brush(c echo.Context) error {
	req := brushRequest{View: view.OverviewName}
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := h.coord.Load().Brush(req.View, req.X0, req.X1)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brushResponse{FilterResult: res, Message: filterMessage(res)})
}

func (h *Handler) ClearBrush(c echo.Context) error {
	name := c.QueryParam("view")
	if name == "" {
		name = view.OverviewName
	}
	res, err := h.coord.Load().ClearBrush(name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brushResponse{FilterResult: res, Message: filterMessage(res)})
}

func (h *Handler) Zoom(c echo.Context) error {
	req := zoomRequest{View: view.ScatterName, Transform: scale.Identity()}
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := h.coord.Load().Zoom(req.View, req.Transform, req.Active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ZoomWheel(c echo.Context) error {
	req := wheelRequest{View: view.ScatterName}
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := h.coord.Load().ZoomBy(req.View, req.Factor, req.PX, req.PY, req.Active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ZoomPan(c echo.Context) error {
	req := panRequest{View: view.ScatterName}
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := h.coord.Load().Pan(req.View, req.DX, req.DY, req.Active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ResetZoom(c echo.Context) error {
	name := c.QueryParam("view")
	if name == "" {
		name = view.ScatterName
	}
	t, err := h.coord.Load().ResetZoom(name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) HoverEnter(c echo.Context) error {
	var req hoverRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	row, err := h.coord.Load().HoverEnter(c.Param("name"), req.Index)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *Handler) HoverExit(c echo.Context) error {
	if err := h.coord.Load().HoverExit(c.Param("name")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Resize(c echo.Context) error {
	var req resizeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.coord.Load().Resize(req.Views); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// filterMessage describes a filter result, e.g. "1,204 jobs for 2 job
// title(s)".
func filterMessage(res view.FilterResult) string {
	p := message.NewPrinter(language.English)
	if len(res.Keys) == 0 {
		return p.Sprintf("%d jobs", res.Rows)
	}
	return p.Sprintf("%d jobs for %d job title(s)", res.Rows, len(res.Keys))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, view.ErrUnknownView):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, view.ErrNotBrushable),
		errors.Is(err, view.ErrNotZoomable),
		errors.Is(err, view.ErrNotHoverable),
		errors.Is(err, view.ErrIndexOutOfRange),
		errors.Is(err, view.ErrNoMark),
		errors.Is(err, view.ErrInvalidTransform):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}
