package server

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/app"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/errors"
)

// Dates in admin request bodies use the same YYYY-MM-DD form clients see
// on the wire.
const requestDateLayout = "2006-01-02"

// mapDomainError translates repository sentinels into HTTP-mapped errors.
func mapDomainError(err error, message string) error {
	switch {
	case stderrors.Is(err, domain.ErrAlertNotFound),
		stderrors.Is(err, domain.ErrTradeNotFound),
		stderrors.Is(err, domain.ErrTradePlanNotFound),
		stderrors.Is(err, domain.ErrVideoNotFound):
		return errors.NotFoundError(err.Error())
	case stderrors.Is(err, domain.ErrTradeAlreadyClosed):
		return errors.ConflictError(err.Error())
	default:
		return errors.InternalError(message, err)
	}
}

func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ValidationError("invalid id").WithContext("id", c.Param("id"))
	}
	return id, nil
}

// --- Alerts ---

type alertRequest struct {
	RoomSlug  string  `json:"room_slug"`
	AlertType string  `json:"alert_type"`
	Ticker    string  `json:"ticker"`
	Title     *string `json:"title"`
	Message   string  `json:"message"`
	Notes     *string `json:"notes"`
	TosString *string `json:"tos_string"`
	IsPinned  bool    `json:"is_pinned"`
}

func (r alertRequest) toDomain() (domain.NewAlert, error) {
	if r.RoomSlug == "" || r.Ticker == "" || r.Message == "" {
		return domain.NewAlert{}, errors.ValidationError("room_slug, ticker and message are required")
	}
	return domain.NewAlert{
		RoomSlug:  r.RoomSlug,
		AlertType: r.AlertType,
		Ticker:    r.Ticker,
		Title:     r.Title,
		Message:   r.Message,
		Notes:     r.Notes,
		TosString: r.TosString,
		IsPinned:  r.IsPinned,
	}, nil
}

func (s *Server) handleCreateAlert(c echo.Context) error {
	var req alertRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	alert, err := req.toDomain()
	if err != nil {
		return err
	}

	created, err := s.app.CreateAlert(c.Request().Context(), alert)
	if err != nil {
		return mapDomainError(err, "failed to create alert")
	}
	return c.JSON(http.StatusCreated, app.ToAlertPayload(created))
}

func (s *Server) handleUpdateAlert(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req alertRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	alert, err := req.toDomain()
	if err != nil {
		return err
	}

	updated, err := s.app.UpdateAlert(c.Request().Context(), id, alert)
	if err != nil {
		return mapDomainError(err, "failed to update alert")
	}
	return c.JSON(http.StatusOK, app.ToAlertPayload(updated))
}

func (s *Server) handleDeleteAlert(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := s.app.DeleteAlert(c.Request().Context(), id); err != nil {
		return mapDomainError(err, "failed to delete alert")
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Trades ---

type openTradeRequest struct {
	RoomSlug   string  `json:"room_slug"`
	Ticker     string  `json:"ticker"`
	Direction  string  `json:"direction"`
	EntryPrice float64 `json:"entry_price"`
	EntryDate  string  `json:"entry_date"`
}

func (s *Server) handleOpenTrade(c echo.Context) error {
	var req openTradeRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.RoomSlug == "" || req.Ticker == "" {
		return errors.ValidationError("room_slug and ticker are required")
	}
	if req.EntryPrice <= 0 {
		return errors.ValidationError("entry_price must be positive")
	}

	trade := domain.NewTrade{
		RoomSlug:   req.RoomSlug,
		Ticker:     req.Ticker,
		Direction:  req.Direction,
		EntryPrice: req.EntryPrice,
	}
	if req.EntryDate != "" {
		d, err := time.Parse(requestDateLayout, req.EntryDate)
		if err != nil {
			return errors.ValidationError("entry_date must be YYYY-MM-DD")
		}
		trade.EntryDate = d
	}

	created, err := s.app.OpenTrade(c.Request().Context(), trade)
	if err != nil {
		return mapDomainError(err, "failed to open trade")
	}
	return c.JSON(http.StatusCreated, app.ToTradePayload(created))
}

type closeTradeRequest struct {
	ExitPrice  float64 `json:"exit_price"`
	PnlPercent float64 `json:"pnl_percent"`
	Result     string  `json:"result"`
	ExitDate   string  `json:"exit_date"`
}

func (s *Server) handleCloseTrade(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req closeTradeRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.Result != domain.TradeResultWin && req.Result != domain.TradeResultLoss {
		return errors.ValidationError("result must be win or loss")
	}

	tc := domain.TradeClose{
		ExitPrice:  req.ExitPrice,
		PnlPercent: req.PnlPercent,
		Result:     req.Result,
	}
	if req.ExitDate != "" {
		d, err := time.Parse(requestDateLayout, req.ExitDate)
		if err != nil {
			return errors.ValidationError("exit_date must be YYYY-MM-DD")
		}
		tc.ExitDate = d
	}

	closed, err := s.app.CloseTrade(c.Request().Context(), id, tc)
	if err != nil {
		return mapDomainError(err, "failed to close trade")
	}
	return c.JSON(http.StatusOK, app.ToTradePayload(closed))
}

type invalidateTradeRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleInvalidateTrade(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req invalidateTradeRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.Reason == "" {
		return errors.ValidationError("reason is required")
	}

	invalidated, err := s.app.InvalidateTrade(c.Request().Context(), id, req.Reason)
	if err != nil {
		return mapDomainError(err, "failed to invalidate trade")
	}
	return c.JSON(http.StatusOK, app.ToTradePayload(invalidated))
}

type updateTradeEntryRequest struct {
	EntryPrice float64 `json:"entry_price"`
}

func (s *Server) handleUpdateTradeEntry(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req updateTradeEntryRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.EntryPrice <= 0 {
		return errors.ValidationError("entry_price must be positive")
	}

	updated, err := s.app.UpdateTradeEntry(c.Request().Context(), id, req.EntryPrice)
	if err != nil {
		return mapDomainError(err, "failed to update trade entry")
	}
	return c.JSON(http.StatusOK, app.ToTradePayload(updated))
}

// --- Trade plan ---

type tradePlanRequest struct {
	RoomSlug      string  `json:"room_slug"`
	Ticker        string  `json:"ticker"`
	Bias          string  `json:"bias"`
	Entry         *string `json:"entry"`
	Target1       *string `json:"target1"`
	Target2       *string `json:"target2"`
	Target3       *string `json:"target3"`
	Runner        *string `json:"runner"`
	Stop          *string `json:"stop"`
	OptionsStrike *string `json:"options_strike"`
	OptionsExp    *string `json:"options_exp"`
	Notes         *string `json:"notes"`
}

func (r tradePlanRequest) toDomain() (domain.NewTradePlanEntry, error) {
	if r.RoomSlug == "" || r.Ticker == "" {
		return domain.NewTradePlanEntry{}, errors.ValidationError("room_slug and ticker are required")
	}
	return domain.NewTradePlanEntry{
		RoomSlug:      r.RoomSlug,
		Ticker:        r.Ticker,
		Bias:          r.Bias,
		Entry:         r.Entry,
		Target1:       r.Target1,
		Target2:       r.Target2,
		Target3:       r.Target3,
		Runner:        r.Runner,
		Stop:          r.Stop,
		OptionsStrike: r.OptionsStrike,
		OptionsExp:    r.OptionsExp,
		Notes:         r.Notes,
	}, nil
}

func (s *Server) handleCreateTradePlanEntry(c echo.Context) error {
	var req tradePlanRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	entry, err := req.toDomain()
	if err != nil {
		return err
	}

	created, err := s.app.CreateTradePlanEntry(c.Request().Context(), entry)
	if err != nil {
		return mapDomainError(err, "failed to create trade plan entry")
	}
	return c.JSON(http.StatusCreated, app.ToTradePlanPayload(created))
}

func (s *Server) handleUpdateTradePlanEntry(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req tradePlanRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	entry, err := req.toDomain()
	if err != nil {
		return err
	}

	updated, err := s.app.UpdateTradePlanEntry(c.Request().Context(), id, entry)
	if err != nil {
		return mapDomainError(err, "failed to update trade plan entry")
	}
	return c.JSON(http.StatusOK, app.ToTradePlanPayload(updated))
}

func (s *Server) handleDeleteTradePlanEntry(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := s.app.DeleteTradePlanEntry(c.Request().Context(), id); err != nil {
		return mapDomainError(err, "failed to delete trade plan entry")
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Videos ---

type publishVideoRequest struct {
	RoomSlug     string  `json:"room_slug"`
	WeekTitle    string  `json:"week_title"`
	VideoTitle   string  `json:"video_title"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Duration     *string `json:"duration"`
}

func (s *Server) handlePublishVideo(c echo.Context) error {
	var req publishVideoRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.RoomSlug == "" || req.VideoURL == "" {
		return errors.ValidationError("room_slug and video_url are required")
	}

	created, err := s.app.PublishVideo(c.Request().Context(), domain.NewVideo{
		RoomSlug:     req.RoomSlug,
		WeekTitle:    req.WeekTitle,
		VideoTitle:   req.VideoTitle,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
	})
	if err != nil {
		return mapDomainError(err, "failed to publish video")
	}
	return c.JSON(http.StatusCreated, app.ToVideoPayload(created))
}
