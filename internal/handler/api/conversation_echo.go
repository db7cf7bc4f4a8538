package api

import (
	"errors"
	"net/http"
	"time"

	models "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/service/metrics"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/service/ratelimit"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/usecase"
	xhttp "github.com/haniae/Team2-CBA-Project-sub004/pkg/http"
	xlogger "github.com/haniae/Team2-CBA-Project-sub004/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ConversationEchoHandler exposes the forecast conversation over HTTP.
// One POST per user turn; the engine serializes turns per conversation.
type ConversationEchoHandler struct {
	logger *xlogger.Logger
	engine *usecase.ForecastConversationEngine
	convs  *usecase.ConversationManager
	rl     *ratelimit.Limiter
}

func NewConversationEchoHandler(logger *xlogger.Logger, engine *usecase.ForecastConversationEngine, convs *usecase.ConversationManager) *ConversationEchoHandler {
	metrics.Register()
	return &ConversationEchoHandler{
		logger: logger,
		engine: engine,
		convs:  convs,
		rl:     ratelimit.New(),
	}
}

func (h *ConversationEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/conversations/:id/turns", h.Turn)
	g.GET("/conversations/:id/forecasts", h.Forecasts)
}

// Turn handles one conversational turn against the conversation in the path.
func (h *ConversationEchoHandler) Turn(c echo.Context) error {
	start := time.Now()
	endpoint := "turn"
	defer func() { metrics.TurnLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	convID := c.Param("id")
	if convID == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("conversation id required"))
	}

	req := &models.TurnRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(convID+":turn", 10, 2) {
		h.logger.Warn("conversation.turn rate_limited", xlogger.String("conversation", convID))
		return xhttp.DataResponse(c, http.StatusTooManyRequests,
			xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many turns, slow down", http.StatusTooManyRequests))
	}

	st := h.convs.GetOrCreate(convID)
	out, err := h.engine.HandleTurn(c.Request().Context(), st, req.Text)
	if err != nil {
		metrics.TurnErrors.WithLabelValues(endpoint).Inc()
		return h.turnError(c, convID, err)
	}

	return xhttp.SuccessResponse(c, out)
}

func (h *ConversationEchoHandler) turnError(c echo.Context, convID string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrBadRequest):
		h.logger.Warn("conversation.turn unparseable", xlogger.String("conversation", convID))
		return xhttp.BadRequestResponse(c,
			xhttp.BadRequestError("could not understand the request; name a ticker and a metric").WithError(err))
	case errors.Is(err, usecase.ErrNoData):
		h.logger.Warn("conversation.turn no_data", xlogger.String("conversation", convID))
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_NO_DATA", "", "no historical data for the requested series", http.StatusUnprocessableEntity).WithError(err))
	case errors.Is(err, usecase.ErrModelFailure):
		h.logger.Error("conversation.turn model_failure",
			xlogger.String("conversation", convID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_MODEL_FAILURE", "", "forecast model failed; the previous forecast is still active", http.StatusBadGateway).WithError(err))
	default:
		h.logger.Error("conversation.turn error",
			xlogger.String("conversation", convID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

// Forecasts lists saved forecast names for a conversation, in-memory saves
// merged with the durable mirror.
func (h *ConversationEchoHandler) Forecasts(c echo.Context) error {
	start := time.Now()
	endpoint := "forecasts"
	defer func() { metrics.TurnLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	convID := c.Param("id")
	if convID == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("conversation id required"))
	}

	req := &models.ForecastListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	names, err := h.engine.SavedForecastNames(c.Request().Context(), h.convs, convID, req.Durable)
	if err != nil {
		metrics.TurnErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("conversation.forecasts error",
			xlogger.String("conversation", convID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.ListResponse(c, names, int64(len(names)))
}
