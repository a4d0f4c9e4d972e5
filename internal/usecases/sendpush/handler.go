package sendpush

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

type SendPushHandler struct {
	useCase SendPushUseCase
}

func NewSendPushHandler(useCase SendPushUseCase) *SendPushHandler {
	return &SendPushHandler{
		useCase: useCase,
	}
}

// RequireMethod rejects non-POST requests with 405 before any other
// middleware on the route runs.
func (h *SendPushHandler) RequireMethod(c *gin.Context) {
	ensureRequestID(c)
	if err := ValidateMethod(c.Request.Method); err != nil {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		c.Abort()
		return
	}
	c.Next()
}

func ensureRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDKey, requestID)
	c.Header(RequestIDHeader, requestID)
	return requestID
}

func (h *SendPushHandler) Handle(c *gin.Context) {
	requestID := ensureRequestID(c)

	ctx, span := tracing.GetTracer().Start(c.Request.Context(), "SendPushHandler.Handle")
	defer span.End()

	if err := ValidateMethod(c.Request.Method); err != nil {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	var input SendPushInputDTO
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &input); err != nil {
			c.String(http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}

	output, err := h.useCase.Execute(ctx, input)
	if err != nil {
		var invalid *domain.InvalidTypePayloadError
		var delivery *domain.DeliveryError
		switch {
		case errors.Is(err, domain.ErrMissingRequiredFields):
			c.String(http.StatusBadRequest, err.Error())
		case errors.As(err, &invalid):
			c.String(http.StatusBadRequest, err.Error())
		case errors.As(err, &delivery):
			logger.L().Error("Error sending push notification",
				zap.String("requestID", requestID),
				zap.String("code", delivery.Code),
				zap.String("traceID", logger.TraceIDFromContext(ctx)),
				zap.Error(err),
			)
			message := delivery.Error()
			if delivery.Err != nil {
				message = delivery.Err.Error()
			}
			c.JSON(http.StatusInternalServerError, ErrorOutputDTO{Error: message, Code: delivery.Code})
		default:
			logger.L().Error("Error sending push notification",
				zap.String("requestID", requestID),
				zap.String("traceID", logger.TraceIDFromContext(ctx)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorOutputDTO{Error: err.Error(), Code: domain.UnknownErrorCode})
		}
		return
	}

	c.JSON(http.StatusOK, output)
}
