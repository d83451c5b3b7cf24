package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Scout-specific error codes
const (
	// Scanner lifecycle
	CodeSetupFailed       Code = "SETUP_FAILED"
	CodeQuoteLookupFailed Code = "QUOTE_LOOKUP_FAILED"

	// Market connectors
	CodeNoLiquidity         Code = "NO_LIQUIDITY"
	CodeMarketUnavailable   Code = "MARKET_UNAVAILABLE"
	CodeMarketNotFound      Code = "MARKET_NOT_FOUND"
	CodeExchangeAPIError    Code = "EXCHANGE_API_ERROR"
	CodeExchangeRateLimited Code = "EXCHANGE_RATE_LIMITED"
	CodeInvalidTicker       Code = "INVALID_TICKER"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Notification sinks
	CodeNotificationFailed Code = "NOTIFICATION_FAILED"
	CodeJournalWriteFailed Code = "JOURNAL_WRITE_FAILED"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
