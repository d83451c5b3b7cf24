package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Scanner lifecycle
	CodeSetupFailed:       "Scanner setup failed",
	CodeQuoteLookupFailed: "Quote lookup failed",

	// Market connectors
	CodeNoLiquidity:         "No bid or ask order book for pair",
	CodeMarketUnavailable:   "Market pair list unavailable",
	CodeMarketNotFound:      "Market is not configured",
	CodeExchangeAPIError:    "Exchange API error",
	CodeExchangeRateLimited: "Exchange rate limit exceeded",
	CodeInvalidTicker:       "Invalid ticker data",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Notification sinks
	CodeNotificationFailed: "Failed to deliver notification",
	CodeJournalWriteFailed: "Failed to write notification journal",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
