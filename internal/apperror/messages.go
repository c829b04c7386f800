package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "Unknown error",

	CodeMarketDataUnavailable: "Market data unavailable",
	CodeMalformedResponse:     "Malformed response payload",
	CodeStreamConnectionError: "Market stream connection error",
	CodeVenueRequestFailed:    "Venue request failed",
	CodeVenueUnsupported:      "Venue not supported",
	CodeUnknownSymbol:         "Unknown trading symbol",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	CodeWalletNotConnected:  "Wallet not connected",
	CodeUnknownAction:       "Unknown error",
	CodeUnsupportedChain:    "Chain not supported",
	CodeUnsupportedToken:    "Token not supported on this chain",
	CodeUnknownPackage:      "Unknown subscription package",
	CodeInvalidAmount:       "Invalid amount",
	CodeAllowanceFailed:     "Allowance query failed",
	CodeApprovalFailed:      "Token approval failed",
	CodeExecutionFailed:     "Transaction execution failed",
	CodeTransactionReverted: "Transaction reverted",
	CodeContractCallFailed:  "Smart contract call failed",
	CodeGatewayAPIError:     "Gateway API error",
	CodeNoRewardsToClaim:    "No rewards to claim",

	CodeStorePersistFailed: "Failed to persist application state",
	CodeStoreLoadFailed:    "Failed to load application state",

	CodeCircuitOpen: "Circuit breaker is open",
}
