package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Market data codes
const (
	CodeMarketDataUnavailable Code = "MARKET_DATA_UNAVAILABLE"
	CodeMalformedResponse     Code = "MALFORMED_RESPONSE"
	CodeStreamConnectionError Code = "STREAM_CONNECTION_ERROR"
	CodeVenueRequestFailed    Code = "VENUE_REQUEST_FAILED"
	CodeVenueUnsupported      Code = "VENUE_UNSUPPORTED"
	CodeUnknownSymbol         Code = "UNKNOWN_SYMBOL"

	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"
)

// Payment and gateway codes
const (
	CodeWalletNotConnected  Code = "WALLET_NOT_CONNECTED"
	CodeUnknownAction       Code = "UNKNOWN_ACTION"
	CodeUnsupportedChain    Code = "UNSUPPORTED_CHAIN"
	CodeUnsupportedToken    Code = "UNSUPPORTED_TOKEN"
	CodeUnknownPackage      Code = "UNKNOWN_PACKAGE"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeAllowanceFailed     Code = "ALLOWANCE_FAILED"
	CodeApprovalFailed      Code = "APPROVAL_FAILED"
	CodeExecutionFailed     Code = "EXECUTION_FAILED"
	CodeTransactionReverted Code = "TRANSACTION_REVERTED"
	CodeContractCallFailed  Code = "CONTRACT_CALL_FAILED"
	CodeGatewayAPIError     Code = "GATEWAY_API_ERROR"
	CodeNoRewardsToClaim    Code = "NO_REWARDS_TO_CLAIM"
)

// Store codes
const (
	CodeStorePersistFailed Code = "STORE_PERSIST_FAILED"
	CodeStoreLoadFailed    Code = "STORE_LOAD_FAILED"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
