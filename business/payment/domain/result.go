package domain

// PaymentResult is the normalized outcome of an action. A success carries
// an optional handle; a failure always carries an error message.
type PaymentResult struct {
	Success bool   `json:"success"`
	Handle  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded builds a success result.
func Succeeded(handle string) PaymentResult {
	return PaymentResult{Success: true, Handle: handle}
}

// Failed builds a failure result, using fallback when msg is empty.
func Failed(msg, fallback string) PaymentResult {
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return PaymentResult{Success: false, Error: msg}
}
