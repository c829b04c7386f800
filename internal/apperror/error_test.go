package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_DefaultMessageAndStatus(t *testing.T) {
	tests := []struct {
		code       Code
		wantMsg    string
		wantStatus int
	}{
		{CodeWalletNotConnected, "Wallet not connected", http.StatusUnauthorized},
		{CodeInvalidAmount, "Invalid amount", http.StatusBadRequest},
		{CodeUnsupportedToken, "Token not supported on this chain", http.StatusBadRequest},
		{CodeMarketDataUnavailable, "Market data unavailable", http.StatusServiceUnavailable},
		{CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests},
		{CodeExecutionFailed, "Transaction execution failed", http.StatusInternalServerError},
		{CodeUnknownError, "Unknown error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", err.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestMessage_PrefersInnermostCause(t *testing.T) {
	root := errors.New("insufficient balance")
	err := New(CodeExecutionFailed, WithCause(New(CodeContractCallFailed, WithCause(root))))

	if got := Message(err); got != "insufficient balance" {
		t.Errorf("Message = %q", got)
	}

	if got := Message(New(CodeApprovalFailed)); got != "Token approval failed" {
		t.Errorf("Message = %q", got)
	}

	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("Message = %q", got)
	}

	if got := Message(nil); got != "" {
		t.Errorf("Message(nil) = %q", got)
	}
}

func TestIsCode_WalksChain(t *testing.T) {
	inner := New(CodeAllowanceFailed)
	outer := fmt.Errorf("sequence: %w", New(CodeExecutionFailed, WithCause(inner)))

	if !IsCode(outer, CodeExecutionFailed) {
		t.Error("expected outer code")
	}
	if !IsCode(outer, CodeAllowanceFailed) {
		t.Error("expected inner code")
	}
	if IsCode(outer, CodeApprovalFailed) {
		t.Error("unexpected code")
	}
	if GetCode(outer) != CodeExecutionFailed {
		t.Errorf("GetCode = %s", GetCode(outer))
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	orig := New(CodeGatewayAPIError)
	wrapped := Wrap(orig, CodeInternalError, "fetch rewards")

	if wrapped != orig {
		t.Error("expected same instance")
	}
	if wrapped.Context != "fetch rewards" {
		t.Errorf("context = %q", wrapped.Context)
	}
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Error("expected nil")
	}
}

func TestWrap_PlainError(t *testing.T) {
	root := errors.New("dial tcp: connection refused")
	wrapped := Wrap(root, CodeServiceUnavailable, "rewards")

	if wrapped.Code != CodeServiceUnavailable || wrapped.Context != "rewards" {
		t.Errorf("wrapped = %+v", wrapped)
	}
	if !errors.Is(wrapped, root) {
		t.Error("expected cause in chain")
	}
	if HTTPStatus(wrapped) != http.StatusServiceUnavailable {
		t.Errorf("status = %d", HTTPStatus(wrapped))
	}
	if HTTPStatus(root) != http.StatusInternalServerError {
		t.Errorf("plain status = %d", HTTPStatus(root))
	}
}

func TestLogValue(t *testing.T) {
	err := New(CodeApprovalFailed, WithContext("USDT"), WithCause(errors.New("user rejected")))

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"code":    string(CodeApprovalFailed),
		"message": "Token approval failed",
		"context": "USDT",
		"cause":   "user rejected",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
