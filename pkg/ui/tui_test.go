package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	paymentDomain "github.com/fd1az/trader-sentinel/business/payment/domain"
)

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_StartupCompletesWhenAllStepsReport(t *testing.T) {
	m := New()
	m.phase = PhaseStartup

	m = update(t, m,
		StartupMsg{Step: "config", Status: "done"},
		StartupMsg{Step: "store", Status: "done"},
		StartupMsg{Step: "wallet", Status: "connected"},
	)
	assert.False(t, m.startupComplete)
	assert.Equal(t, PhaseStartup, m.phase)

	m = update(t, m, StartupMsg{Step: "market", Status: "connected", Message: "market API up"})
	assert.True(t, m.startupComplete)
	assert.Equal(t, PhaseDashboard, m.phase)
	require.Len(t, m.activity, 1)
	assert.Contains(t, m.activity[0], "market API up")
}

func TestModel_TerminalTransitionsCountAsActions(t *testing.T) {
	m := update(t, New(),
		TransitionMsg{Transition: paymentDomain.Transition{Action: paymentDomain.ActionStake, From: paymentDomain.StateIdle, To: paymentDomain.StateCheckingAllowance, Token: "THRONOS"}},
		TransitionMsg{Transition: paymentDomain.Transition{Action: paymentDomain.ActionStake, From: paymentDomain.StateExecuting, To: paymentDomain.StateConfirmed}},
		TransitionMsg{Transition: paymentDomain.Transition{Action: paymentDomain.ActionStake, From: paymentDomain.StateApproving, To: paymentDomain.StateFailed, Err: errors.New("user rejected")}},
	)

	stats := m.stats.Stats()
	assert.Equal(t, int64(2), stats.Actions)
	assert.Equal(t, int64(1), stats.Errors)
	require.Len(t, m.errors, 1)
	assert.Contains(t, m.errors[0].Message, "user rejected")
	assert.Len(t, m.activity, 3)
}

func TestModel_PauseFreezesSignals(t *testing.T) {
	sig := marketDomain.Signal{
		ID:        "arb-1",
		Symbol:    "BTC/USDT",
		Message:   "Buy on A at $100, sell on B at $101",
		Profit:    decimal.NewNullDecimal(decimal.RequireFromString("1")),
		Timestamp: time.Now(),
	}

	m := New()
	m.phase = PhaseDashboard
	m = update(t, m, SignalMsg{Signal: sig})
	assert.Equal(t, 1, m.signals.Len())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")}, SignalMsg{Signal: sig})
	assert.True(t, m.paused)
	assert.Equal(t, 1, m.signals.Len())
	assert.Equal(t, int64(2), m.stats.Stats().Signals)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Equal(t, 0, m.signals.Len())
}

func TestModel_ErrorsKeepLastThree(t *testing.T) {
	m := New()
	for i := range 5 {
		m = update(t, m, ErrorMsg{Error: errors.New(string(rune('a' + i)))})
	}
	require.Len(t, m.errors, 3)
	assert.Equal(t, "c", m.errors[0].Message)
	assert.Equal(t, int64(5), m.stats.Stats().Errors)
}
