package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "payment"
	meterName  = "payment"
)

// Observer receives every state transition of every action.
type Observer func(domain.Transition)

// sequencerMetrics holds OTEL metric instruments.
type sequencerMetrics struct {
	actions   metric.Int64Counter
	approvals metric.Int64Counter
	skipped   metric.Int64Counter
}

// Sequencer runs funding actions as check-allowance, approve-if-needed,
// execute. Every outcome is normalized into a PaymentResult. Invocations
// share no mutable state; there are no retries and no rollback.
type Sequencer struct {
	network   Network
	registry  *asset.Registry
	logger    logger.LoggerInterface
	observers []Observer

	tracer  trace.Tracer
	metrics *sequencerMetrics
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithObserver registers a transition observer.
func WithObserver(o Observer) SequencerOption {
	return func(s *Sequencer) {
		s.observers = append(s.observers, o)
	}
}

// NewSequencer creates a Sequencer.
func NewSequencer(network Network, registry *asset.Registry, log logger.LoggerInterface, opts ...SequencerOption) (*Sequencer, error) {
	s := &Sequencer{
		network:  network,
		registry: registry,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return s, nil
}

func (s *Sequencer) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &sequencerMetrics{}

	s.metrics.actions, err = meter.Int64Counter(
		"payment_actions_total",
		metric.WithDescription("Funding actions by kind and outcome"),
	)
	if err != nil {
		return err
	}

	s.metrics.approvals, err = meter.Int64Counter(
		"payment_approvals_total",
		metric.WithDescription("Token approvals submitted"),
	)
	if err != nil {
		return err
	}

	s.metrics.skipped, err = meter.Int64Counter(
		"payment_approvals_skipped_total",
		metric.WithDescription("Approvals skipped because the allowance already covered the amount"),
	)
	if err != nil {
		return err
	}

	return nil
}

// run is one state machine instance.
type run struct {
	s     *Sequencer
	kind  domain.ActionKind
	state domain.State
}

func (r *run) to(ctx context.Context, next domain.State, token string, err error) {
	t := domain.Transition{Action: r.kind, Token: token, From: r.state, To: next, Err: err}
	r.state = next

	r.s.logger.Debug(ctx, "payment state transition",
		"action", r.kind, "from", t.From, "to", t.To, "token", token)

	for _, o := range r.s.observers {
		o(t)
	}
}

// ExecuteAction runs kind for req and never returns an error: failures are
// reported in the result.
func (s *Sequencer) ExecuteAction(ctx context.Context, kind domain.ActionKind, req domain.PaymentRequest) (result domain.PaymentResult) {
	ctx, span := s.tracer.Start(ctx, "payment.execute",
		trace.WithAttributes(
			attribute.String("action", string(kind)),
			attribute.Int64("chain_id", int64(req.ChainID)),
		),
	)
	defer span.End()

	r := &run{s: s, kind: kind, state: domain.StateIdle}

	defer func() {
		if rec := recover(); rec != nil {
			result = s.fail(ctx, span, r, apperror.New(apperror.CodeInternalError,
				apperror.WithCause(fmt.Errorf("%w: %v", errCollaboratorPanic, rec))))
		}
	}()

	handle, err := s.dispatch(ctx, r, kind, req)
	if err != nil {
		return s.fail(ctx, span, r, err)
	}

	r.to(ctx, domain.StateConfirmed, "", nil)

	span.SetAttributes(attribute.String("tx_hash", handle))
	span.SetStatus(codes.Ok, "confirmed")
	s.metrics.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(kind)),
		attribute.String("outcome", "confirmed"),
	))
	s.logger.Info(ctx, "payment action confirmed", "action", kind, "tx", handle)

	return domain.Succeeded(handle)
}

// Errors whose text is not shown to the user; the action's fallback
// message is reported instead.
var (
	errNoTransaction     = errors.New("no transaction returned")
	errCollaboratorPanic = errors.New("collaborator panicked")
)

func (s *Sequencer) fail(ctx context.Context, span trace.Span, r *run, err error) domain.PaymentResult {
	r.to(ctx, domain.StateFailed, "", err)

	span.RecordError(err)
	span.SetStatus(codes.Error, "action failed")
	s.metrics.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(r.kind)),
		attribute.String("outcome", "failed"),
	))
	s.logger.Warn(ctx, "payment action failed",
		"action", r.kind, "code", apperror.GetCode(err), "error", err)

	msg := apperror.Message(err)
	if errors.Is(err, errNoTransaction) || errors.Is(err, errCollaboratorPanic) {
		msg = ""
	}
	return domain.Failed(msg, r.kind.FallbackMessage())
}

func (s *Sequencer) dispatch(ctx context.Context, r *run, kind domain.ActionKind, req domain.PaymentRequest) (string, error) {
	if req.Payer == (common.Address{}) {
		return "", apperror.New(apperror.CodeWalletNotConnected)
	}

	switch kind {
	case domain.ActionPaySubscription:
		return s.paySubscription(ctx, r, req)
	case domain.ActionAddLiquidity:
		return s.addLiquidity(ctx, r, req)
	case domain.ActionStake:
		return s.stake(ctx, r, req)
	case domain.ActionClaimRewards:
		return s.claimRewards(ctx, r, req)
	default:
		return "", apperror.New(apperror.CodeUnknownAction,
			apperror.WithContext(string(kind)))
	}
}

func (s *Sequencer) paySubscription(ctx context.Context, r *run, req domain.PaymentRequest) (string, error) {
	pkg, ok := domain.PackageFor(req.PackageID)
	if !ok || !pkg.ID.IsPaid() {
		return "", apperror.New(apperror.CodeUnknownPackage, apperror.WithContext(string(req.PackageID)))
	}

	token, err := s.resolveToken(req.ChainID, req.Token)
	if err != nil {
		return "", err
	}

	amount := req.Amount
	if amount == "" {
		amount = pkg.PriceIn(token.Symbol).String()
	}

	gw, err := s.network.Gateway(ctx, req.ChainID)
	if err != nil {
		return "", err
	}

	required, err := s.ensureAllowance(ctx, r, req, token, amount, gw.Address())
	if err != nil {
		return "", err
	}

	r.to(ctx, domain.StateExecuting, "", nil)
	tx, err := gw.PaySubscription(ctx, token.Address, required, string(pkg.ID))
	return awaitTx(ctx, tx, err)
}

func (s *Sequencer) addLiquidity(ctx context.Context, r *run, req domain.PaymentRequest) (string, error) {
	tokenA, err := s.resolveToken(req.ChainID, req.Token)
	if err != nil {
		return "", err
	}
	tokenB, err := s.resolveToken(req.ChainID, req.TokenB)
	if err != nil {
		return "", err
	}

	gw, err := s.network.Gateway(ctx, req.ChainID)
	if err != nil {
		return "", err
	}

	// Token A then token B. An approval granted for A stays in place if B
	// fails.
	amountA, err := s.ensureAllowance(ctx, r, req, tokenA, req.Amount, gw.Address())
	if err != nil {
		return "", err
	}
	amountB, err := s.ensureAllowance(ctx, r, req, tokenB, req.AmountB, gw.Address())
	if err != nil {
		return "", err
	}

	r.to(ctx, domain.StateExecuting, "", nil)
	tx, err := gw.AddLiquidity(ctx, tokenA.Address, tokenB.Address, amountA, amountB)
	return awaitTx(ctx, tx, err)
}

func (s *Sequencer) stake(ctx context.Context, r *run, req domain.PaymentRequest) (string, error) {
	amount, err := asset.ToBaseUnits(req.Amount, asset.THRONOSDecimals)
	if err != nil {
		return "", apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}

	gw, err := s.network.Gateway(ctx, req.ChainID)
	if err != nil {
		return "", err
	}

	r.to(ctx, domain.StateExecuting, "", nil)
	tx, err := gw.Stake(ctx, amount)
	return awaitTx(ctx, tx, err)
}

func (s *Sequencer) claimRewards(ctx context.Context, r *run, req domain.PaymentRequest) (string, error) {
	gw, err := s.network.Gateway(ctx, req.ChainID)
	if err != nil {
		return "", err
	}

	r.to(ctx, domain.StateExecuting, "", nil)
	tx, err := gw.ClaimRewards(ctx)
	return awaitTx(ctx, tx, err)
}

// ensureAllowance converts amount with the ledger's decimals, checks the
// payer's balance and allowance, and approves only when the allowance
// falls short. It returns the amount in base units.
func (s *Sequencer) ensureAllowance(ctx context.Context, r *run, req domain.PaymentRequest, token asset.Token, amount string, spender common.Address) (*big.Int, error) {
	r.to(ctx, domain.StateCheckingAllowance, token.Symbol, nil)

	ledger, err := s.network.Ledger(ctx, req.ChainID, token)
	if err != nil {
		return nil, err
	}

	decimals, err := ledger.Decimals(ctx)
	if err != nil {
		return nil, err
	}

	required, err := asset.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(token.Symbol), apperror.WithCause(err))
	}

	balance, err := ledger.BalanceOf(ctx, req.Payer)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(required) < 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithMessage(fmt.Sprintf("insufficient %s balance", token.Symbol)))
	}

	allowance, err := ledger.Allowance(ctx, req.Payer, spender)
	if err != nil {
		return nil, err
	}

	if allowance.Cmp(required) >= 0 {
		s.metrics.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("token", token.Symbol)))
		return required, nil
	}

	r.to(ctx, domain.StateApproving, token.Symbol, nil)
	s.metrics.approvals.Add(ctx, 1, metric.WithAttributes(attribute.String("token", token.Symbol)))

	tx, err := ledger.Approve(ctx, spender, required)
	if _, err := awaitTx(ctx, tx, err); err != nil {
		return nil, err
	}

	return required, nil
}

func (s *Sequencer) resolveToken(chainID uint64, symbol string) (asset.Token, error) {
	if strings.TrimSpace(symbol) == "" {
		return asset.Token{}, apperror.New(apperror.CodeRequiredField, apperror.WithContext("token"))
	}
	token, ok := s.registry.Token(chainID, symbol)
	if !ok {
		return asset.Token{}, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext(fmt.Sprintf("%s on chain %d", symbol, chainID)))
	}
	return token, nil
}

// awaitTx waits for a submitted transaction, passing submission errors
// through. A collaborator that returns no transaction and no error fails
// with the action's fallback message.
func awaitTx(ctx context.Context, tx PendingTx, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if tx == nil {
		return "", apperror.New(apperror.CodeExecutionFailed, apperror.WithCause(errNoTransaction))
	}
	if err := tx.Wait(ctx); err != nil {
		return "", err
	}
	return tx.Hash(), nil
}
