package ethereum

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/trader-sentinel/business/payment/app"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
)

// contract binds an ABI to an address for reads and wallet writes.
type contract struct {
	address   common.Address
	abi       abi.ABI
	from      common.Address
	backend   Backend
	submitter Submitter
	cb        *circuitbreaker.CircuitBreaker[[]byte]
	wait      WaitConfig
}

func newContract(address common.Address, abiJSON string, from common.Address, backend Backend, submitter Submitter, cb *circuitbreaker.CircuitBreaker[[]byte], wait WaitConfig) (*contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	return &contract{
		address:   address,
		abi:       parsed,
		from:      from,
		backend:   backend,
		submitter: submitter,
		cb:        cb,
		wait:      wait,
	}, nil
}

// call runs a read-only method through the circuit breaker.
func (c *contract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	callData, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	result, err := c.cb.Execute(func() ([]byte, error) {
		return c.backend.CallContract(ctx, ethereum.CallMsg{
			From: c.from,
			To:   &c.address,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, c.address.Hex())))
	}

	outputs, err := c.abi.Unpack(method, result)
	if err != nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithCause(err),
			apperror.WithContext(method))
	}

	return outputs, nil
}

// transact submits a state-changing method from the connected wallet.
func (c *contract) transact(ctx context.Context, method string, args ...any) (app.PendingTx, error) {
	callData, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	hash, err := c.submitter.SendTransaction(ctx, c.from, c.address, callData)
	if err != nil {
		return nil, err
	}

	return newPendingTx(hash, c.backend, c.wait), nil
}
