package ethereum

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/trader-sentinel/internal/apperror"
)

// Backend is the part of the node client the adapters use.
// *ethclient.Client satisfies it.
type Backend interface {
	ethereum.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Submitter sends a transaction from the connected wallet. Signing
// happens behind it.
type Submitter interface {
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error)
}

// RPCSubmitter submits through eth_sendTransaction, leaving signing to the
// node or wallet behind the endpoint.
type RPCSubmitter struct {
	rpc *rpc.Client
}

// NewRPCSubmitter creates an RPCSubmitter.
func NewRPCSubmitter(c *rpc.Client) *RPCSubmitter {
	return &RPCSubmitter{rpc: c}
}

type sendTxArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// SendTransaction implements Submitter.
func (s *RPCSubmitter) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	var hash common.Hash
	if err := s.rpc.CallContext(ctx, &hash, "eth_sendTransaction", sendTxArgs{From: from, To: to, Data: data}); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// WaitConfig controls receipt polling.
type WaitConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

const defaultPollInterval = 2 * time.Second

// pendingTx polls for a receipt until the transaction is mined.
type pendingTx struct {
	hash    common.Hash
	backend Backend
	cfg     WaitConfig
}

func newPendingTx(hash common.Hash, backend Backend, cfg WaitConfig) *pendingTx {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &pendingTx{hash: hash, backend: backend, cfg: cfg}
}

func (t *pendingTx) Hash() string {
	return t.hash.Hex()
}

func (t *pendingTx) Wait(ctx context.Context) error {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.backend.TransactionReceipt(ctx, t.hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return apperror.New(apperror.CodeTransactionReverted, apperror.WithContext(t.hash.Hex()))
			}
			return nil
		case !errors.Is(err, ethereum.NotFound):
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
