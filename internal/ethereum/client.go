package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
)

// WalletClient is a watch-only view of one Ethereum address. It holds no
// keys and can never move funds; it exists so cold-storage Holding entries
// in the ledger can be reconciled against the chain.
type WalletClient struct {
	rpc    *ethclient.Client
	wallet common.Address
}

func NewWalletClient(rpcURL, address string) (*WalletClient, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address %q", address)
	}
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	return &WalletClient{rpc: rpc, wallet: common.HexToAddress(address)}, nil
}

func (c *WalletClient) Address() common.Address { return c.wallet }
func (c *WalletClient) Close()                  { c.rpc.Close() }

// ETHBalance returns the address's current balance in whole ETH.
func (c *WalletClient) ETHBalance(ctx context.Context) (float64, error) {
	wei, err := c.rpc.BalanceAt(ctx, c.wallet, nil)
	if err != nil {
		return 0, fmt.Errorf("balance at %s: %w", c.wallet.Hex(), err)
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	out, _ := eth.Float64()
	return out, nil
}

// BlockNumber returns the chain head, used as a liveness probe.
func (c *WalletClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.rpc.BlockNumber(ctx)
}
