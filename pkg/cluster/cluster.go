// Package cluster provides an explicit Solana cluster client for the
// staking lifecycle: a JSON-RPC connection, a websocket connection for
// confirmation waiting, and a fixed commitment level, passed to every
// operation instead of living in process-global state.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	sendandconfirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/glatiuden/Solana-Staking/pkg/stakeprog"
)

// ErrTransactionFailed indicates a confirmed transaction that failed
// on-chain.
var ErrTransactionFailed = errors.New("cluster: transaction failed on-chain")

// Config describes a cluster connection.
type Config struct {
	Endpoint   string             // JSON-RPC endpoint URL
	WSEndpoint string             // Websocket endpoint URL
	Commitment rpc.CommitmentType // Commitment level for all reads and confirmations
}

// DefaultConfig returns a devnet configuration at processed commitment.
func DefaultConfig() Config {
	return Config{
		Endpoint:   rpc.DevNet_RPC,
		WSEndpoint: rpc.DevNet_WS,
		Commitment: rpc.CommitmentProcessed,
	}
}

// Client is a connected cluster handle.
type Client struct {
	rpc        *rpc.Client
	ws         *ws.Client
	commitment rpc.CommitmentType
}

// Connect dials the configured RPC and websocket endpoints.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	wsClient, err := ws.Connect(ctx, cfg.WSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("connect websocket %s: %w", cfg.WSEndpoint, err)
	}
	return &Client{
		rpc:        rpc.New(cfg.Endpoint),
		ws:         wsClient,
		commitment: cfg.Commitment,
	}, nil
}

// Close releases the websocket connection.
func (c *Client) Close() {
	c.ws.Close()
}

// Commitment returns the configured commitment level.
func (c *Client) Commitment() rpc.CommitmentType {
	return c.commitment
}

// Airdrop requests lamports from the cluster faucet for pubkey and
// returns the faucet transaction signature.
func (c *Client) Airdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, pubkey, lamports, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("request airdrop: %w", err)
	}
	return sig, nil
}

// Confirm blocks until the signature reaches the configured commitment
// level, surfacing any on-chain transaction error.
func (c *Client) Confirm(ctx context.Context, sig solana.Signature) error {
	sub, err := c.ws.SignatureSubscribe(sig, c.commitment)
	if err != nil {
		return fmt.Errorf("signature subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	result, err := sub.Recv(ctx)
	if err != nil {
		return fmt.Errorf("await confirmation of %s: %w", sig, err)
	}
	if result.Value.Err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, result.Value.Err)
	}
	return nil
}

// Balance returns the lamport balance of pubkey.
func (c *Client) Balance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, pubkey, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return out.Value, nil
}

// RentExemption returns the minimum lamport balance that makes an
// account of the given byte size rent-exempt.
func (c *Client) RentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get rent exemption: %w", err)
	}
	return lamports, nil
}

// LatestBlockhash returns the most recent blockhash and its last valid
// block height.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
}

// VoteAccounts returns the cluster's current and delinquent vote
// accounts.
func (c *Client) VoteAccounts(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
	out, err := c.rpc.GetVoteAccounts(ctx, &rpc.GetVoteAccountsOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("get vote accounts: %w", err)
	}
	return out, nil
}

// StakeActivation returns the activation state of a stake account as
// one of "inactive", "activating", "active", or "deactivating".
func (c *Client) StakeActivation(ctx context.Context, stakeAccount solana.PublicKey) (string, error) {
	out, err := c.rpc.GetStakeActivation(ctx, stakeAccount, c.commitment, nil)
	if err != nil {
		return "", fmt.Errorf("get stake activation: %w", err)
	}
	return string(out.State), nil
}

// SendAndConfirm submits a signed transaction and blocks until it is
// confirmed, returning the signature.
func (c *Client) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := sendandconfirm.SendAndConfirmTransaction(ctx, c.rpc, c.ws, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send and confirm transaction: %w", err)
	}
	return sig, nil
}

// StakeAccountsByVoter queries the Stake Program's accounts for records
// of exactly stakeprog.AccountSize bytes whose voter pubkey at
// stakeprog.VoterPubkeyOffset equals vote.
func (c *Client) StakeAccountsByVoter(ctx context.Context, vote solana.PublicKey) (rpc.GetProgramAccountsResult, error) {
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, solana.StakeProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Filters: []rpc.RPCFilter{
			{DataSize: stakeprog.AccountSize},
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: stakeprog.VoterPubkeyOffset,
					Bytes:  solana.Base58(vote.Bytes()),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get program accounts: %w", err)
	}
	return out, nil
}
