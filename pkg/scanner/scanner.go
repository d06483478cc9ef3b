// Package scanner finds the stake accounts delegating to a given
// validator by filtering the Stake Program's account space on the
// stake account layout's size and voter pubkey offset.
package scanner

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/glatiuden/Solana-Staking/pkg/stakeprog"
)

// ProgramAccountsClient is the query surface the scanner depends on.
// *cluster.Client satisfies it.
type ProgramAccountsClient interface {
	StakeAccountsByVoter(ctx context.Context, vote solana.PublicKey) (rpc.GetProgramAccountsResult, error)
}

// Record is one decoded delegator stake account.
type Record struct {
	Address  solana.PublicKey     // The stake account address
	Lamports uint64               // Current account balance
	State    stakeprog.StakeState // Decoded stake state
}

// Result reports a delegator scan.
type Result struct {
	Count  int     // Number of stake accounts delegating to the validator
	Sample *Record // First match, decoded; nil when Count is zero
}

// Scan queries all stake accounts of exactly stakeprog.AccountSize
// bytes whose voter pubkey at stakeprog.VoterPubkeyOffset equals vote,
// returning the match count and the first match fully decoded. Zero
// matches is not an error.
func Scan(ctx context.Context, client ProgramAccountsClient, vote solana.PublicKey) (*Result, error) {
	accounts, err := client.StakeAccountsByVoter(ctx, vote)
	if err != nil {
		return nil, fmt.Errorf("scan delegators of %s: %w", vote, err)
	}

	result := &Result{Count: len(accounts)}
	if len(accounts) == 0 {
		return result, nil
	}

	first := accounts[0]
	state, err := stakeprog.ParseAccount(first.Account.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("decode stake account %s: %w", first.Pubkey, err)
	}
	result.Sample = &Record{
		Address:  first.Pubkey,
		Lamports: first.Account.Lamports,
		State:    *state,
	}
	return result, nil
}
