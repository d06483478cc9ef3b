package lifecycle

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ValidatorSelector chooses one validator vote account from the
// cluster's active set. Implementations must be deterministic for an
// identical snapshot so repeated runs pick the same validator.
type ValidatorSelector interface {
	Select(current []rpc.VoteAccountsResult) (solana.PublicKey, error)
}

// FirstActive selects the first entry of the active validator set. No
// ranking or stake-weighting is applied.
type FirstActive struct{}

// Select returns the vote pubkey of current[0], or ErrNoValidators if
// the set is empty.
func (FirstActive) Select(current []rpc.VoteAccountsResult) (solana.PublicKey, error) {
	if len(current) == 0 {
		return solana.PublicKey{}, ErrNoValidators
	}
	return current[0].VotePubkey, nil
}
