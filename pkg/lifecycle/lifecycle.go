package lifecycle

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/glatiuden/Solana-Staking/pkg/stakeprog"
)

// Phase identifies how far a State has advanced through the lifecycle.
type Phase int

const (
	// PhaseUninitialized is the zero-value starting phase.
	PhaseUninitialized Phase = iota
	// PhaseCreated means the funded stake account exists on-chain.
	PhaseCreated
	// PhaseDelegated means the stake is bound to a validator.
	PhaseDelegated
	// PhaseDeactivated means the delegation cool-down has begun.
	PhaseDeactivated
	// PhaseWithdrawn means the stake account has been drained.
	PhaseWithdrawn
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseCreated:
		return "Created"
	case PhaseDelegated:
		return "Delegated"
	case PhaseDeactivated:
		return "Deactivated"
	case PhaseWithdrawn:
		return "Withdrawn"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Lamport amounts used by the lifecycle.
const (
	// AirdropLamports is the fixed faucet funding for a fresh wallet.
	AirdropLamports uint64 = solana.LAMPORTS_PER_SOL

	// DefaultContribution is the user stake added on top of the
	// rent-exemption minimum when creating the stake account.
	DefaultContribution uint64 = solana.LAMPORTS_PER_SOL / 2
)

// State is the accumulating lifecycle tuple threaded from one
// transition to the next. Identities are held only in memory for the
// duration of a run.
type State struct {
	Phase         Phase             // Current lifecycle phase
	Wallet        solana.PrivateKey // Fee payer and sole stake/withdraw authority
	StakeAccount  solana.PrivateKey // The stake account keypair, never reused across runs
	Validator     solana.PublicKey  // Chosen validator vote account (set by Delegate)
	StakeLamports uint64            // Lamports the stake account was created with
	LastSignature solana.Signature  // Signature of the most recent confirmed transaction
}

// ChainClient is the cluster surface the orchestrator depends on.
// *cluster.Client satisfies it; tests substitute mocks.
type ChainClient interface {
	Airdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature) error
	Balance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	RentExemption(ctx context.Context, size uint64) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	VoteAccounts(ctx context.Context) (*rpc.GetVoteAccountsResult, error)
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Orchestrator sequences lifecycle transitions against a cluster.
type Orchestrator struct {
	client       ChainClient
	selector     ValidatorSelector
	contribution uint64
}

// NewOrchestrator creates an orchestrator. A nil selector defaults to
// FirstActive; a zero contribution defaults to DefaultContribution.
func NewOrchestrator(client ChainClient, selector ValidatorSelector, contribution uint64) *Orchestrator {
	if selector == nil {
		selector = FirstActive{}
	}
	if contribution == 0 {
		contribution = DefaultContribution
	}
	return &Orchestrator{
		client:       client,
		selector:     selector,
		contribution: contribution,
	}
}

// requirePhase rejects transitions invoked from any phase but want.
func requirePhase(st *State, want Phase) error {
	if st.Phase != want {
		return fmt.Errorf("%w: in phase %s, want %s", ErrInvalidTransition, st.Phase, want)
	}
	return nil
}

// Create allocates the wallet and stake-account identities, funds the
// wallet from the faucet, and creates the stake account funded with the
// rent-exemption minimum plus the configured contribution. The wallet
// is both staker and withdrawer and the lockup is empty.
func (o *Orchestrator) Create(ctx context.Context, st *State) error {
	if err := requirePhase(st, PhaseUninitialized); err != nil {
		return err
	}

	wallet := solana.NewWallet()
	sig, err := o.client.Airdrop(ctx, wallet.PublicKey(), AirdropLamports)
	if err != nil {
		return fmt.Errorf("fund wallet: %w", err)
	}
	if err := o.client.Confirm(ctx, sig); err != nil {
		return fmt.Errorf("confirm airdrop: %w", err)
	}

	stakeAccount := solana.NewWallet()
	rent, err := o.client.RentExemption(ctx, stakeprog.AccountSize)
	if err != nil {
		return err
	}
	lamports := rent + o.contribution

	instructions := stakeprog.BuildCreate(
		wallet.PublicKey(),
		stakeAccount.PublicKey(),
		lamports,
		stakeprog.EmptyLockup(wallet.PublicKey()),
	)
	sig, err = o.submit(ctx, instructions, wallet.PrivateKey, stakeAccount.PrivateKey)
	if err != nil {
		return fmt.Errorf("create stake account: %w", err)
	}

	st.Wallet = wallet.PrivateKey
	st.StakeAccount = stakeAccount.PrivateKey
	st.StakeLamports = lamports
	st.LastSignature = sig
	st.Phase = PhaseCreated
	return nil
}

// Delegate binds the created stake account to the validator chosen by
// the selector from the cluster's current vote accounts.
func (o *Orchestrator) Delegate(ctx context.Context, st *State) error {
	if err := requirePhase(st, PhaseCreated); err != nil {
		return err
	}

	votes, err := o.client.VoteAccounts(ctx)
	if err != nil {
		return err
	}
	vote, err := o.selector.Select(votes.Current)
	if err != nil {
		return err
	}

	instruction := stakeprog.BuildDelegate(
		st.StakeAccount.PublicKey(),
		st.Wallet.PublicKey(),
		vote,
	)
	sig, err := o.submit(ctx, []solana.Instruction{instruction}, st.Wallet)
	if err != nil {
		return fmt.Errorf("delegate stake: %w", err)
	}

	st.Validator = vote
	st.LastSignature = sig
	st.Phase = PhaseDelegated
	return nil
}

// Deactivate begins the cool-down of the delegated stake using the
// wallet as sole authority.
func (o *Orchestrator) Deactivate(ctx context.Context, st *State) error {
	if err := requirePhase(st, PhaseDelegated); err != nil {
		return err
	}

	instruction := stakeprog.BuildDeactivate(
		st.StakeAccount.PublicKey(),
		st.Wallet.PublicKey(),
	)
	sig, err := o.submit(ctx, []solana.Instruction{instruction}, st.Wallet)
	if err != nil {
		return fmt.Errorf("deactivate stake: %w", err)
	}

	st.LastSignature = sig
	st.Phase = PhaseDeactivated
	return nil
}

// Withdraw drains the stake account back to the wallet. The amount is
// the balance observed now, not the amount the account was created
// with, so accrued or residual lamports are included.
func (o *Orchestrator) Withdraw(ctx context.Context, st *State) error {
	if err := requirePhase(st, PhaseDeactivated); err != nil {
		return err
	}

	balance, err := o.client.Balance(ctx, st.StakeAccount.PublicKey())
	if err != nil {
		return err
	}

	instruction := stakeprog.BuildWithdraw(
		st.StakeAccount.PublicKey(),
		st.Wallet.PublicKey(),
		st.Wallet.PublicKey(),
		balance,
	)
	sig, err := o.submit(ctx, []solana.Instruction{instruction}, st.Wallet)
	if err != nil {
		return fmt.Errorf("withdraw stake: %w", err)
	}

	st.LastSignature = sig
	st.Phase = PhaseWithdrawn
	return nil
}

// Advance runs the transitions between st.Phase and target in order,
// stopping at the first failure. A State already at or past target is
// left untouched.
func (o *Orchestrator) Advance(ctx context.Context, st *State, target Phase) error {
	if target > PhaseWithdrawn {
		return fmt.Errorf("%w: unknown target phase %d", ErrInvalidTransition, int(target))
	}
	transitions := []func(context.Context, *State) error{
		o.Create,
		o.Delegate,
		o.Deactivate,
		o.Withdraw,
	}
	for st.Phase < target {
		if err := transitions[st.Phase](ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// submit builds a transaction from the instructions, signs it with the
// given keys (the first is the fee payer), and submits it, blocking
// until confirmation.
func (o *Orchestrator) submit(ctx context.Context, instructions []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	blockhash, _, err := o.client.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey() == key {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	return o.client.SendAndConfirm(ctx, tx)
}
