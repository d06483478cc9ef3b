package stakeprog

import (
	"github.com/gagliardetto/solana-go"
)

// Stake account layout v2 constants. A stake account is allocated with
// exactly AccountSize bytes; the delegated vote account pubkey sits at
// VoterPubkeyOffset within that buffer:
//
//	[0:4]     state discriminant (u32)
//	[4:12]    rent-exempt reserve (u64)
//	[12:76]   authorized staker + withdrawer (2 x pubkey)
//	[76:124]  lockup (i64 timestamp, u64 epoch, custodian pubkey)
//	[124:156] delegated voter pubkey
//	[156:196] stake lamports, activation/deactivation epochs, warmup rate
//	[196:197] stake flags
//	[197:200] reserved padding
const (
	// AccountSize is the allocated size of a stake account.
	AccountSize uint64 = 200

	// VoterPubkeyOffset is the byte offset of the delegated vote account
	// pubkey within the account data.
	VoterPubkeyOffset uint64 = 124
)

// Serialized sizes of the stake state components.
const (
	AuthorizedSize = 2 * solana.PublicKeyLength             // 64
	LockupSize     = 8 + 8 + solana.PublicKeyLength         // 48
	MetaSize       = 8 + AuthorizedSize + LockupSize        // 120
	DelegationSize = solana.PublicKeyLength + 8 + 8 + 8 + 8 // 64
	StakeSize      = DelegationSize + 8                     // 72
)

// StakeConfigID is the stake config account consulted by DelegateStake.
var StakeConfigID = solana.MustPublicKeyFromBase58("StakeConfig11111111111111111111111111111111")

// Stake Program instruction discriminants (first 4 bytes of instruction
// data, little-endian).
const (
	InstructionInitialize    uint32 = 0
	InstructionDelegateStake uint32 = 2
	InstructionWithdraw      uint32 = 4
	InstructionDeactivate    uint32 = 5
)

// DeactivationEpochMax marks a delegation that has not been deactivated.
const DeactivationEpochMax = ^uint64(0)
