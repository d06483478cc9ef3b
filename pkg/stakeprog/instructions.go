package stakeprog

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Instruction is a built Stake Program instruction ready for inclusion
// in a transaction.
type Instruction struct {
	accounts []*solana.AccountMeta
	data     []byte
}

// ProgramID returns the Stake Program ID.
func (in *Instruction) ProgramID() solana.PublicKey {
	return solana.StakeProgramID
}

// Accounts returns the account metas consumed by the instruction.
func (in *Instruction) Accounts() []*solana.AccountMeta {
	return in.accounts
}

// Data returns the serialized instruction data.
func (in *Instruction) Data() ([]byte, error) {
	return in.data, nil
}

// EmptyLockup returns a lockup that places no restriction on
// withdrawal: zero timestamp, zero epoch, and the given custodian.
func EmptyLockup(custodian solana.PublicKey) Lockup {
	return Lockup{Custodian: custodian}
}

// BuildCreate constructs the instruction pair that creates and
// initializes a stake account: a System Program CreateAccount funding
// the account with lamports and allocating AccountSize bytes, followed
// by a Stake Program Initialize naming payer as both staker and
// withdrawer. Lamports must cover the rent-exemption minimum for
// AccountSize bytes or the transaction is rejected on-chain.
//
// Initialize accounts:
//
//	[0] stake account (writable)
//	[1] rent sysvar
func BuildCreate(payer, stakeAccount solana.PublicKey, lamports uint64, lockup Lockup) []solana.Instruction {
	data := make([]byte, 4+AuthorizedSize+LockupSize)
	binary.LittleEndian.PutUint32(data[0:4], InstructionInitialize)
	copy(data[4:36], payer[:])  // staker
	copy(data[36:68], payer[:]) // withdrawer
	binary.LittleEndian.PutUint64(data[68:76], uint64(lockup.UnixTimestamp))
	binary.LittleEndian.PutUint64(data[76:84], lockup.Epoch)
	copy(data[84:116], lockup.Custodian[:])

	initialize := &Instruction{
		accounts: []*solana.AccountMeta{
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(solana.SysVarRentPubkey),
		},
		data: data,
	}

	return []solana.Instruction{
		system.NewCreateAccountInstruction(
			lamports,
			AccountSize,
			solana.StakeProgramID,
			payer,
			stakeAccount,
		).Build(),
		initialize,
	}
}

// BuildDelegate constructs a DelegateStake instruction binding the
// stake account's funds to the given validator vote account.
//
// Accounts:
//
//	[0] stake account (writable)
//	[1] vote account
//	[2] clock sysvar
//	[3] stake history sysvar
//	[4] stake config account
//	[5] stake authority (signer)
func BuildDelegate(stakeAccount, authority, vote solana.PublicKey) solana.Instruction {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, InstructionDelegateStake)

	return &Instruction{
		accounts: []*solana.AccountMeta{
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(vote),
			solana.Meta(solana.SysVarClockPubkey),
			solana.Meta(solana.SysVarStakeHistoryPubkey),
			solana.Meta(StakeConfigID),
			solana.Meta(authority).SIGNER(),
		},
		data: data,
	}
}

// BuildDeactivate constructs a Deactivate instruction that begins the
// cool-down of a delegated stake account. The balance is untouched;
// funds become withdrawable only after the network-enforced epoch
// boundary.
//
// Accounts:
//
//	[0] stake account (writable)
//	[1] clock sysvar
//	[2] stake authority (signer)
func BuildDeactivate(stakeAccount, authority solana.PublicKey) solana.Instruction {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, InstructionDeactivate)

	return &Instruction{
		accounts: []*solana.AccountMeta{
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(solana.SysVarClockPubkey),
			solana.Meta(authority).SIGNER(),
		},
		data: data,
	}
}

// BuildWithdraw constructs a Withdraw instruction moving lamports from
// the stake account to recipient. Pass the account's full current
// balance to drain it.
//
// Accounts:
//
//	[0] stake account (writable)
//	[1] recipient (writable)
//	[2] clock sysvar
//	[3] stake history sysvar
//	[4] withdraw authority (signer)
func BuildWithdraw(stakeAccount, authority, recipient solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], InstructionWithdraw)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return &Instruction{
		accounts: []*solana.AccountMeta{
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(recipient).WRITE(),
			solana.Meta(solana.SysVarClockPubkey),
			solana.Meta(solana.SysVarStakeHistoryPubkey),
			solana.Meta(authority).SIGNER(),
		},
		data: data,
	}
}
