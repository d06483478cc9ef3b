package stakeprog

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StateType is the stake account state discriminant.
type StateType uint32

const (
	// StateUninitialized indicates an uninitialized stake account.
	StateUninitialized StateType = 0
	// StateInitialized indicates an initialized stake account with meta
	// but no delegation.
	StateInitialized StateType = 1
	// StateStake indicates a delegated stake account.
	StateStake StateType = 2
	// StateRewardsPool indicates a rewards pool account.
	StateRewardsPool StateType = 3
)

// String returns the string representation of the state type.
func (s StateType) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateStake:
		return "Stake"
	case StateRewardsPool:
		return "RewardsPool"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// Authorized holds the authorized staker and withdrawer.
type Authorized struct {
	Staker     solana.PublicKey // Public key allowed to delegate and deactivate
	Withdrawer solana.PublicKey // Public key allowed to withdraw
}

// UnmarshalWithDecoder deserializes the Authorized from the decoder.
func (a *Authorized) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(a.Staker[:], pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(a.Withdrawer[:], pk)
	return nil
}

// Lockup restricts withdrawal until a timestamp or epoch has passed,
// unless the custodian signs.
type Lockup struct {
	UnixTimestamp int64            // Unix timestamp of lockup expiration
	Epoch         uint64           // Epoch of lockup expiration
	Custodian     solana.PublicKey // Custodian who can modify the lockup
}

// IsInForce reports whether the lockup currently restricts withdrawal.
func (l *Lockup) IsInForce(currentTimestamp int64, currentEpoch uint64, custodian *solana.PublicKey) bool {
	if custodian != nil && *custodian == l.Custodian {
		return false
	}
	return currentTimestamp < l.UnixTimestamp || currentEpoch < l.Epoch
}

// UnmarshalWithDecoder deserializes the Lockup from the decoder.
func (l *Lockup) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	ts, err := decoder.ReadInt64(bin.LE)
	if err != nil {
		return err
	}
	l.UnixTimestamp = ts

	l.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(l.Custodian[:], pk)
	return nil
}

// Meta is the stake account metadata.
type Meta struct {
	RentExemptReserve uint64     // Rent exempt reserve in lamports
	Authorized        Authorized // Authorized staker and withdrawer
	Lockup            Lockup     // Lockup configuration
}

// UnmarshalWithDecoder deserializes the Meta from the decoder.
func (m *Meta) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	m.RentExemptReserve, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	if err := m.Authorized.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	return m.Lockup.UnmarshalWithDecoder(decoder)
}

// Delegation binds stake lamports to a validator vote account.
type Delegation struct {
	VoterPubkey        solana.PublicKey // Vote account to which the stake is delegated
	Stake              uint64           // Delegated stake amount in lamports
	ActivationEpoch    uint64           // Epoch when the stake was activated
	DeactivationEpoch  uint64           // Epoch when deactivation began (max uint64 if active)
	WarmupCooldownRate float64          // Rate of warmup/cooldown per epoch
}

// IsActive returns true if the delegation has not been deactivated.
func (d *Delegation) IsActive() bool {
	return d.DeactivationEpoch == DeactivationEpochMax
}

// UnmarshalWithDecoder deserializes the Delegation from the decoder.
func (d *Delegation) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(d.VoterPubkey[:], pk)

	d.Stake, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	d.ActivationEpoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	d.DeactivationEpoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	d.WarmupCooldownRate, err = decoder.ReadFloat64(bin.LE)
	return err
}

// Stake is the delegation portion of a stake account.
type Stake struct {
	Delegation      Delegation // Delegation information
	CreditsObserved uint64     // Credits observed at last reward collection
}

// UnmarshalWithDecoder deserializes the Stake from the decoder.
func (s *Stake) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	if err := s.Delegation.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	var err error
	s.CreditsObserved, err = decoder.ReadUint64(bin.LE)
	return err
}

// StakeState is the decoded state of a stake account.
type StakeState struct {
	Type  StateType // State discriminant
	Meta  Meta      // Metadata (Initialized and Stake states)
	Stake Stake     // Delegation info (Stake state only)
}

// IsDelegated returns true if the stake account carries a delegation.
func (s *StakeState) IsDelegated() bool {
	return s.Type == StateStake
}

// ParseAccount decodes a stake account's full data buffer. The buffer
// must be exactly AccountSize bytes; anything else indicates a layout
// version this package does not understand and fails with
// ErrUnexpectedLayout rather than decoding garbage.
func ParseAccount(data []byte) (*StakeState, error) {
	if uint64(len(data)) != AccountSize {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrUnexpectedLayout, len(data), AccountSize)
	}

	decoder := bin.NewBinDecoder(data)
	discriminant, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("read state discriminant: %w", err)
	}

	state := &StakeState{Type: StateType(discriminant)}
	switch state.Type {
	case StateUninitialized, StateRewardsPool:
		return state, nil
	case StateInitialized:
		if err := state.Meta.UnmarshalWithDecoder(decoder); err != nil {
			return nil, fmt.Errorf("decode meta: %w", err)
		}
		return state, nil
	case StateStake:
		if err := state.Meta.UnmarshalWithDecoder(decoder); err != nil {
			return nil, fmt.Errorf("decode meta: %w", err)
		}
		if err := state.Stake.UnmarshalWithDecoder(decoder); err != nil {
			return nil, fmt.Errorf("decode stake: %w", err)
		}
		return state, nil
	default:
		return nil, fmt.Errorf("%w: unknown discriminant %d", ErrInvalidStakeState, discriminant)
	}
}
