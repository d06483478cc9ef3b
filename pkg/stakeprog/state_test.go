package stakeprog

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
)

// buildStakeAccountData assembles a raw 200-byte delegated stake
// account buffer the way the on-chain program lays it out.
func buildStakeAccountData(staker, withdrawer, custodian, voter solana.PublicKey, reserve, stake uint64) []byte {
	data := make([]byte, AccountSize)
	binary.LittleEndian.PutUint32(data[0:4], uint32(StateStake))
	binary.LittleEndian.PutUint64(data[4:12], reserve)
	copy(data[12:44], staker[:])
	copy(data[44:76], withdrawer[:])
	binary.LittleEndian.PutUint64(data[76:84], 0) // lockup timestamp
	binary.LittleEndian.PutUint64(data[84:92], 0) // lockup epoch
	copy(data[92:124], custodian[:])
	copy(data[VoterPubkeyOffset:VoterPubkeyOffset+32], voter[:])
	binary.LittleEndian.PutUint64(data[156:164], stake)
	binary.LittleEndian.PutUint64(data[164:172], 300)                  // activation epoch
	binary.LittleEndian.PutUint64(data[172:180], DeactivationEpochMax) // not deactivated
	binary.LittleEndian.PutUint64(data[180:188], math.Float64bits(0.25))
	binary.LittleEndian.PutUint64(data[188:196], 42) // credits observed
	return data
}

func TestParseAccountDelegated(t *testing.T) {
	staker := testKey(1)
	withdrawer := testKey(1)
	custodian := testKey(1)
	voter := testKey(9)

	data := buildStakeAccountData(staker, withdrawer, custodian, voter, 2_282_880, 500_000_000)

	state, err := ParseAccount(data)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	if state.Type != StateStake {
		t.Errorf("state type = %s, want Stake", state.Type)
	}
	if !state.IsDelegated() {
		t.Error("IsDelegated() = false, want true")
	}
	if state.Meta.RentExemptReserve != 2_282_880 {
		t.Errorf("rent reserve = %d, want 2282880", state.Meta.RentExemptReserve)
	}
	if state.Meta.Authorized.Staker != staker {
		t.Errorf("staker = %s, want %s", state.Meta.Authorized.Staker, staker)
	}
	if state.Meta.Authorized.Withdrawer != withdrawer {
		t.Errorf("withdrawer = %s, want %s", state.Meta.Authorized.Withdrawer, withdrawer)
	}
	if state.Stake.Delegation.VoterPubkey != voter {
		t.Errorf("voter = %s, want %s", state.Stake.Delegation.VoterPubkey, voter)
	}
	if state.Stake.Delegation.Stake != 500_000_000 {
		t.Errorf("stake = %d, want 500000000", state.Stake.Delegation.Stake)
	}
	if state.Stake.Delegation.WarmupCooldownRate != 0.25 {
		t.Errorf("warmup rate = %v, want 0.25", state.Stake.Delegation.WarmupCooldownRate)
	}
	if !state.Stake.Delegation.IsActive() {
		t.Error("IsActive() = false, want true")
	}
	if state.Stake.CreditsObserved != 42 {
		t.Errorf("credits = %d, want 42", state.Stake.CreditsObserved)
	}
}

func TestParseAccountVoterOffset(t *testing.T) {
	// The sequential decode must land the voter pubkey exactly at the
	// documented offset used by the program-account scan filter.
	voter := testKey(7)
	data := buildStakeAccountData(testKey(1), testKey(1), testKey(1), voter, 1, 1)

	var atOffset solana.PublicKey
	copy(atOffset[:], data[VoterPubkeyOffset:VoterPubkeyOffset+32])
	if atOffset != voter {
		t.Fatal("fixture does not place the voter at VoterPubkeyOffset")
	}

	state, err := ParseAccount(data)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	if state.Stake.Delegation.VoterPubkey != atOffset {
		t.Errorf("decoded voter %s does not match bytes at offset %d", state.Stake.Delegation.VoterPubkey, VoterPubkeyOffset)
	}
}

func TestParseAccountWrongSize(t *testing.T) {
	for _, size := range []int{0, 4, 196, 199, 201, 400} {
		_, err := ParseAccount(make([]byte, size))
		if !errors.Is(err, ErrUnexpectedLayout) {
			t.Errorf("ParseAccount(%d bytes) error = %v, want ErrUnexpectedLayout", size, err)
		}
	}
}

func TestParseAccountUninitialized(t *testing.T) {
	data := make([]byte, AccountSize)

	state, err := ParseAccount(data)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	if state.Type != StateUninitialized {
		t.Errorf("state type = %s, want Uninitialized", state.Type)
	}
	if state.IsDelegated() {
		t.Error("IsDelegated() = true, want false")
	}
}

func TestParseAccountUnknownDiscriminant(t *testing.T) {
	data := make([]byte, AccountSize)
	binary.LittleEndian.PutUint32(data[0:4], 17)

	_, err := ParseAccount(data)
	if !errors.Is(err, ErrInvalidStakeState) {
		t.Errorf("ParseAccount() error = %v, want ErrInvalidStakeState", err)
	}
}

func TestLockupIsInForce(t *testing.T) {
	custodian := testKey(3)
	lockup := Lockup{UnixTimestamp: 1000, Epoch: 10, Custodian: custodian}

	if !lockup.IsInForce(500, 5, nil) {
		t.Error("lockup should be in force before timestamp and epoch")
	}
	if lockup.IsInForce(2000, 20, nil) {
		t.Error("lockup should not be in force after timestamp and epoch")
	}
	if lockup.IsInForce(500, 5, &custodian) {
		t.Error("custodian should bypass the lockup")
	}
}
