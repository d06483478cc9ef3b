// Package test provides an opt-in integration test for the staking
// lifecycle against a live cluster.
//
// The test exercises the complete flow:
// 1. Fund a fresh wallet from the faucet
// 2. Create a stake account
// 3. Delegate it to the first active validator
// 4. Deactivate the delegation
// 5. Withdraw the full balance
// 6. Scan the validator's delegator stake accounts
//
// It is skipped unless STAKING_RPC_ENDPOINT and STAKING_WS_ENDPOINT are
// set; pointing them at devnet makes a run cost nothing but faucet
// funds.
package test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/glatiuden/Solana-Staking/pkg/cluster"
	"github.com/glatiuden/Solana-Staking/pkg/lifecycle"
	"github.com/glatiuden/Solana-Staking/pkg/scanner"
)

func TestLifecycleIntegration(t *testing.T) {
	endpoint := os.Getenv("STAKING_RPC_ENDPOINT")
	wsEndpoint := os.Getenv("STAKING_WS_ENDPOINT")
	if endpoint == "" || wsEndpoint == "" {
		t.Skip("STAKING_RPC_ENDPOINT and STAKING_WS_ENDPOINT not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := cluster.Connect(ctx, cluster.Config{
		Endpoint:   endpoint,
		WSEndpoint: wsEndpoint,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	orch := lifecycle.NewOrchestrator(client, lifecycle.FirstActive{}, 0)

	st := &lifecycle.State{}
	if err := orch.Advance(ctx, st, lifecycle.PhaseWithdrawn); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if st.Phase != lifecycle.PhaseWithdrawn {
		t.Fatalf("phase = %s, want Withdrawn", st.Phase)
	}

	balance, err := client.Balance(ctx, st.StakeAccount.PublicKey())
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance != 0 {
		t.Errorf("post-withdrawal stake account balance = %d, want 0", balance)
	}

	result, err := scanner.Scan(ctx, client, st.Validator)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	t.Logf("validator %s has %d delegator stake accounts", st.Validator, result.Count)
}
