// Solana-Staking: staking lifecycle automation against a Solana cluster.
//
// This is the command-line entry point. It drives a stake account
// through create, delegate, deactivate, and withdraw against a cluster
// endpoint, lists validators, and scans for the stake accounts
// delegating to a validator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/glatiuden/Solana-Staking/pkg/cluster"
	"github.com/glatiuden/Solana-Staking/pkg/lifecycle"
	"github.com/glatiuden/Solana-Staking/pkg/scanner"
)

// Configuration flags
var (
	endpoint   = flag.String("endpoint", rpc.DevNet_RPC, "Cluster JSON-RPC endpoint URL")
	wsEndpoint = flag.String("ws-endpoint", rpc.DevNet_WS, "Cluster websocket endpoint URL")
	commitment = flag.String("commitment", "processed", "Commitment level: processed, confirmed, finalized")
	stakeSOL   = flag.Float64("stake", 0.5, "User stake contribution in SOL, added to the rent-exemption minimum")
)

const usage = `Usage: staking [flags] <command> [args]

Commands:
  validators          list current and delinquent validator counts
  create              create a funded stake account
  delegate            create and delegate a stake account
  deactivate          create, delegate, and deactivate a stake account
  withdraw            run the full create/delegate/deactivate/withdraw lifecycle
  scan [vote-pubkey]  count stake accounts delegating to a validator
  full                validators, full lifecycle, then scan the chosen validator
`

func main() {
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "full"
	}

	cfg := cluster.Config{
		Endpoint:   *endpoint,
		WSEndpoint: *wsEndpoint,
		Commitment: rpc.CommitmentType(*commitment),
	}

	ctx := context.Background()
	client, err := cluster.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.Endpoint, err)
	}
	defer client.Close()

	contribution := uint64(*stakeSOL * float64(solana.LAMPORTS_PER_SOL))
	orch := lifecycle.NewOrchestrator(client, lifecycle.FirstActive{}, contribution)

	switch command {
	case "validators":
		err = runValidators(ctx, client)
	case "create":
		_, err = runLifecycle(ctx, client, orch, lifecycle.PhaseCreated)
	case "delegate":
		_, err = runLifecycle(ctx, client, orch, lifecycle.PhaseDelegated)
	case "deactivate":
		_, err = runLifecycle(ctx, client, orch, lifecycle.PhaseDeactivated)
	case "withdraw":
		_, err = runLifecycle(ctx, client, orch, lifecycle.PhaseWithdrawn)
	case "scan":
		err = runScan(ctx, client, flag.Arg(1))
	case "full":
		err = runFull(ctx, client, orch)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Command %s failed: %v", command, err)
	}
}

// runValidators lists the sizes of the current and delinquent
// validator sets.
func runValidators(ctx context.Context, client *cluster.Client) error {
	votes, err := client.VoteAccounts(ctx)
	if err != nil {
		return err
	}
	log.Printf("Validators: %d current, %d delinquent", len(votes.Current), len(votes.Delinquent))
	return nil
}

// runLifecycle advances a fresh State one phase at a time up to target,
// reporting the signature, balances, and stake activation after each
// transition.
func runLifecycle(ctx context.Context, client *cluster.Client, orch *lifecycle.Orchestrator, target lifecycle.Phase) (*lifecycle.State, error) {
	st := &lifecycle.State{}
	for st.Phase < target {
		next := st.Phase + 1
		if err := orch.Advance(ctx, st, next); err != nil {
			return nil, err
		}
		if err := report(ctx, client, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// report logs the observable outcome of the transition that produced st.
func report(ctx context.Context, client *cluster.Client, st *lifecycle.State) error {
	log.Printf("%s: confirmed %s", st.Phase, st.LastSignature)

	balance, err := client.Balance(ctx, st.StakeAccount.PublicKey())
	if err != nil {
		return err
	}
	log.Printf("%s: stake account %s balance %d lamports", st.Phase, st.StakeAccount.PublicKey(), balance)

	switch st.Phase {
	case lifecycle.PhaseWithdrawn:
		walletBalance, err := client.Balance(ctx, st.Wallet.PublicKey())
		if err != nil {
			return err
		}
		log.Printf("%s: wallet %s balance %d lamports", st.Phase, st.Wallet.PublicKey(), walletBalance)
	case lifecycle.PhaseDelegated:
		log.Printf("%s: delegated to validator %s", st.Phase, st.Validator)
		fallthrough
	default:
		activation, err := client.StakeActivation(ctx, st.StakeAccount.PublicKey())
		if err != nil {
			return err
		}
		log.Printf("%s: stake activation %s", st.Phase, activation)
	}
	return nil
}

// runScan counts the delegators of the given vote account, defaulting
// to the first active validator when none is named.
func runScan(ctx context.Context, client *cluster.Client, voteArg string) error {
	var vote solana.PublicKey
	if voteArg != "" {
		parsed, err := solana.PublicKeyFromBase58(voteArg)
		if err != nil {
			return fmt.Errorf("parse vote pubkey %q: %w", voteArg, err)
		}
		vote = parsed
	} else {
		votes, err := client.VoteAccounts(ctx)
		if err != nil {
			return err
		}
		vote, err = lifecycle.FirstActive{}.Select(votes.Current)
		if err != nil {
			return err
		}
	}
	return scanAndReport(ctx, client, vote)
}

// scanAndReport runs the delegator scan and logs the count and sample.
func scanAndReport(ctx context.Context, client *cluster.Client, vote solana.PublicKey) error {
	result, err := scanner.Scan(ctx, client, vote)
	if err != nil {
		return err
	}
	log.Printf("Validator %s has %d delegator stake accounts", vote, result.Count)
	if result.Sample != nil {
		log.Printf("Sample record:\n%s", spew.Sdump(result.Sample))
	}
	return nil
}

// runFull lists validators, runs the complete withdraw lifecycle, then
// scans the delegators of the validator the lifecycle delegated to.
func runFull(ctx context.Context, client *cluster.Client, orch *lifecycle.Orchestrator) error {
	if err := runValidators(ctx, client); err != nil {
		return err
	}
	st, err := runLifecycle(ctx, client, orch, lifecycle.PhaseWithdrawn)
	if err != nil {
		return err
	}
	return scanAndReport(ctx, client, st.Validator)
}
