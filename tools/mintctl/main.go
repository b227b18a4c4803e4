package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"

	"github.com/bountyboard/mintwatch/client"
	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/jsonmodels"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/reconciler"
)

var (
	apiURL   = flag.String("api", "http://127.0.0.1:8080", "the web API of the mintwatch daemon")
	actor    = flag.String("actor", "", "the address that receives the minted tokens")
	value    = flag.String("amount", "", "the amount to mint, in tokens with the given decimals")
	decimals = flag.Uint8("decimals", 0, "the decimals of the token (0 means --amount is given in base units)")
	yes      = flag.BoolP("yes", "y", false, "do not ask for confirmation")
	reset    = flag.Bool("reset", false, "discard the current attempt instead of starting a new one")
	pollWait = flag.Duration("wait", 30*time.Second, "the time every status request is held by the daemon")
	timeout  = flag.Duration("timeout", 5*time.Minute, "the time to follow the attempt before giving up")
)

func main() {
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, client.NewMintAPI(*apiURL)); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.MintAPI) error {
	if *reset {
		status, err := api.ResetMint(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to reset")
		}
		printStatus(status)

		return nil
	}

	recipient, err := ledger.AddressFromHex(*actor)
	if err != nil {
		return errors.Wrap(err, "invalid --actor")
	}
	units, err := amount.ParseUnits(*value, *decimals)
	if err != nil {
		return errors.Wrap(err, "invalid --amount")
	}

	if !*yes {
		confirmed := false
		if err = survey.AskOne(&survey.Confirm{
			Message: fmt.Sprintf("Mint %s base units to %s?", units, recipient),
		}, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("aborted")
			return nil
		}
	}

	status, err := api.StartMint(ctx, recipient, units)
	if err != nil {
		return errors.Wrap(err, "failed to start the mint")
	}
	printStatus(status)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	status, err = api.WaitForMint(ctx, *pollWait)
	if err != nil {
		return errors.Wrap(err, "failed to follow the mint")
	}
	printStatus(status)

	if status.Phase == reconciler.PhaseFailed {
		return errors.Newf("mint failed: %s", status.Error)
	}

	return nil
}

func printStatus(status *jsonmodels.MintStatusResponse) {
	switch status.Phase {
	case reconciler.PhaseIdle:
		fmt.Printf("attempt %d: idle\n", status.Epoch)
	case reconciler.PhaseFailed:
		fmt.Printf("attempt %d: %s (%s)\n", status.Epoch, status.Phase, status.Error)
	default:
		if status.Handle != "" {
			fmt.Printf("attempt %d: %s, transaction %s\n", status.Epoch, status.Phase, status.Handle)
			return
		}
		fmt.Printf("attempt %d: %s\n", status.Epoch, status.Phase)
	}
}
