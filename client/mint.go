package client

import (
	"context"
	"net/http"
	"time"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/jsonmodels"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

const (
	routeMint       = "mint"
	routeMintReset  = "mint/reset"
	routeMintStatus = "mint/status"

	// DefaultPollWait is used by WaitForMint when no positive poll wait is given.
	DefaultPollWait = 30 * time.Second
)

// StartMint supersedes the current attempt of the daemon and mints value to the actor.
func (api *MintAPI) StartMint(ctx context.Context, actor ledger.Address, value amount.Amount) (*jsonmodels.MintStatusResponse, error) {
	res := &jsonmodels.MintStatusResponse{}
	if err := api.do(ctx, http.MethodPost, routeMint, nil, &jsonmodels.MintRequest{
		Actor:  actor,
		Amount: value,
	}, res); err != nil {
		return nil, err
	}

	return res, nil
}

// ResetMint discards the current attempt of the daemon.
func (api *MintAPI) ResetMint(ctx context.Context) (*jsonmodels.MintStatusResponse, error) {
	res := &jsonmodels.MintStatusResponse{}
	if err := api.do(ctx, http.MethodPost, routeMintReset, nil, nil, res); err != nil {
		return nil, err
	}

	return res, nil
}

// MintStatus returns the status of the current attempt.
func (api *MintAPI) MintStatus(ctx context.Context) (*jsonmodels.MintStatusResponse, error) {
	return api.mintStatus(ctx, 0)
}

// WaitForMint polls the status of the current attempt until it left the pending phase or the context is done. Every
// poll is held by the daemon for at most pollWait, which falls back to DefaultPollWait if it is not positive.
func (api *MintAPI) WaitForMint(ctx context.Context, pollWait time.Duration) (*jsonmodels.MintStatusResponse, error) {
	if pollWait <= 0 {
		pollWait = DefaultPollWait
	}

	for {
		res, err := api.mintStatus(ctx, pollWait)
		if err != nil {
			return nil, err
		}
		if !res.IsPending {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
	}
}

func (api *MintAPI) mintStatus(ctx context.Context, wait time.Duration) (*jsonmodels.MintStatusResponse, error) {
	var query map[string]string
	if wait > 0 {
		query = map[string]string{"wait": wait.String()}
	}

	res := &jsonmodels.MintStatusResponse{}
	if err := api.do(ctx, http.MethodGet, routeMintStatus, query, nil, res); err != nil {
		return nil, err
	}

	return res, nil
}
