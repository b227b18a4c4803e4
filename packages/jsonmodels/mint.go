package jsonmodels

import (
	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/reconciler"
)

// region MintRequest //////////////////////////////////////////////////////////////////////////////////////////////////

// MintRequest holds the actor and the amount of base units to mint.
type MintRequest struct {
	Actor  ledger.Address `json:"actor"`
	Amount amount.Amount  `json:"amount"`
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region MintStatusResponse ///////////////////////////////////////////////////////////////////////////////////////////

// MintStatusResponse is the HTTP response containing the status of the current mint attempt.
type MintStatusResponse struct {
	Phase       reconciler.Phase `json:"phase"`
	IsPending   bool             `json:"isPending"`
	IsConfirmed bool             `json:"isConfirmed"`
	Error       string           `json:"error,omitempty"`
	Handle      string           `json:"handle,omitempty"`
	Epoch       uint64           `json:"epoch"`
	Actor       string           `json:"actor,omitempty"`
	Amount      string           `json:"amount,omitempty"`
	StartedAt   int64            `json:"startedAt,omitempty"`
}

// NewMintStatusResponse returns the MintStatusResponse of the given Status.
func NewMintStatusResponse(status reconciler.Status) *MintStatusResponse {
	response := &MintStatusResponse{
		Phase:       status.Phase,
		IsPending:   status.IsPending(),
		IsConfirmed: status.IsConfirmed(),
		Error:       status.Reason(),
		Epoch:       status.Epoch,
	}

	if status.Phase == reconciler.PhaseIdle {
		return response
	}

	response.Actor = status.Actor.String()
	response.Amount = status.Amount.String()
	response.StartedAt = status.StartedAt.Unix()
	if !status.Handle.IsEmpty() {
		response.Handle = status.Handle.String()
	}

	return response
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
