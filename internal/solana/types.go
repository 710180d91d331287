package solana

// EpochInfo is the response of getEpochInfo.
type EpochInfo struct {
	Epoch        int64 `json:"epoch"`
	AbsoluteSlot int64 `json:"absoluteSlot"`
	BlockHeight  int64 `json:"blockHeight"`
	SlotIndex    int64 `json:"slotIndex"`
	SlotsInEpoch int64 `json:"slotsInEpoch"`
}

// LatestBlockhash is the value of getLatestBlockhash.
type LatestBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight int64  `json:"lastValidBlockHeight"`
}

// Commitment levels reported by getSignatureStatuses.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// SignatureStatus is one entry of getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64       `json:"slot"`
	Confirmations      *int64      `json:"confirmations"`
	ConfirmationStatus string      `json:"confirmationStatus"`
	Err                interface{} `json:"err"`
}

// Confirmed reports whether the transaction reached at least "confirmed".
func (s *SignatureStatus) Confirmed() bool {
	return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
}
