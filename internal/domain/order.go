package domain

// Order is an open order as shown in the open-orders table. It carries the
// accounts needed to build a cancellation instruction.
type Order struct {
	OrderID        string  // u128 order id, decimal string
	Market         string  // market account address
	OpenOrders     string  // open-orders account owning the order
	Side           string  // SideBuy or SideSell
	Price          float64
	Size           float64
	ProgramVersion int // DEX program version of the market
}

// CancelStatus describes the lifecycle of one cancel attempt.
type CancelStatus int

const (
	CancelIdle CancelStatus = iota
	CancelSubmitting
	CancelConfirmed
	CancelFailed
)

func (s CancelStatus) String() string {
	switch s {
	case CancelIdle:
		return "idle"
	case CancelSubmitting:
		return "submitting"
	case CancelConfirmed:
		return "confirmed"
	case CancelFailed:
		return "failed"
	}
	return "unknown"
}
