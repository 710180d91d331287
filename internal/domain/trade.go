package domain

// Trade sides as reported by the public trade feed.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade is a single fill from the public trade feed. Trades are immutable
// once produced; the feed delivers them newest-first by time.
type Trade struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
	Side  string  `json:"side"`
	Time  int64   `json:"time"` // unix seconds
}

// VolumeSample is a point-in-time 24h volume snapshot for one market.
// Samples are replaced wholesale on every poll, never accumulated.
type VolumeSample struct {
	MarketName string  `json:"marketName"`
	VolumeUSD  float64 `json:"volumeUsd"`
	VolumeBase float64 `json:"volume"`
}
