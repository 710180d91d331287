package domain

// MarketDescriptor identifies a tradeable base/quote pair by its on-chain
// market account address.
type MarketDescriptor struct {
	Address        string `json:"address"` // base58 market account, unique across built-in and custom sets
	Name           string `json:"name"`    // "BASE/QUOTE"
	BaseCurrency   string `json:"baseCurrency"`
	QuoteCurrency  string `json:"quoteCurrency"`
	ProgramVersion int    `json:"programVersion"` // DEX program version the market was created under
	Deprecated     bool   `json:"deprecated"`
	Custom         bool   `json:"custom"`
}
