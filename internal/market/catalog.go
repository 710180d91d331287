package market

import "solana-dex-desk/internal/domain"

// BuiltinMarkets returns the bundled Serum market catalog. Addresses are
// the on-chain market accounts of the v3 DEX program, plus a couple of
// v2 listings kept for deprecated-market migration.
func BuiltinMarkets() []domain.MarketDescriptor {
	return []domain.MarketDescriptor{
		{
			Address:        "C1EuT9VokAKLiW7i2ASnZUvxDoKuKkCpDDeNxAptuNe4",
			Name:           "BTC/USDT",
			BaseCurrency:   "BTC",
			QuoteCurrency:  "USDT",
			ProgramVersion: 3,
		},
		{
			Address:        "A8YFbxQYFVqKZaoYJLLUVcQiWP7G2MeEgW5wsAQgMvFw",
			Name:           "BTC/USDC",
			BaseCurrency:   "BTC",
			QuoteCurrency:  "USDC",
			ProgramVersion: 3,
		},
		{
			Address:        "7dLVkUfBVfCGkFhSXDCq1ukM9usathSgS716t643iFGF",
			Name:           "ETH/USDT",
			BaseCurrency:   "ETH",
			QuoteCurrency:  "USDT",
			ProgramVersion: 3,
		},
		{
			Address:        "4tSvZvnbyzHXLMTiFonMyxZoHmFqau1XArcRCVHLZ5gX",
			Name:           "ETH/USDC",
			BaseCurrency:   "ETH",
			QuoteCurrency:  "USDC",
			ProgramVersion: 3,
		},
		{
			Address:        "HWHvQhFmJB3NUcu1aihKmrKegfVxBEHzwVX6yZCKEsi1",
			Name:           "SOL/USDT",
			BaseCurrency:   "SOL",
			QuoteCurrency:  "USDT",
			ProgramVersion: 3,
		},
		{
			Address:        "9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT",
			Name:           "SOL/USDC",
			BaseCurrency:   "SOL",
			QuoteCurrency:  "USDC",
			ProgramVersion: 3,
		},
		{
			Address:        "AtNnsY1AyRERWJ8xCskfz38YdvruWVJQUVXgScC1iPb",
			Name:           "SRM/USDT",
			BaseCurrency:   "SRM",
			QuoteCurrency:  "USDT",
			ProgramVersion: 3,
		},
		{
			Address:        "ByRys5tuUWDgL73G8JBAEfkdFf8JWBzPBDHsBVQ5vbQA",
			Name:           "SRM/USDC",
			BaseCurrency:   "SRM",
			QuoteCurrency:  "USDC",
			ProgramVersion: 3,
		},
		{
			Address:        "teE55QrL4a4QSfydR9dnHF97jgCfptpuigbb53Lo95g",
			Name:           "RAY/USDT",
			BaseCurrency:   "RAY",
			QuoteCurrency:  "USDT",
			ProgramVersion: 3,
		},
		{
			Address:        "2xiv8A5xrJ7RnGdxXB42uFEkYHJjszEhaJyKKt4WaLep",
			Name:           "RAY/USDC",
			BaseCurrency:   "RAY",
			QuoteCurrency:  "USDC",
			ProgramVersion: 3,
		},
		{
			Address:        "EmCzMQfXMgNHcnRoFwAdPe1i2SuiSzMj1mx6wu3KN2uA",
			Name:           "ALEPH/USDT",
			BaseCurrency:   "ALEPH",
			QuoteCurrency:  "USDT",
			ProgramVersion: 2,
			Deprecated:     true,
		},
		{
			Address:        "CAgAeMD7quTdnr6RPa7JySQpjf3irAmefYNdTb6anemq",
			Name:           "BTC/WUSDT",
			BaseCurrency:   "BTC",
			QuoteCurrency:  "WUSDT",
			ProgramVersion: 2,
			Deprecated:     true,
		},
	}
}
