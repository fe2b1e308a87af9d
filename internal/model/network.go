package model

// NetworkMetadata describes the single target network, including the
// fixed metadata sent with an add-network request when the wallet does
// not know the chain.
type NetworkMetadata struct {
	ChainID          uint64
	Name             string
	RPCURL           string
	ExplorerURL      string
	CurrencyName     string
	CurrencySymbol   string
	CurrencyDecimals int
}
