package model

// AssetBalance is one row of the account balance sheet. Amounts are the
// exchange's decimal strings.
type AssetBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}
