package backend

import (
	"errors"

	"github.com/arcnetwork/arc-processing/arc"
)

// WalletInfo describes one wallet of user's portfolio
type WalletInfo struct {
	PublicKey string  `json:"public_key"`
	Balance   float64 `json:"balance"`
	ValueUSD  float64 `json:"value_usd"`
	Network   string  `json:"network"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
}

// Portfolio is the full portfolio of current user
type Portfolio struct {
	Wallets       []*WalletInfo `json:"wallets"`
	TotalValueUSD float64       `json:"total_value_usd"`
}

// MerchantWallet describes a merchant's receiving wallet
type MerchantWallet struct {
	MerchantName string  `json:"merchant_name"`
	PublicKey    string  `json:"public_key"`
	Balance      float64 `json:"balance"`
}

// GetPortfolio fetches portfolio of current user
func (cli *Client) GetPortfolio(token string) (*Portfolio, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var response struct {
		Portfolio *Portfolio `json:"portfolio"`
	}
	err := cli.sendRequest("GET", PortfolioURL, token, nil, &response)
	if err != nil {
		return nil, err
	}
	if response.Portfolio == nil {
		return nil, errors.New("Backend returned no portfolio")
	}
	return response.Portfolio, nil
}

// GetARCWallet finds the ARC wallet in user's portfolio. It is used to
// display and refresh the balance shown in the popup
func (cli *Client) GetARCWallet(token string) (*WalletInfo, error) {
	portfolio, err := cli.GetPortfolio(token)
	if err != nil {
		return nil, err
	}
	for _, wallet := range portfolio.Wallets {
		if wallet.Symbol == arc.Currency {
			return wallet, nil
		}
	}
	return nil, errors.New("ARC wallet not found")
}

// GetMerchantInfo fetches a merchant's receiving wallet by merchant name
func (cli *Client) GetMerchantInfo(merchantName string) (*MerchantWallet, error) {
	var response struct {
		MerchantWallet *MerchantWallet `json:"merchant_wallet"`
	}
	err := cli.sendRequest(
		"GET", MerchantInfoURL+"?merchant_name="+merchantName, "", nil,
		&response,
	)
	if err != nil {
		return nil, err
	}
	if response.MerchantWallet == nil {
		return nil, errors.New("Merchant " + merchantName + " not found")
	}
	return response.MerchantWallet, nil
}
