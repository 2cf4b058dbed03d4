package backend

import (
	"github.com/arcnetwork/arc-processing/arc"
)

// Transaction is one entry of backend transaction history
type Transaction struct {
	TransactionHash string  `json:"transaction_hash"`
	ToAddress       string  `json:"to_address"`
	Amount          float64 `json:"amount"`
	CryptoSymbol    string  `json:"crypto_symbol"`
	TransactionType string  `json:"transaction_type"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

type merchantPaymentRequest struct {
	MerchantName string  `json:"merchant_name"`
	Amount       float64 `json:"amount"`
	CryptoSymbol string  `json:"crypto_symbol"`
	Memo         string  `json:"memo"`
}

type transferRequest struct {
	ToAddress       string  `json:"to_address"`
	Amount          float64 `json:"amount"`
	CryptoSymbol    string  `json:"crypto_symbol"`
	TransactionType string  `json:"transaction_type"`
	Memo            string  `json:"memo"`
}

type cancelRequest struct {
	TxHash string `json:"tx_hash"`
}

type createTransactionResponse struct {
	TransactionHash string `json:"transaction_hash"`
}

// CreateMerchantPayment asks backend to commit a payment of given amount to
// a named merchant. A non-empty transaction hash means backend accepted the
// transaction; a response without one is a rejection
func (cli *Client) CreateMerchantPayment(token, merchantName string, amount arc.Amount) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	var response createTransactionResponse
	err := cli.sendRequest(
		"POST", MerchantPaymentURL, token,
		merchantPaymentRequest{
			MerchantName: merchantName,
			Amount:       amount.Float64(),
			CryptoSymbol: arc.Currency,
			Memo:         "Extension payment to " + merchantName,
		},
		&response,
	)
	if err != nil {
		return "", err
	}
	if response.TransactionHash == "" {
		return "", APIError("Transaction was not created")
	}
	return response.TransactionHash, nil
}

// CreateTransfer asks backend to commit a wallet-to-wallet transfer
func (cli *Client) CreateTransfer(token, toAddress string, amount arc.Amount) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	var response createTransactionResponse
	err := cli.sendRequest(
		"POST", TransactionsURL, token,
		transferRequest{
			ToAddress:       toAddress,
			Amount:          amount.Float64(),
			CryptoSymbol:    arc.Currency,
			TransactionType: "transfer",
			Memo:            "Manual transfer to " + toAddress,
		},
		&response,
	)
	if err != nil {
		return "", err
	}
	if response.TransactionHash == "" {
		return "", APIError("Transaction was not created")
	}
	return response.TransactionHash, nil
}

// CancelTransaction asks backend to cancel a transaction by its hash. It is
// used by the best-effort cancellation paths of the payment session
func (cli *Client) CancelTransaction(token, txHash string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return cli.sendRequest(
		"POST", TransactionCancelURL, token, cancelRequest{TxHash: txHash},
		nil,
	)
}

// GetTransactions fetches transaction history of current user
func (cli *Client) GetTransactions(token string) ([]*Transaction, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var response struct {
		Transactions []*Transaction `json:"transactions"`
	}
	err := cli.sendRequest("GET", TransactionsURL, token, nil, &response)
	if err != nil {
		return nil, err
	}
	return response.Transactions, nil
}
