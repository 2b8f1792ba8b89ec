package moralis

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/models"
)

// number accepts a JSON number, a quoted number or null.
type number string

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	*n = number(strings.TrimSpace(strings.Trim(string(b), `"`)))
	return nil
}

func (n number) Int64() (int64, bool) {
	if n == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (n number) Float64() (float64, bool) {
	if n == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (n number) Int32() (int32, bool) {
	v, ok := n.Int64()
	if !ok || v < 0 || v > 255 {
		return 0, false
	}
	return int32(v), true
}

type transferItem struct {
	FromAddress      string `json:"from_address"`
	ToAddress        string `json:"to_address"`
	Value            string `json:"value"`
	BlockTimestamp   string `json:"block_timestamp"`
	TransactionHash  string `json:"transaction_hash"`
	BlockNumber      string `json:"block_number"`
	Address          string `json:"address"`
	TokenName        string `json:"token_name"`
	TokenSymbol      string `json:"token_symbol"`
	TokenLogo        string `json:"token_logo"`
	TokenDecimals    number `json:"token_decimals"`
	PossibleSpam     bool   `json:"possible_spam"`
	VerifiedContract bool   `json:"verified_contract"`
}

type transfersResponse struct {
	Total    number         `json:"total"`
	Page     number         `json:"page"`
	PageSize number         `json:"page_size"`
	Cursor   string         `json:"cursor"`
	Result   []transferItem `json:"result"`
}

type nativePrice struct {
	Value    string `json:"value"`
	Decimals number `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

type priceItem struct {
	TokenAddress     string       `json:"tokenAddress"`
	TokenName        string       `json:"tokenName"`
	TokenSymbol      string       `json:"tokenSymbol"`
	TokenLogo        string       `json:"tokenLogo"`
	TokenDecimals    number       `json:"tokenDecimals"`
	PossibleSpam     bool         `json:"possibleSpam"`
	VerifiedContract bool         `json:"verifiedContract"`
	USDPrice         number       `json:"usdPrice"`
	NativePrice      *nativePrice `json:"nativePrice"`
	PercentChange24h number       `json:"usdPrice24hrPercentChange"`
	ExchangeName     string       `json:"exchangeName"`
	ExchangeAddress  string       `json:"exchangeAddress"`
}

type priceToken struct {
	TokenAddress string `json:"token_address"`
	Chain        string `json:"chain,omitempty"`
}

type priceRequest struct {
	Tokens []priceToken `json:"tokens"`
}

type metadataItem struct {
	Address          string `json:"address"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Decimals         number `json:"decimals"`
	Logo             string `json:"logo"`
	PossibleSpam     bool   `json:"possible_spam"`
	VerifiedContract bool   `json:"verified_contract"`
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func normalizeAddress(s string) string {
	if addr, ok := evm.Normalize(s); ok {
		return addr
	}
	return strings.ToLower(s)
}

func (r *transfersResponse) toPage(token string, limit int) *models.TransferPage {
	page := &models.TransferPage{
		Transfers: make([]models.TransferRecord, 0, len(r.Result)),
		Limit:     limit,
	}
	if total, ok := r.Total.Int64(); ok {
		page.Total = &total
	}

	for _, item := range r.Result {
		page.Transfers = append(page.Transfers, models.TransferRecord{
			From:        normalizeAddress(item.FromAddress),
			To:          normalizeAddress(item.ToAddress),
			Value:       item.Value,
			Timestamp:   parseTimestamp(item.BlockTimestamp),
			TxHash:      item.TransactionHash,
			BlockNumber: item.BlockNumber,
		})
	}

	// token fields are repeated on every item, the first one that has them wins
	for _, item := range r.Result {
		decimals, ok := item.TokenDecimals.Int32()
		if item.TokenSymbol == "" || !ok {
			continue
		}
		address := token
		if item.Address != "" {
			address = normalizeAddress(item.Address)
		}
		page.Token = &models.TokenMetadata{
			Address:      address,
			Name:         item.TokenName,
			Symbol:       item.TokenSymbol,
			Decimals:     decimals,
			PossibleSpam: item.PossibleSpam,
			Logo:         item.TokenLogo,
			Verified:     item.VerifiedContract,
		}
		break
	}

	return page
}

func (p *priceItem) toPrice(token string) *models.TokenPrice {
	price := &models.TokenPrice{
		TokenAddress:    token,
		ExchangeName:    p.ExchangeName,
		ExchangeAddress: p.ExchangeAddress,
		Source:          Name,
		TokenName:       p.TokenName,
		TokenSymbol:     p.TokenSymbol,
		TokenLogo:       p.TokenLogo,
		PossibleSpam:    p.PossibleSpam,
		Verified:        p.VerifiedContract,
	}
	if p.TokenAddress != "" {
		price.TokenAddress = normalizeAddress(p.TokenAddress)
	}
	if v, ok := p.USDPrice.Float64(); ok {
		price.USDPrice = v
	}
	if v, ok := p.PercentChange24h.Float64(); ok {
		price.PriceChange24h = v
		price.HasChange24h = true
	}
	if d, ok := p.TokenDecimals.Int32(); ok {
		price.TokenDecimals = &d
	}
	if p.NativePrice != nil && p.NativePrice.Value != "" {
		decimals, ok := p.NativePrice.Decimals.Int32()
		if !ok {
			decimals = 18
		}
		if v, err := decimal.NewFromString(p.NativePrice.Value); err == nil {
			price.NativePrice = v.Shift(-decimals).InexactFloat64()
		}
	}
	return price
}

func (m *metadataItem) toMetadata(token string) (*models.TokenMetadata, bool) {
	decimals, ok := m.Decimals.Int32()
	if m.Symbol == "" && m.Name == "" {
		return nil, false
	}
	address := token
	if m.Address != "" {
		address = normalizeAddress(m.Address)
	}
	meta := &models.TokenMetadata{
		Address:      address,
		Name:         m.Name,
		Symbol:       m.Symbol,
		PossibleSpam: m.PossibleSpam,
		Logo:         m.Logo,
		Verified:     m.VerifiedContract,
	}
	if ok {
		meta.Decimals = decimals
	} else {
		meta.Decimals = DefaultDecimals
	}
	return meta, true
}
