package analysis

import (
	"context"
	"errors"

	"github.com/adamstosho/RugRadar/internal/configs"
	"github.com/adamstosho/RugRadar/internal/data/collector/moralis"
)

var (
	ErrInvalidAddress      = errors.New("invalid contract address")
	ErrUnsupportedChain    = errors.New("unsupported chain")
	ErrTimeout             = errors.New("analysis timed out")
	ErrMetadataUnavailable = errors.New("token metadata unavailable")
)

// UserMessage turns any error returned by an analysis into one line fit for an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *moralis.APIError
	switch {
	case errors.Is(err, configs.ErrMissingAPIKey):
		return "Moralis API key not configured. Run `rugradar auth save` or set MORALIS_API_KEY."
	case errors.Is(err, ErrInvalidAddress):
		return "Invalid Ethereum address format"
	case errors.Is(err, ErrUnsupportedChain):
		return "Unsupported chain. Use one of eth, bsc, polygon, arbitrum, optimism, base, avalanche."
	case errors.Is(err, ErrTimeout):
		return "Request timed out. Please try again."
	case errors.As(err, &apiErr):
		if apiErr.NotFound() {
			return "Token not found. Please verify the contract address."
		}
		return apiErr.Message()
	case errors.Is(err, ErrMetadataUnavailable):
		return "Could not load token details. Please verify the contract address and chain."
	case errors.Is(err, context.Canceled):
		return "Analysis canceled."
	}
	return "Analysis failed: " + err.Error()
}
