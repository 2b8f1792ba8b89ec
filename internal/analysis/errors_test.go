package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adamstosho/RugRadar/internal/configs"
	"github.com/adamstosho/RugRadar/internal/data/collector/moralis"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "missing key", err: fmt.Errorf("creating client: %w", configs.ErrMissingAPIKey), want: "Moralis API key not configured. Run `rugradar auth save` or set MORALIS_API_KEY."},
		{name: "invalid address", err: fmt.Errorf("%w: %q", ErrInvalidAddress, "0x12"), want: "Invalid Ethereum address format"},
		{name: "timeout", err: ErrTimeout, want: "Request timed out. Please try again."},
		{
			name: "unauthorized",
			err:  fmt.Errorf("%w: %w", ErrMetadataUnavailable, &moralis.APIError{StatusCode: http.StatusUnauthorized}),
			want: "Invalid API key. Please check your Moralis API key.",
		},
		{
			name: "not found",
			err:  &moralis.APIError{StatusCode: http.StatusNotFound},
			want: "Token not found. Please verify the contract address.",
		},
		{
			name: "generic vendor failure",
			err:  &moralis.APIError{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway", Body: "upstream"},
			want: "API request failed: 502 Bad Gateway - upstream",
		},
		{name: "metadata", err: ErrMetadataUnavailable, want: "Could not load token details. Please verify the contract address and chain."},
		{name: "canceled", err: context.Canceled, want: "Analysis canceled."},
		{name: "other", err: errors.New("boom"), want: "Analysis failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
