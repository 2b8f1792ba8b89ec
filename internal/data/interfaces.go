package data

import (
	"context"

	"github.com/adamstosho/RugRadar/internal/models"
)

// DataCollector 负责从各种源收集代币数据
type DataCollector interface {
	// CollectMetadata retrieves name, symbol, decimals and flags of a token
	CollectMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error)

	// CollectTransfers retrieves the most recent page of transfers, newest first
	CollectTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error)

	// CollectPrice retrieves the vendor quote of a token
	CollectPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error)

	// CollectQuote retrieves a best-effort quote by symbol from secondary sources
	CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error)
}
