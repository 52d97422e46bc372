package objectstore

import (
	"context"
	"fmt"

	"github.com/uzzysan/Klauzule-zakazane/internal/config"
)

// Store fetches uploaded document bytes by their stored location.
type Store interface {
	Download(ctx context.Context, location string) ([]byte, error)
}

func New(cfg config.Config) (Store, error) {
	switch cfg.ObjectStoreKind {
	case "local":
		return NewLocalStore(cfg.ObjectStoreRoot), nil
	case "http":
		return NewHTTPStore(), nil
	default:
		return nil, fmt.Errorf("unknown object store kind %q", cfg.ObjectStoreKind)
	}
}
