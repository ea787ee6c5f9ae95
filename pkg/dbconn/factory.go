package dbconn

import (
	"context"
	"fmt"

	"github.com/tuantuan-o/ConnectionPool/pkg/config"
	"github.com/tuantuan-o/ConnectionPool/pkg/errors"
)

// NewFactory returns a Factory for the configured database backend
func NewFactory(cfg config.DatabaseConfig) (Factory, error) {
	switch cfg.Driver {
	case "mysql":
		return func(ctx context.Context) (RawConnection, error) {
			return OpenMySQL(ctx, cfg)
		}, nil
	case "sqlite", "":
		return func(ctx context.Context) (RawConnection, error) {
			return OpenSQLite(cfg.DBName)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedDriver, cfg.Driver)
	}
}
