package dbconn

import (
	"context"
	"fmt"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/config"
	"github.com/tuantuan-o/ConnectionPool/pkg/errors"

	"github.com/go-sql-driver/mysql"
)

// MySQLConn is a single MySQL session
type MySQLConn struct {
	driverConn
}

// OpenMySQL opens one MySQL connection described by cfg
func OpenMySQL(ctx context.Context, cfg config.DatabaseConfig) (*MySQLConn, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.DBName
	mc.ParseTime = true

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConnectFailed, err)
	}

	dc, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConnectFailed, err)
	}

	return &MySQLConn{driverConn{dc: dc, idleSince: time.Now()}}, nil
}
