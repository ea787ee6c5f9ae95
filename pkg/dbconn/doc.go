// Package dbconn provides single raw database connections for the pool.
//
// Unlike database/sql, which maintains its own internal pool, this package
// opens individual driver-level connections so that pooling stays under the
// control of pkg/pool. Two backends are provided: MySQL via
// go-sql-driver/mysql and SQLite via mattn/go-sqlite3.
//
// Usage:
//
//	factory, err := dbconn.NewFactory(cfg.Database)
//	if err != nil {
//		log.Fatal(err)
//	}
//	conn, err := factory(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	affected, err := conn.Exec(ctx, "INSERT INTO user(name, age) VALUES (?, ?)", "zhang san", 20)
//
// The RawConnection interface allows alternative backends while keeping the
// pool itself driver-agnostic.
package dbconn
