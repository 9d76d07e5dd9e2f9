// Package migrations holds the embedded schema for the off-chain index
// (PostgreSQL) and the stats history (ClickHouse), plus runners that
// apply it on startup. Migrations are idempotent.
package migrations

import "embed"

// PostgresFS embeds all PostgreSQL migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds all ClickHouse migration files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
