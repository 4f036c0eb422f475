// Package migrations applies the embedded schema files in filename order.
package migrations

import "embed"

// PostgresFS holds the runs/signals schema for PostgreSQL.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the bar timeseries schema for ClickHouse.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
