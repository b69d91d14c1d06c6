// Package db embeds the record replica schema.
package db

import _ "embed"

// Schema contains the DDL statements for the record replica tables.
//
//go:embed migrations/001_schema.sql
var Schema string
