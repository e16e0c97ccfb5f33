// Package db embeds the storefront DDL.
package db

import _ "embed"

// Schema creates every storefront table. Statements are idempotent so it can
// run on each start.
//
//go:embed migrations/001_schema.sql
var Schema string
