// Package all registers every storage backend with the storage factory.
// Commands blank-import it so the configured kind decides at runtime.
package all

import (
	_ "github.com/linguini1/coopScraper/internal/storage/mssql"
	_ "github.com/linguini1/coopScraper/internal/storage/postgres"
	_ "github.com/linguini1/coopScraper/internal/storage/sqlite"
)
