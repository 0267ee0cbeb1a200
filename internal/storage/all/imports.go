// Package all wires every built-in storage backend into the storage factory.
// Import it for side effects:
//
//	import _ "flightdb/internal/storage/all"
//
// after which storage.New accepts the kinds "json", "sqlite", "postgres",
// "mssql" and "mysql". A binary that needs fewer backends can blank-import
// only the packages it wants instead.
package all

import (
	_ "flightdb/internal/storage/jsonfile"
	_ "flightdb/internal/storage/mssql"
	_ "flightdb/internal/storage/mysql"
	_ "flightdb/internal/storage/postgres"
	_ "flightdb/internal/storage/sqlite"
)
