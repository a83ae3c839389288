// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "tripetl/internal/storage/all"
//
// after which storage.New accepts the kinds "postgres", "mssql", "mysql" and
// "sqlite".
package all

import (
	_ "tripetl/internal/storage/mssql"
	_ "tripetl/internal/storage/mysql"
	_ "tripetl/internal/storage/postgres"
	_ "tripetl/internal/storage/sqlite"
)
