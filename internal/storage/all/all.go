// Package all wires every built-in storage backend into the storage factory.
//
// The package exists purely for side effects: a blank import runs each
// backend's init function, which registers its factory with the storage
// package. Importing this package makes the "postgres", "sqlite", "mysql"
// and "mssql" kinds available to storage.New.
package all

import (
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/mssql"
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/mysql"
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/postgres"
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/sqlite"
)
