// Package generic wires the reference dialect to the pure-Go SQLite driver.
//
// The root package links only the MySQL driver. Programs that run the
// reference dialect import this package and call Register:
//
//	generic.Register()
//	db, err := sqldialect.Open("generic", params)
package generic

import (
	"github.com/coregx/sqldialect"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Register makes the reference dialect available in the default registry.
func Register() {
	sqldialect.RegisterGeneric()
}
