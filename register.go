package sqldialect

import (
	"sync"

	"github.com/coregx/sqldialect/internal/dialects"
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
)

var (
	registerOnce        sync.Once
	registerGenericOnce sync.Once
)

// Register makes the MySQL dialect available in the default registry. It must
// run before any lookup of "mysql"; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		RegisterInto(dialects.Default())
	})
}

// RegisterGeneric makes the reference dialect available in the default
// registry. It executes through a database/sql driver named "sqlite", which
// this package does not link; import the generic subpackage to get both.
func RegisterGeneric() {
	registerGenericOnce.Do(func() {
		dialects.Default().Register(dialects.NewGenericDialect())
	})
}

// RegisterInto registers the MySQL dialect in r, for callers that pass an
// explicit registry instead of the default one. Registering twice replaces
// the earlier entry.
func RegisterInto(r *Registry) {
	r.Register(dialects.NewMySQLDialect())
}
