package connparams

// MySQLTemplate is the connection URL shape for MySQL.
const MySQLTemplate = "mysql://{host}:{port}/{database}"

// MySQLDefaultPort is used when no port is supplied.
const MySQLDefaultPort = 3306

// NewMySQLBuilder returns the URL builder for MySQL.
func NewMySQLBuilder() *TemplateBuilder {
	return NewTemplateBuilder("MySQL", "mysql", MySQLTemplate,
		Param(Host, String),
		Param(Port, Number, WithDefault(MySQLDefaultPort)),
		Param(Database, String),
		Param(Username, String, Optional()),
		Param(Password, String, Optional(), Sensitive()),
	)
}

// NewSQLiteBuilder returns a URL builder for file based SQLite databases,
// used by the generic reference dialect.
func NewSQLiteBuilder() *TemplateBuilder {
	return NewTemplateBuilder("SQLite", "sqlite", "file:{database}",
		Param(Database, String),
	)
}
