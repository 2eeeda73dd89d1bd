package dialect

// GetDialect returns the Dialect implementation for a driver name. mysql and
// mariadb share the one supported wire dialect; anything else is rejected
// upstream when the connection is opened.
func GetDialect(driver string) Dialect {
	return &MysqlDialect{}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
