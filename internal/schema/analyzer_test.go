package schema_test

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"dbdump/internal/dialect"
	"dbdump/internal/schema"
)

func TestAnalyzeOk(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.SCHEMATA").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"SCHEMA_NAME"}).AddRow("shop"))

	mock.ExpectQuery("TABLE_TYPE = 'BASE TABLE'").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).
			AddRow("orders").
			AddRow("users"))

	colHeader := []string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "EXTRA", "ORDINAL_POSITION"}
	mock.ExpectQuery("FROM information_schema.COLUMNS").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows(colHeader).
			AddRow("orders", "id", "int", "int(11)", "NO", nil, "auto_increment", 1).
			AddRow("orders", "user_id", "int", "int(11)", "NO", nil, "", 2).
			AddRow("users", "id", "int", "int(11)", "NO", nil, "auto_increment", 1).
			AddRow("users", "name", "varchar", "varchar(50)", "NO", nil, "", 2).
			AddRow("users", "bio", "json", "json", "YES", nil, "", 3))

	mock.ExpectQuery("FROM information_schema.STATISTICS").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "INDEX_NAME", "COLUMN_NAME", "SEQ_IN_INDEX"}).
			AddRow("orders", "PRIMARY", "id", 1).
			AddRow("users", "PRIMARY", "id", 1).
			AddRow("users", "uq_users_name", "name", 1))

	mock.ExpectQuery("FROM information_schema.KEY_COLUMN_USAGE").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}).
			AddRow("orders", "user_id", "users", "id"))

	mock.ExpectQuery("TABLE_TYPE = 'VIEW'").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}))
	mock.ExpectQuery("ROUTINE_TYPE = 'PROCEDURE'").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"ROUTINE_NAME"}))
	mock.ExpectQuery("ROUTINE_TYPE = 'FUNCTION'").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"ROUTINE_NAME"}))
	mock.ExpectQuery("FROM information_schema.TRIGGERS").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TRIGGER_NAME"}))

	s, err := schema.Analyze(db, dialect.GetDialect("mysql"), "shop")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, "shop", s.Name)
	require.Len(t, s.Tables, 2)

	// orders references users, so users must be emitted first.
	require.Equal(t, "users", s.Tables[0].Name)
	require.Equal(t, "orders", s.Tables[1].Name)

	users := s.Tables[0]
	require.Equal(t, []string{"id", "name", "bio"}, users.ColumnNames())
	require.Equal(t, schema.KindInteger, users.Columns[0].Kind)
	require.Equal(t, schema.KindString, users.Columns[1].Kind)
	require.Equal(t, schema.KindJSON, users.Columns[2].Kind)
	require.True(t, users.Columns[0].IsAutoInc)
	require.True(t, users.Columns[2].IsNullable)
	require.Equal(t, []string{"id"}, users.PrimaryKey)
	require.Len(t, users.UniqueKeys, 1)
	require.Equal(t, []string{"name"}, users.UniqueKeys[0].Columns)

	orders := s.Tables[1]
	require.Equal(t, []string{"users"}, orders.Dependencies)
	require.Len(t, orders.ForeignKeys, 1)
	require.Equal(t, "users", orders.ForeignKeys[0].RefTable)
}

func TestAnalyzeSchemaNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.SCHEMATA").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"SCHEMA_NAME"}))

	_, err = schema.Analyze(db, dialect.GetDialect("mysql"), "missing")
	require.ErrorIs(t, err, schema.ErrSchemaNotFound)
}

func TestAnalyzePermissionDenied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.SCHEMATA").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"SCHEMA_NAME"}).AddRow("shop"))
	mock.ExpectQuery("TABLE_TYPE = 'BASE TABLE'").
		WithArgs("shop").
		WillReturnError(&mysql.MySQLError{Number: 1044, Message: "Access denied for user"})

	_, err = schema.Analyze(db, dialect.GetDialect("mysql"), "shop")
	require.ErrorIs(t, err, schema.ErrPermissionDenied)
}

func TestAnalyzeConnectionError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.SCHEMATA").
		WithArgs("shop").
		WillReturnError(&mysql.MySQLError{Number: 2006, Message: "server has gone away"})

	_, err = schema.Analyze(db, dialect.GetDialect("mysql"), "shop")
	require.ErrorIs(t, err, schema.ErrConnection)
}
