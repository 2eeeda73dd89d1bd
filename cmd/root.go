package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/go-sql-driver/mysql"
)

var (
	dsn        string
	cfgFile    string
	schemaName string

	// DB is opened once by the root command and shared by subcommands.
	DB *sql.DB
)

var RootCmd = &cobra.Command{
	Use:   "dbdump",
	Short: "A standalone database dump tool",
	Long: `dbdump connects to a MySQL or MariaDB server, introspects one schema
and writes a portable SQL script (DDL and/or data) that recreates it
elsewhere. No mysqldump binary required.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// DSN precedence: flag > active profile in config > default.
		connStr := viper.GetString("database.dsn")
		if connStr == "" {
			if profile, err := GetActiveDBConfig(); err == nil {
				connStr = profile.DSN
			}
		}
		if connStr == "" {
			return fmt.Errorf("database.dsn is required (via flag or config)")
		}

		var err error
		DB, err = sql.Open("mysql", connStr)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		if err := DB.Ping(); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}

		// Schema precedence: flag > config > the DSN's default database.
		schemaName = viper.GetString("dump.schema")
		if schemaName == "" {
			if err := DB.QueryRow("SELECT DATABASE()").Scan(&schemaName); err != nil {
				return fmt.Errorf("failed to get database name: %w", err)
			}
		}
		if schemaName == "" {
			return fmt.Errorf("no schema selected: pass --schema or include a database in the DSN")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			DB.Close()
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dbdump.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().StringVarP(&schemaName, "schema", "s", "", "Schema to dump (defaults to the DSN database)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("dump.schema", RootCmd.PersistentFlags().Lookup("schema"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the current directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("dbdump")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
