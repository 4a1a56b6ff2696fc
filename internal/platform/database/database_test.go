package database

import (
	"context"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"todo-api/internal/config"
)

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		db   string
	}{
		{"missing parseTime", "todo:pw@tcp(db:3306)/todos", "todos"},
		{"parseTime false", "todo:pw@tcp(db:3306)/todos?parseTime=false&charset=utf8mb4", "todos"},
		{"already set", "root:@tcp(127.0.0.1:3306)/todo_api?parseTime=true&loc=UTC", "todo_api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := MySQLDSN(tt.raw)
			if err != nil {
				t.Fatalf("MySQLDSN() unexpected error: %v", err)
			}
			parsed, err := mysqldriver.ParseDSN(dsn)
			if err != nil {
				t.Fatalf("ParseDSN(%q) unexpected error: %v", dsn, err)
			}
			if !parsed.ParseTime {
				t.Errorf("ParseTime = false in %q", dsn)
			}
			if parsed.DBName != tt.db || parsed.Addr == "" {
				t.Errorf("dsn %q lost db or addr: %+v", dsn, parsed)
			}
			if parsed.Loc != time.UTC {
				t.Errorf("Loc = %v, want UTC", parsed.Loc)
			}
		})
	}
}

func TestMySQLDSNInvalid(t *testing.T) {
	if _, err := MySQLDSN("tcp(db:3306)todos?parseTime=true"); err == nil {
		t.Error("MySQLDSN() expected error for malformed dsn")
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), config.DatabaseConfig{Driver: "oracle", URL: "x"}); err == nil {
		t.Error("New() expected error for unknown driver")
	}
}
