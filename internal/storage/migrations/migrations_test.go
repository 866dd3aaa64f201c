package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_CreatesLocalStorageTable(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	for _, table := range []string{"local_storage", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Run("fresh database", func(t *testing.T) {
		db := openTestDB(t)
		if err := Check(db); err != ErrUnversioned {
			t.Fatalf("Check() = %v, want ErrUnversioned", err)
		}
	})

	t.Run("after Up, twice", func(t *testing.T) {
		db := openTestDB(t)
		for i := 0; i < 2; i++ {
			if err := Up(db); err != nil {
				t.Fatalf("Up() #%d failed: %v", i+1, err)
			}
		}
		if err := Check(db); err != nil {
			t.Errorf("Check() = %v, want nil", err)
		}
	})
}

func TestStatus_Err(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr bool
	}{
		{name: "current", status: Status{Version: 1, Latest: 1}},
		{name: "behind", status: Status{Version: 1, Latest: 2}, wantErr: true},
		{name: "ahead", status: Status{Version: 3, Latest: 2}, wantErr: true},
		{name: "dirty", status: Status{Version: 1, Latest: 1, Dirty: true}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.status.Err(); (err != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	v, err := Latest()
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if v != 1 {
		t.Errorf("Latest() = %d, want 1", v)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
