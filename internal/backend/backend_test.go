package backend

import (
	"path/filepath"
	"testing"

	"grana/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	tests := []struct {
		t    Type
		want bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{Type("sheets"), false},
		{Type(""), false},
	}
	for _, tt := range tests {
		if got := tt.t.IsValid(); got != tt.want {
			t.Errorf("Type(%q).IsValid() = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestFactoryCreateMemory(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.Create(&config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Store == nil {
		t.Fatal("Create() returned nil store")
	}
	if res.Cleanup != nil {
		t.Fatal("memory backend should not need cleanup")
	}
}

func TestFactoryCreateSQLite(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.Create(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "grana.db"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Store == nil {
		t.Fatal("Create() returned nil store")
	}
	if res.Cleanup == nil {
		t.Fatal("sqlite backend must provide cleanup")
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestFactoryCreateRejectsUnknown(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.Create(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := f.Create(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
