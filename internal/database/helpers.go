package database

import (
	"context"
	"io/fs"
	"os"
	"time"

	"akreditasi-jurnal/migrations"
)

// getContext creates a context with timeout
func getContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// MigrationsFS returns the embedded migrations, or the directory at path when one is configured
func MigrationsFS(path string) fs.FS {
	if path == "" {
		return migrations.FS
	}
	return os.DirFS(path)
}
