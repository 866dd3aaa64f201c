package app

import (
	"dd-go/internal/dd"
	"dd-go/internal/storage"
)

// openRawStorage opens local storage without the sealing layer, to inspect
// what is actually on disk.
func openRawStorage(path string) (dd.LocalStorage, error) {
	return storage.NewSQLiteStorage(path, nil)
}
