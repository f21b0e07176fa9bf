// Package db ships the MySQL migrations compiled into the binary.
package db

import (
	"embed"
	"io/fs"
)

//go:embed mysql/*.sql
var files embed.FS

// Migrations returns the MySQL migrations rooted at the migration directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(files, "mysql")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return sub
}
