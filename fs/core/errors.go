package core

import (
	"io/fs"
)

// Sentinels shared by every storage backend. Object stores translate their
// service errors into these so callers can test with errors.Is regardless
// of where documents live.
var (
	ErrNotExist   = fs.ErrNotExist
	ErrPermission = fs.ErrPermission
)
