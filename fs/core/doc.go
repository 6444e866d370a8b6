// Package core defines the filesystem contract used by the file-backed
// document store.
//
// The contract is narrow: a document store reads and writes
// whole files, creates parent directories, removes and renames files, lists
// a single directory and scopes itself to a root with Chroot. Providers live
// in sibling packages (see fs/billy) so the store can run against a real
// disk or a purely in-memory tree without changing a line.
//
//	fsys := billy.NewMemory()
//	if err := fsys.MkdirAll("settings", 0o755); err != nil {
//	    return err
//	}
//	return fsys.WriteFile("settings/profile.json", data, 0o644)
package core
