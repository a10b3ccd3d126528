package config

// MountOptions holds high-level settings for the FUSE preview mount.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // fuse debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}

// StoreOptions selects the snapshot store backend.
type StoreOptions struct {
	// Driver is one of memory, file, sqlite3, mysql, postgres
	Driver string
	// DSN is the database connection string, or the directory for the file driver
	DSN string
}
