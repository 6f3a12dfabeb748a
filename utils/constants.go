// File: utils/constants.go
package utils

// DirectoryCachePrefix is the prefix used for Redis provider card keys.
const DirectoryCachePrefix = "directory:provider:"

// Context keys set by the auth middleware.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
)
