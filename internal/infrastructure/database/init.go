package database

import "github.com/google/wire"

// ProviderSet exposes the connection pool constructor to Wire.
var ProviderSet = wire.NewSet(
	NewPgxPool,
)
