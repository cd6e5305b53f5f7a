package tenant

import "errors"

var (
	// ErrTenantNotFound means the tenant has no row in the meta-database.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotActive means the tenant exists but is suspended or
	// still provisioning.
	ErrTenantNotActive = errors.New("tenant is not active")

	// ErrMaxPoolLimit means the manager holds its configured maximum of
	// open tenant pools and none could be evicted.
	ErrMaxPoolLimit = errors.New("max tenant pool limit reached")
)
