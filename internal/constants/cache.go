package constants

import "time"

// Cache key prefixes. CacheBuilder joins prefix and key with a colon.
const (
	UserCachePrefix     = "user"
	AudienceCachePrefix = "audience"
	RevokedTokenPrefix  = "revoked"

	UserCacheExpiry     = 7 * 24 * time.Hour
	AudienceCacheExpiry = 10 * time.Minute
)
