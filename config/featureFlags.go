package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// UseRedisSessionStore switches the staged-import session store from the
// in-process map to redis, so preview and confirm may land on different
// instances.
//
// Set via env:
// - IMPORT_SESSION_STORE=redis
func UseRedisSessionStore() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("IMPORT_SESSION_STORE")))
	return v == "redis"
}

// ImportSessionTTL is how long a staged import stays confirmable.
//
// Set via env:
// - IMPORT_SESSION_TTL_MINUTES (default 30)
func ImportSessionTTL() time.Duration {
	v := strings.TrimSpace(os.Getenv("IMPORT_SESSION_TTL_MINUTES"))
	if v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return 30 * time.Minute
}
