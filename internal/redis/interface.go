package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories can accept either a
// real client or the miniredis-backed one from testutils.
type Client interface {
	redis.UniversalClient
}
