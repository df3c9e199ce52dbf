package cache

import "fmt"

// Cache key kinds. Each kind owns a namespace so keys for different entity
// shapes can never collide.
const (
	KindReport         = "reports"
	KindReportComments = "reportComments"
	KindCurrentUser    = "currentuser"
)

// authTokensKey is the shared hash bucket holding every user's token pair,
// with the user id as the hash field.
const authTokensKey = "authTokens"

// GenerateKey builds the cache key for an entity. The result is a pure
// function of (kind, id): repeated calls for the same logical entity collide
// intentionally, which is what gives writes overwrite-on-update semantics.
func GenerateKey(kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}
