package redis

import "fmt"

// Key prefix for all auth-related data
const keyPrefix = "authcore"

// userKey returns the Redis key for a User record
func userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// userIndexKey returns the Redis key for the SET of all usernames
func userIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}
