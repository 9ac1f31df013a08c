package config

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CourseListKey returns the cache key for a rendered course list response.
// userScope is the requesting user's ID or "anonymous"; rawQuery is the
// normalized query string. The pair is hashed so keys stay bounded regardless
// of filter combinations.
func (r *CacheKeyStruct) CourseListKey(userScope, rawQuery string) string {
	sum := sha1.Sum([]byte(userScope + "|" + rawQuery))
	return fmt.Sprintf("courses:list:%s", hex.EncodeToString(sum[:]))
}

// CourseListPattern matches every cached course list response.
// Used for pattern invalidation on course writes.
func (r *CacheKeyStruct) CourseListPattern() string {
	return "courses:list:*"
}

// TopCoursesKey returns the fixed cache key for the top-courses response.
func (r *CacheKeyStruct) TopCoursesKey() string {
	return "courses:top"
}

// UserNotificationChannel returns the Redis PubSub channel name for a user's
// live notification stream.
func (r *CacheKeyStruct) UserNotificationChannel(userID int) string {
	return fmt.Sprintf("user:%d:notifications", userID)
}

var CacheKey = NewCacheKeyStruct()
