package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RoomDocumentKey returns the cache key for a room's full document
func (r *CacheKeyStruct) RoomDocumentKey(roomID string) string {
	return fmt.Sprintf("room:%s:doc", roomID)
}

// RoomGenerationKey returns the key of a room's mutation counter, which
// guards RoomDocumentKey against stale writes
func (r *CacheKeyStruct) RoomGenerationKey(roomID string) string {
	return fmt.Sprintf("room:%s:gen", roomID)
}

// RevokedTokenKey returns the cache key marking a token id as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
