package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// generationTTL bounds how long a room's generation counter outlives its
// last mutation. It must exceed the duration of any single store read.
const generationTTL = 24 * time.Hour

// setIfGeneration writes the document only while the room's generation still
// equals the one observed before the store read began.
//
// KEYS[1] document, KEYS[2] generation; ARGV[1] observed generation,
// ARGV[2] document, ARGV[3] ttl in milliseconds.
var setIfGeneration = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// bumpGeneration drops the document and moves the generation forward, so
// reads that started before the mutation cannot repopulate it.
//
// KEYS[1] document, KEYS[2] generation; ARGV[1] generation ttl in milliseconds.
var bumpGeneration = redis.NewScript(`
redis.call("DEL", KEYS[1])
local gen = redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return gen
`)

// RoomCache keeps recently read room documents in Redis so polling clients
// do not hit the store on every request. It is best effort: failures are
// logged and reads fall through to the store. A nil *RoomCache is a no-op.
//
// Each room carries a generation counter that every mutation increments.
// Readers capture it before loading from the store and Set only succeeds if
// it has not moved, so a stale document never outlives an invalidation.
type RoomCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRoomCache creates a RoomCache. A non-positive ttl disables caching.
func NewRoomCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RoomCache {
	return &RoomCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "room_cache").Logger(),
	}
}

func (c *RoomCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get returns the cached room, if present.
func (c *RoomCache) Get(ctx context.Context, id uuid.UUID) (*model.Room, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, config.CacheKey.RoomDocumentKey(id.String())).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("room_id", id.String()).Msg("Room cache read failed")
		}
		return nil, false
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		c.log.Warn().Err(err).Str("room_id", id.String()).Msg("Discarding undecodable cached room")
		c.Invalidate(ctx, id)
		return nil, false
	}
	if room.Players == nil {
		room.Players = make(map[uuid.UUID]*model.Player)
	}
	return &room, true
}

// Generation returns the room's current generation, to be passed to Set
// after the store read. An empty string means the cache is unavailable and
// Set will not write.
func (c *RoomCache) Generation(ctx context.Context, id uuid.UUID) string {
	if !c.enabled() {
		return ""
	}

	gen, err := c.rdb.Get(ctx, config.CacheKey.RoomGenerationKey(id.String())).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0"
	case err != nil:
		c.log.Warn().Err(err).Str("room_id", id.String()).Msg("Room generation read failed")
		return ""
	}
	return gen
}

// Set stores room for the configured TTL unless the room was mutated since
// gen was read.
func (c *RoomCache) Set(ctx context.Context, room *model.Room, gen string) {
	if !c.enabled() || gen == "" {
		return
	}

	data, err := json.Marshal(room)
	if err != nil {
		c.log.Warn().Err(err).Str("room_id", room.ID.String()).Msg("Room cache encode failed")
		return
	}

	id := room.ID.String()
	keys := []string{config.CacheKey.RoomDocumentKey(id), config.CacheKey.RoomGenerationKey(id)}
	written, err := setIfGeneration.Run(ctx, c.rdb, keys, gen, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn().Err(err).Str("room_id", id).Msg("Room cache write failed")
		return
	}
	if written == 0 {
		c.log.Debug().Str("room_id", id).Msg("Skipped caching room mutated during read")
	}
}

// Invalidate drops the cached document of room id and fences off reads that
// are still in flight.
func (c *RoomCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if !c.enabled() {
		return
	}

	keys := []string{config.CacheKey.RoomDocumentKey(id.String()), config.CacheKey.RoomGenerationKey(id.String())}
	if err := bumpGeneration.Run(ctx, c.rdb, keys, generationTTL.Milliseconds()).Err(); err != nil {
		c.log.Warn().Err(err).Str("room_id", id.String()).Msg("Room cache invalidation failed")
	}
}
