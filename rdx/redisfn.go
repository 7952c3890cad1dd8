package rdx

import (
	"log"
	"os"
	"time"

	"nova/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// Thin wrappers so call sites stay one-liners. Errors are returned, not
// swallowed; callers on best-effort paths log and move on.

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHget(hash, field string) (string, error) {
	return Conn.HGet(globals.Ctx, hash, field).Result()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(globals.Ctx, hash, field).Result()
}

func Exists(key string) bool {
	n, err := Conn.Exists(globals.Ctx, key).Result()
	if err != nil {
		log.Println("Redis exists error:", err)
		return false
	}
	return n > 0
}

// Publish pushes an event onto a pub/sub channel (kiosk dashboards subscribe
// through the websocket feed, which relays these).
func Publish(channel, payload string) {
	if err := Conn.Publish(globals.Ctx, channel, payload).Err(); err != nil {
		log.Println("Redis publish error:", err)
	}
}
