package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "stacksevents:ownership:"
	genPrefix = "stacksevents:ownership-gen:"
)

// genTTL outlives any single lookup so a generation never resets under a
// reader still holding it.
const genTTL = 24 * time.Hour

// negative marks a cached "owns nothing" result.
const negative = "null"

// putIfCurrent writes the field only while the address generation matches.
var putIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// RedisCache keeps one hash per address, one field per event filter, so
// invalidating an address is a single DEL plus a generation bump.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

type cachedTicket struct {
	ID              domain.TicketID `json:"id"`
	EventID         string          `json:"event_id"`
	Owner           string          `json:"owner"`
	PurchasedAt     time.Time       `json:"purchased_at"`
	PriceAtPurchase int64           `json:"price_at_purchase"`
	Currency        string          `json:"currency"`
	Transferable    bool            `json:"transferable"`
	PurchaseTxID    string          `json:"purchase_tx_id"`
}

func (c *RedisCache) Get(ctx context.Context, addr domain.Address, eventID domain.EventID) (*models.Ticket, bool, error) {
	raw, err := c.client.HGet(ctx, keyPrefix+addr.String(), slot(eventID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read ownership cache: %w", err)
	}
	if raw == negative {
		return nil, true, nil
	}
	var ct cachedTicket
	if err := json.Unmarshal([]byte(raw), &ct); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Put.
		return nil, false, nil
	}
	return &models.Ticket{
		ID:              ct.ID,
		EventID:         domain.EventID(ct.EventID),
		Owner:           domain.Address(ct.Owner),
		PurchasedAt:     ct.PurchasedAt,
		PriceAtPurchase: ct.PriceAtPurchase,
		Currency:        ct.Currency,
		Transferable:    ct.Transferable,
		PurchaseTxID:    domain.TxID(ct.PurchaseTxID),
	}, true, nil
}

// Generation returns addr's invalidation generation, 0 when never invalidated.
func (c *RedisCache) Generation(ctx context.Context, addr domain.Address) (uint64, error) {
	gen, err := c.client.Get(ctx, genPrefix+addr.String()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read ownership generation: %w", err)
	}
	return gen, nil
}

// Put stores t unless addr was invalidated after gen was taken. The check
// and the write run as one script.
func (c *RedisCache) Put(ctx context.Context, addr domain.Address, eventID domain.EventID, t *models.Ticket, gen uint64) error {
	value := negative
	if t != nil {
		raw, err := json.Marshal(cachedTicket{
			ID:              t.ID,
			EventID:         string(t.EventID),
			Owner:           string(t.Owner),
			PurchasedAt:     t.PurchasedAt,
			PriceAtPurchase: t.PriceAtPurchase,
			Currency:        t.Currency,
			Transferable:    t.Transferable,
			PurchaseTxID:    string(t.PurchaseTxID),
		})
		if err != nil {
			return fmt.Errorf("encode ownership cache entry: %w", err)
		}
		value = string(raw)
	}

	keys := []string{keyPrefix + addr.String(), genPrefix + addr.String()}
	err := putIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatUint(gen, 10), slot(eventID), value, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("write ownership cache: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateAddress(ctx context.Context, addr domain.Address) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyPrefix+addr.String())
	pipe.Incr(ctx, genPrefix+addr.String())
	pipe.Expire(ctx, genPrefix+addr.String(), genTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate ownership cache: %w", err)
	}
	return nil
}
