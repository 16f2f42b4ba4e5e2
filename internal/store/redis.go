package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"storefront/internal/models"
)

// Redis persists records as JSON blobs with index sets per record kind.
// An item's stock lives in a dedicated integer key next to the blob so the
// conditional decrement can run as a single server-side script.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func itemKey(id string) string          { return "item:" + id }
func stockKey(id string) string         { return "item:" + id + ":stock" }
func orderKey(id string) string         { return "order:" + id }
func contactKey(id string) string       { return "contact:" + id }
func userKey(id string) string          { return "user:" + id }
func userNameKey(name string) string    { return "user:name:" + name }
func tokenKey(key string) string        { return "token:" + key }
func tokenUserKey(userID string) string { return "token:user:" + userID }

// decrementScript fails with -1 when stock is insufficient and -2 when the
// item is unknown, otherwise returns the remaining stock.
var decrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -2
end
local stock = tonumber(redis.call('GET', KEYS[1]))
local qty = tonumber(ARGV[1])
if stock < qty then
	return -1
end
return redis.call('DECRBY', KEYS[1], qty)
`)

func (s *Redis) SaveItem(ctx context.Context, item *models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, itemKey(item.ID), data, 0)
	pipe.Set(ctx, stockKey(item.ID), item.Stock, 0)
	pipe.SAdd(ctx, "items", item.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) GetItem(ctx context.Context, id string) (*models.Item, error) {
	pipe := s.client.Pipeline()
	blobCmd := pipe.Get(ctx, itemKey(id))
	stockCmd := pipe.Get(ctx, stockKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var item models.Item
	if err := json.Unmarshal([]byte(blobCmd.Val()), &item); err != nil {
		return nil, err
	}
	// The stock key is the source of truth; the blob may lag behind.
	stock, err := stockCmd.Int()
	if err != nil {
		return nil, err
	}
	item.Stock = stock
	return &item, nil
}

func (s *Redis) ListItems(ctx context.Context) ([]*models.Item, error) {
	ids, err := s.client.SMembers(ctx, "items").Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}
	pipe := s.client.Pipeline()
	blobCmds := make([]*redis.StringCmd, len(ids))
	stockCmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		blobCmds[i] = pipe.Get(ctx, itemKey(id))
		stockCmds[i] = pipe.Get(ctx, stockKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	items := make([]*models.Item, 0, len(ids))
	for i := range ids {
		data, err := blobCmds[i].Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var item models.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		if stock, err := stockCmds[i].Int(); err == nil {
			item.Stock = stock
		}
		items = append(items, &item)
	}
	return items, nil
}

func (s *Redis) DecrementStock(ctx context.Context, id string, qty int) (*models.Item, error) {
	res, err := decrementScript.Run(ctx, s.client, []string{stockKey(id)}, qty).Int()
	if err != nil {
		return nil, fmt.Errorf("stock decrement script: %w", err)
	}
	switch res {
	case -1:
		return nil, ErrNotEnoughStock
	case -2:
		return nil, ErrNotFound
	}
	return s.GetItem(ctx, id)
}

func (s *Redis) RestoreStock(ctx context.Context, id string, qty int) error {
	exists, err := s.client.Exists(ctx, stockKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return s.client.IncrBy(ctx, stockKey(id), int64(qty)).Err()
}

func (s *Redis) SaveOrder(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, orderKey(order.ID), data, 0)
	pipe.SAdd(ctx, "orders", order.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	data, err := s.client.Get(ctx, orderKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var order models.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Redis) ListOrders(ctx context.Context) ([]*models.Order, error) {
	ids, err := s.client.SMembers(ctx, "orders").Result()
	if err != nil {
		return nil, err
	}
	orders := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.GetOrder(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Redis) SaveContact(ctx context.Context, contact *models.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, contactKey(contact.ID), data, 0)
	pipe.SAdd(ctx, "contacts", contact.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	ids, err := s.client.SMembers(ctx, "contacts").Result()
	if err != nil {
		return nil, err
	}
	contacts := make([]*models.Contact, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, contactKey(id)).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var contact models.Contact
		if err := json.Unmarshal([]byte(data), &contact); err != nil {
			return nil, err
		}
		contacts = append(contacts, &contact)
	}
	return contacts, nil
}

func (s *Redis) SaveUser(ctx context.Context, user *models.User) error {
	existing, err := s.client.Get(ctx, userNameKey(user.Username)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil && existing != user.ID {
		return ErrDuplicate
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, userNameKey(user.Username), user.ID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := s.client.Get(ctx, userNameKey(username)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	data, err := s.client.Get(ctx, userKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Redis) SaveToken(ctx context.Context, token *models.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, tokenKey(token.Key), data, 0)
	pipe.Set(ctx, tokenUserKey(token.UserID), token.Key, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) GetTokenByKey(ctx context.Context, key string) (*models.Token, error) {
	data, err := s.client.Get(ctx, tokenKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var token models.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *Redis) GetTokenByUser(ctx context.Context, userID string) (*models.Token, error) {
	key, err := s.client.Get(ctx, tokenUserKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetTokenByKey(ctx, key)
}
