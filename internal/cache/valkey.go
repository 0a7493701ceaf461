package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr            string
	Password        string
	UsersHashKey    string
	AvailabilityTTL time.Duration
}

type ValkeyClient struct {
	client          *redis.Client
	usersHashKey    string
	availabilityTTL time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ttl := cfg.AvailabilityTTL
	if ttl == 0 {
		ttl = time.Minute
	}

	return &ValkeyClient{
		client:          rdb,
		usersHashKey:    cfg.UsersHashKey,
		availabilityTTL: ttl,
	}, nil
}

// GetCustomerIDByAuth looks up a customer id by email + password hash in the
// auth hash, used as the Basic Auth fast path.
func (v *ValkeyClient) GetCustomerIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	customerIDStr, err := v.client.HGet(ctx, v.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("customer not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	customerID, err := strconv.ParseInt(customerIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid customer ID in cache: %w", err)
	}

	return customerID, nil
}

// SetCustomerAuth stores an auth entry so the next Basic Auth check skips the
// database.
func (v *ValkeyClient) SetCustomerAuth(ctx context.Context, email, passwordHash string, customerID int64) error {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))
	return v.client.HSet(ctx, v.usersHashKey, cacheKey, strconv.FormatInt(customerID, 10)).Err()
}

func availabilityKey(facilityID int64, date string) string {
	return fmt.Sprintf("availability:%d:%s", facilityID, date)
}

// GetAvailabilityRaw returns the cached availability payload as raw JSON to
// avoid an unmarshal/marshal round trip on cache hits.
func (v *ValkeyClient) GetAvailabilityRaw(ctx context.Context, facilityID int64, date string) ([]byte, error) {
	data, err := v.client.Get(ctx, availabilityKey(facilityID, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("availability not cached")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetAvailability caches an availability response with the configured TTL.
// Errors are returned for logging only; callers treat the cache as optional.
func (v *ValkeyClient) SetAvailability(ctx context.Context, facilityID int64, date string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal availability payload: %w", err)
	}
	return v.client.Set(ctx, availabilityKey(facilityID, date), data, v.availabilityTTL).Err()
}

// InvalidateAvailability drops every cached day touched by a booking window.
func (v *ValkeyClient) InvalidateAvailability(ctx context.Context, facilityID int64, start, end time.Time) error {
	keys := []string{}
	for day := start.Truncate(24 * time.Hour); !day.After(end); day = day.AddDate(0, 0, 1) {
		keys = append(keys, availabilityKey(facilityID, day.Format("2006-01-02")))
	}
	if len(keys) == 0 {
		return nil
	}
	return v.client.Del(ctx, keys...).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
