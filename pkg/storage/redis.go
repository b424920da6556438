package storage

import (
	"context"
	"time"

	"rembot/pkg/errs"

	"github.com/cenkalti/backoff/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	base "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const hiddenContentKey ctxKey = "is_not_loggable"

// WithHiddenContent keeps stored values out of debug logs for calls made with ctx.
func WithHiddenContent(ctx context.Context) context.Context {
	return context.WithValue(ctx, hiddenContentKey, true)
}

func isHidden(ctx context.Context) bool {
	hidden, _ := ctx.Value(hiddenContentKey).(bool)
	return hidden
}

type RedisConfig struct {
	Addr        string        `envconfig:"REDIS_ADDR"`
	Pass        string        `envconfig:"REDIS_PASS"`
	DB          int           `envconfig:"REDIS_DB" default:"0"`
	PingTimeout time.Duration `envconfig:"REDIS_PING_TIMEOUT" default:"1m"`
}

func (c *RedisConfig) Validate() *errs.Multi {
	e := errs.NewMulti()

	if c.Addr == "" {
		e.Err("REDIS_ADDR cannot be empty")
	}
	if c.DB < 0 {
		e.Errf("REDIS_DB must not be negative, got %d", c.DB)
	}

	return e
}

func LoadConfig() (cfg *RedisConfig, err error) {
	cfg = new(RedisConfig)
	err = envconfig.Process("redis", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load redis config")
	}

	return cfg, nil
}

type RedisClient struct {
	baseClient *base.Client
}

func NewRedisClient(cfg *RedisConfig) (*RedisClient, error) {
	validationErr := cfg.Validate()
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	rdb := base.NewClient(&base.Options{
		Addr:     cfg.Addr,
		Password: cfg.Pass,
		DB:       cfg.DB,
	})

	err := checkRedis(rdb, cfg.PingTimeout)
	if err != nil {
		logrus.Errorf("failed to ping redis %q", cfg.Addr)
		return nil, err
	}

	logrus.Infof("ping to redis %q is successful", cfg.Addr)
	return &RedisClient{baseClient: rdb}, nil
}

func checkRedis(cl *base.Client, maxElapsed time.Duration) error {
	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		err := cl.Ping(ctx).Err()
		if err != nil {
			logrus.Warnf("redis is not reachable yet: %v", err)
		}

		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	err := backoff.Retry(operation, policy)
	if err != nil {
		return errors.Wrap(err, "failed to connect to redis")
	}

	return nil
}

func (c *RedisClient) Read(ctx context.Context, key string) (raw []byte, found bool, err error) {
	log := logrus.WithContext(ctx)

	raw, err = c.baseClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, base.Nil) {
			log.Debugf("nothing found in redis under key %q", key)
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "failed to get data from redis under key %q", key)
	}

	if isHidden(ctx) {
		log.Debugf("successfully read data from redis under key %q", key)
	} else {
		log.Debugf("successfully read data %q from redis under key %q", string(raw), key)
	}

	return raw, true, nil
}

func (c *RedisClient) Write(ctx context.Context, key string, raw []byte, exp time.Duration) error {
	log := logrus.WithContext(ctx)

	err := c.baseClient.Set(ctx, key, raw, exp).Err()
	if err != nil {
		return errors.Wrapf(err, "failed to write data to redis under key %q", key)
	}

	if isHidden(ctx) {
		log.Debugf("wrote hidden data to redis under key %q", key)
	} else {
		log.Debugf("wrote data %q to redis under key %q", string(raw), key)
	}

	return nil
}

func (c *RedisClient) Delete(ctx context.Context, key string) error {
	err := c.baseClient.Del(ctx, key).Err()
	if err != nil {
		return errors.Wrapf(err, "failed to delete data from redis under key %q", key)
	}

	logrus.WithContext(ctx).Debugf("deleted data from redis under key %q", key)
	return nil
}

func (c *RedisClient) Load(ctx context.Context, key string, target interface{}) (found bool, err error) {
	rawData, found, err := c.Read(ctx, key)
	if err != nil {
		return false, err
	}

	if !found {
		return false, nil
	}

	return true, decode(rawData, target)
}

func (c *RedisClient) Save(ctx context.Context, key string, data interface{}, validity time.Duration) error {
	rawBytes, err := encode(data)
	if err != nil {
		return err
	}

	return c.Write(ctx, key, rawBytes, validity)
}

func (c *RedisClient) FindKeys(ctx context.Context, pattern string) (keys []string, err error) {
	var cursor uint64
	for {
		var batch []string
		batch, cursor, err = c.baseClient.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to find keys in redis by pattern %q", pattern)
		}

		keys = append(keys, batch...)
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (c *RedisClient) Close() error {
	return c.baseClient.Close()
}
