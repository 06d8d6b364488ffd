package cache

import (
	"github.com/crm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DelegationStoreFactory creates delegation stores based on configuration
type DelegationStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// DelegationStoreFactoryOption is a functional option for configuring the factory
type DelegationStoreFactoryOption func(*DelegationStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) DelegationStoreFactoryOption {
	return func(f *DelegationStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) DelegationStoreFactoryOption {
	return func(f *DelegationStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDelegationStoreFactory creates a new factory
func NewDelegationStoreFactory(cfg config.RedisConfig, opts ...DelegationStoreFactoryOption) *DelegationStoreFactory {
	f := &DelegationStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates a Redis-backed store, falling back to in-memory when
// Redis is unreachable and fallback is allowed.
func (f *DelegationStoreFactory) CreateStore() (DelegationStore, error) {
	store, err := NewRedisDelegationStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis delegation store",
			zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, using in-memory delegation store",
		zap.Error(err))
	return NewInMemoryDelegationStore(), nil
}
