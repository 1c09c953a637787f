package authstate

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/emberlock/authstate/credstore"
)

// Builder assembles a [Manager]. Chain the With options and finish with
// [Builder.Build]; a builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	kv     credstore.KV

	auditSink AuditSink

	built bool
}

// New returns a builder loaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the credential store with Redis. Keys are namespaced
// under Config.Store.Namespace.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithKV backs the credential store with an arbitrary [credstore.KV].
// Mutually exclusive with WithRedis.
func (b *Builder) WithKV(kv credstore.KV) *Builder {
	b.kv = kv
	return b
}

// WithAuditSink sets the destination for audit events. Audit must also be
// enabled in config for events to flow.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the credential store, and
// returns a manager still in [StatusUnknown]. Call [Manager.Restore] to
// settle the initial state from the persisted session.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis != nil && b.kv != nil {
		return nil, errors.New("WithRedis and WithKV are mutually exclusive")
	}

	kv := b.kv
	if kv == nil {
		if b.redis != nil {
			kv = credstore.NewRedisKV(b.redis, cfg.Store.Namespace)
		} else {
			kv = credstore.NewMemoryKV()
		}
	}

	store := credstore.NewStore(kv, credstore.Keys{
		Users:       cfg.Store.UsersKey,
		Session:     cfg.Store.SessionKey,
		ResetPrefix: cfg.Store.ResetPrefix,
	})

	m := &Manager{
		config: cfg,
		store:  store,
	}
	m.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	m.metrics = NewMetrics(cfg.Metrics)
	m.state = State{Status: StatusUnknown}

	b.built = true

	return m, nil
}

// MustBuild is Build for wiring code that treats a bad configuration as a
// programming error.
func (b *Builder) MustBuild() *Manager {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// BuildAndRestore builds the manager and immediately settles the initial
// state from the persisted session.
func (b *Builder) BuildAndRestore(ctx context.Context) (*Manager, error) {
	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	m.Restore(ctx)
	return m, nil
}
