// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lizachat/liza/internal/application/chatsession"
	"github.com/lizachat/liza/internal/application/directory"
	"github.com/lizachat/liza/internal/application/session"
	"github.com/lizachat/liza/internal/config"
	"github.com/lizachat/liza/internal/domain/user"
	httphandler "github.com/lizachat/liza/internal/handler/http"
	"github.com/lizachat/liza/internal/infrastructure/httpserver"
	"github.com/lizachat/liza/internal/infrastructure/identity"
	"github.com/lizachat/liza/internal/infrastructure/metrics"
	mongodbinfra "github.com/lizachat/liza/internal/infrastructure/mongodb"
	"github.com/lizachat/liza/internal/infrastructure/redisstore"
	"github.com/lizachat/liza/internal/infrastructure/repository/mongodb"
	"github.com/lizachat/liza/internal/infrastructure/stream"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// Container holds all application dependencies and manages their lifecycle.
// It implements httpserver.HealthChecker for the readiness endpoint.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client
	Verifier    identity.Verifier
	Stream      *stream.Client

	// Stores
	UserStore      *mongodb.MongoUserStore
	ActiveChannels *redisstore.ActiveChannelStore
	RateLimits     *redisstore.RateLimitStore
	TokenProvider  *redisstore.CachedTokenProvider

	// Metrics
	SessionMetrics    *metrics.SessionMetrics
	ResolutionMetrics *metrics.ResolutionMetrics

	// Use cases
	IdentitySyncUC   *session.IdentitySyncUseCase
	ListDirectoryUC  *directory.ListDirectoryUseCase
	SearchUsersUC    *directory.SearchUsersUseCase
	GetUserUC        *directory.GetUserUseCase
	ResolveChannelUC *chatsession.ResolveChannelUseCase
	LeaveChannelUC   *chatsession.LeaveChannelUseCase

	// HTTP handlers
	DirectoryHandler *httphandler.DirectoryHandler
	SessionHandler   *httphandler.SessionHandler
	ChannelHandler   *httphandler.ChannelHandler
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupMetrics()

	if err := c.setupStores(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup stores: %w", err)
	}

	c.setupUseCases()
	c.setupHTTPHandlers()

	return c, nil
}

// setupInfrastructure initializes MongoDB, Redis, the identity verifier and
// the messaging client.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.setupVerifier(); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := c.setupStream(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}

	return nil
}

// setupMongoDB initializes the MongoDB client.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDB = client
	c.MongoDBName = c.Config.MongoDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	db := client.Database(c.Config.MongoDB.Database)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupVerifier initializes the identity provider token verifier.
func (c *Container) setupVerifier() error {
	verifier, err := identity.NewVerifier(identity.VerifierConfig{
		IssuerURL:       c.Config.Identity.IssuerURL,
		Audience:        c.Config.Identity.Audience,
		Leeway:          c.Config.Identity.Leeway,
		RefreshInterval: c.Config.Identity.RefreshInterval,
		Logger:          c.Logger,
	})
	if err != nil {
		return err
	}

	c.Verifier = verifier
	return nil
}

// setupStream initializes the messaging collaborator client.
func (c *Container) setupStream() error {
	client, err := stream.NewClient(stream.ClientConfig{
		BaseURL:   c.Config.Stream.BaseURL,
		APIKey:    c.Config.Stream.APIKey,
		APISecret: c.Config.Stream.APISecret,
		Timeout:   c.Config.Stream.Timeout,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	c.Stream = client
	return nil
}

// setupMetrics registers all Prometheus metrics with the default registry,
// which backs the /metrics endpoint.
func (c *Container) setupMetrics() {
	c.SessionMetrics = metrics.NewSessionMetrics(prometheus.DefaultRegisterer)
	c.ResolutionMetrics = metrics.NewResolutionMetrics(prometheus.DefaultRegisterer)
}

// setupStores initializes the persistence and session-state stores.
func (c *Container) setupStores() error {
	db := c.MongoDB.Database(c.MongoDBName)

	c.UserStore = mongodb.NewMongoUserStore(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserStoreLogger(c.Logger),
	)

	c.ActiveChannels = redisstore.NewActiveChannelStore(redisstore.ActiveChannelStoreConfig{
		Client: c.Redis,
	})

	c.RateLimits = redisstore.NewRateLimitStore(c.Redis, "")

	minter, err := stream.NewTokenProvider(c.Config.Stream.APISecret, c.Config.Stream.TokenTTL)
	if err != nil {
		return err
	}

	c.TokenProvider, err = redisstore.NewCachedTokenProvider(redisstore.CachedTokenProviderConfig{
		Inner:  minter,
		Client: c.Redis,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}

	return nil
}

// setupUseCases wires the application layer.
func (c *Container) setupUseCases() {
	c.IdentitySyncUC = session.NewIdentitySyncUseCase(
		c.UserStore,
		c.Stream,
		c.TokenProvider,
		c.Logger,
	)

	c.ListDirectoryUC = directory.NewListDirectoryUseCase(c.UserStore)
	c.SearchUsersUC = directory.NewSearchUsersUseCase(c.UserStore)
	c.GetUserUC = directory.NewGetUserUseCase(c.UserStore)

	c.ResolveChannelUC = chatsession.NewResolveChannelUseCase(
		c.Stream,
		c.UserStore,
		c.ActiveChannels,
		c.Logger,
		c.ResolutionMetrics,
	)
	c.LeaveChannelUC = chatsession.NewLeaveChannelUseCase(
		c.Stream,
		c.ActiveChannels,
		c.Logger,
	)
}

// setupHTTPHandlers wires the handler layer.
func (c *Container) setupHTTPHandlers() {
	c.DirectoryHandler = httphandler.NewDirectoryHandler(&directoryService{
		list:   c.ListDirectoryUC,
		search: c.SearchUsersUC,
		get:    c.GetUserUC,
	})
	c.SessionHandler = httphandler.NewSessionHandler(&sessionService{
		sync:    c.IdentitySyncUC,
		tokens:  c.TokenProvider,
		metrics: c.SessionMetrics,
		logger:  c.Logger,
	})
	c.ChannelHandler = httphandler.NewChannelHandler(&channelService{
		resolve: c.ResolveChannelUC,
		leave:   c.LeaveChannelUC,
	})
}

// directoryService adapts the directory use cases to httphandler.DirectoryService.
type directoryService struct {
	list   *directory.ListDirectoryUseCase
	search *directory.SearchUsersUseCase
	get    *directory.GetUserUseCase
}

func (s *directoryService) ListDirectory(
	ctx context.Context,
	query directory.ListDirectoryQuery,
) ([]*user.User, error) {
	return s.list.Execute(ctx, query)
}

func (s *directoryService) SearchUsers(
	ctx context.Context,
	query directory.SearchUsersQuery,
) ([]*user.User, error) {
	return s.search.Execute(ctx, query)
}

func (s *directoryService) GetUser(
	ctx context.Context,
	query directory.GetUserQuery,
) (*user.User, error) {
	return s.get.Execute(ctx, query)
}

// credentialInvalidator drops a cached messaging credential on sign-out.
type credentialInvalidator interface {
	Invalidate(ctx context.Context, externalID string) error
}

// sessionService adapts the sync use case to httphandler.SessionService and
// records sync metrics around it.
type sessionService struct {
	sync    *session.IdentitySyncUseCase
	tokens  credentialInvalidator
	metrics *metrics.SessionMetrics
	logger  *slog.Logger
}

func (s *sessionService) StartSession(
	ctx context.Context,
	cmd session.StartSessionCommand,
) (session.SyncResult, error) {
	s.metrics.SyncInFlight.Inc()
	start := time.Now()

	result, err := s.sync.StartSession(ctx, cmd)

	s.metrics.SyncInFlight.Dec()
	switch {
	case err == nil:
		s.metrics.ObserveSync("success", time.Since(start))
	case errors.Is(err, session.ErrSyncInFlight):
		s.metrics.ObserveSync("rejected", time.Since(start))
	default:
		s.metrics.ObserveSync("failed", time.Since(start))
	}

	return result, err
}

func (s *sessionService) EndSession(ctx context.Context, cmd session.EndSessionCommand) error {
	if err := s.sync.EndSession(ctx, cmd); err != nil {
		return err
	}

	// Drop the cached credential so the next sign-in mints a fresh token.
	// Cache failures degrade, they do not fail the sign-out.
	if err := s.tokens.Invalidate(ctx, cmd.ExternalID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached credential",
			slog.String("external_id", cmd.ExternalID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// channelService adapts the channel use cases to httphandler.ChannelService.
type channelService struct {
	resolve *chatsession.ResolveChannelUseCase
	leave   *chatsession.LeaveChannelUseCase
}

func (s *channelService) ResolveChannel(
	ctx context.Context,
	cmd chatsession.ResolveChannelCommand,
) (chatsession.ResolveResult, error) {
	return s.resolve.Execute(ctx, cmd)
}

func (s *channelService) LeaveChannel(
	ctx context.Context,
	cmd chatsession.LeaveChannelCommand,
) (chatsession.LeaveResult, error) {
	return s.leave.Execute(ctx, cmd)
}

// Close releases all container resources.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Verifier != nil {
		if err := c.Verifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("identity verifier close: %w", err))
		} else {
			c.Logger.Debug("identity verifier closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// IsReady implements httpserver.HealthChecker.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.MongoDB == nil {
		return false
	}
	if err := c.MongoDB.Ping(ctx, nil); err != nil {
		c.Logger.WarnContext(ctx, "mongodb health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Redis == nil {
		return false
	}
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Logger.WarnContext(ctx, "redis health check failed", slog.String("error", err.Error()))
		return false
	}

	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	var statuses []httpserver.ComponentStatus

	mongoStatus := httpserver.ComponentStatus{Name: "mongodb", Status: httpserver.StatusHealthy}
	if c.MongoDB == nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = "client not initialized"
	} else if err := c.MongoDB.Ping(ctx, nil); err != nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = err.Error()
	}
	statuses = append(statuses, mongoStatus)

	redisStatus := httpserver.ComponentStatus{Name: "redis", Status: httpserver.StatusHealthy}
	if c.Redis == nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = "client not initialized"
	} else if err := c.Redis.Ping(ctx).Err(); err != nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = err.Error()
	}
	statuses = append(statuses, redisStatus)

	return statuses
}
