package container

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/internal/config"
	infraCache "storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/infrastructure/email"
	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/jwt"
	"storefront-backend/pkg/logger"

	// Cart
	cartHandler "storefront-backend/internal/domains/cart/handler"
	cartRepo "storefront-backend/internal/domains/cart/repository"
	cartService "storefront-backend/internal/domains/cart/service"

	// Product
	productHandler "storefront-backend/internal/domains/product/handler"
	productRepo "storefront-backend/internal/domains/product/repository"
	productService "storefront-backend/internal/domains/product/service"

	// User
	"storefront-backend/internal/domains/user"
	userHandler "storefront-backend/internal/domains/user/handler"
	userRepo "storefront-backend/internal/domains/user/repository"
	userService "storefront-backend/internal/domains/user/service"
)

const connectTimeout = 30 * time.Second

// Container holds every long-lived dependency of the API and the worker
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	Queue      *queue.Client
	Email      email.EmailService
	JWTManager *jwt.Manager

	// ========================================
	// REPOSITORIES
	// ========================================
	UserRepo      user.Repository
	ResetTokens   user.ResetTokenStore
	ProductRepo   productRepo.RepositoryInterface
	CartRepo      cartRepo.RepositoryInterface
	GuestCartRepo cartRepo.GuestRepositoryInterface

	// ========================================
	// SERVICES
	// ========================================
	UserService    user.Service
	ProductService productService.ServiceInterface
	CartService    cartService.ServiceInterface

	// ========================================
	// HANDLERS
	// ========================================
	UserHandler    *userHandler.UserHandler
	ProductHandler *productHandler.Handler
	CartHandler    *cartHandler.Handler
}

// NewContainer builds the dependency graph in order:
// config → database → redis → queue → repositories → services → handlers
func NewContainer() (*Container, error) {
	c := &Container{}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// STEP 2: database
	db := database.NewPostgresDB(&cfg.Database)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// STEP 3: redis, shared by guest carts, the product cache and asynq
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client)

	// STEP 4: queue producer
	c.Queue = queue.NewClient(c.Redis.AsynqOpt())

	// The worker delivers mail; the API only enqueues it
	c.Email = email.NewSMTPEmailService(cfg.Email)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.ResetTokens = userRepo.NewResetTokenStore(c.Redis.Client)
	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.GuestCartRepo = cartRepo.NewGuestRedisRepository(c.Redis.Client, c.Config.Cart.GuestTTL)
}

func (c *Container) initServices() {
	c.ProductService = productService.NewService(c.ProductRepo, c.Cache)

	// The product service is the cart's catalog; snapshots are read
	// straight from Postgres so stock is never stale
	c.CartService = cartService.NewCartService(
		c.CartRepo,
		c.GuestCartRepo,
		c.ProductService,
		cartService.Options{
			MaxMutationAttempts: c.Config.Cart.MaxMutationAttempts,
			RetryBackoff:        c.Config.Cart.RetryBackoff,
		},
	)

	var clearer user.CartClearer
	if c.Config.Cart.ClearOnLogout {
		clearer = c.Queue
	}
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, clearer, userService.PasswordReset{
		Tokens:  c.ResetTokens,
		Mailer:  c.Queue,
		BaseURL: c.Config.Reset.URL,
		TTL:     c.Config.Reset.TTL,
	})
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ProductHandler = productHandler.NewHandler(c.ProductService)
	c.CartHandler = cartHandler.NewHandler(c.CartService)
}

// Cleanup releases resources in reverse order of creation
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
