package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/keepsakehq/backend-souvenir/internal/auth"
	"github.com/keepsakehq/backend-souvenir/internal/carousel"
	"github.com/keepsakehq/backend-souvenir/internal/cart"
	"github.com/keepsakehq/backend-souvenir/internal/catalog"
	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/config"
	"github.com/keepsakehq/backend-souvenir/internal/health"
	"github.com/keepsakehq/backend-souvenir/internal/lock"
	"github.com/keepsakehq/backend-souvenir/internal/obs"
	"github.com/keepsakehq/backend-souvenir/internal/order"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/printer"
	"github.com/keepsakehq/backend-souvenir/internal/ratelimit"
	"github.com/keepsakehq/backend-souvenir/internal/security"
	"github.com/keepsakehq/backend-souvenir/internal/settings"
	"github.com/keepsakehq/backend-souvenir/internal/shipping"
	"github.com/keepsakehq/backend-souvenir/internal/store"
	"github.com/keepsakehq/backend-souvenir/internal/support"
	"github.com/keepsakehq/backend-souvenir/internal/wishlist"
	"github.com/keepsakehq/backend-souvenir/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "souvenir")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "souvenir-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if cfg.RunMigrations {
		if err := migrations.Run(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "souvenir-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskRedis, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task client")
	}
	taskClient := asynq.NewClient(taskRedis)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	st := store.New(pool)
	validate := validator.New()

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Queries:      st,
		Cache:        catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := &catalog.Handler{Service: catalogService}
	catalogAdmin := &catalog.AdminHandler{
		Store:    st,
		Cache:    catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Validate: validate,
	}

	authService, err := auth.NewService(auth.Config{
		Admins:         st,
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService, Validate: validate}
	authMiddleware := auth.Middleware{Service: authService}

	products := productDirectory{store: st}
	cartStore := &cart.Store{R: redisClient, TTL: cfg.CartTTL}
	cartHandler := &cart.Handler{Store: cartStore, Products: products}

	wishlistStore := &wishlist.Store{R: redisClient, TTL: cfg.WishlistTTL}
	wishlistHandler := &wishlist.Handler{Store: wishlistStore, Products: products}

	settingsService := &settings.Service{
		Provider:            st,
		Cache:               redisClient,
		TTL:                 cfg.SettingsCacheTTL,
		DefaultFreeShipping: pricing.Money(cfg.FreeShippingThresholdDefault),
	}
	settingsAdmin := &settings.AdminHandler{Service: settingsService}

	shippingService := &shipping.Service{Dir: locationDirectory{store: st}, Threshold: settingsService}
	shippingHandler := &shipping.Handler{Svc: shippingService}
	shippingAdmin := &shipping.AdminHandler{Store: st, Validate: validate}

	supportHandler := &support.Handler{Provider: st, Enqueuer: taskClient, Validate: validate, Log: logger}
	supportAdmin := &support.AdminHandler{Provider: st, Validate: validate}

	carouselHandler := &carousel.Handler{Provider: st}
	carouselAdmin := &carousel.AdminHandler{Provider: st, Validate: validate}

	printerHandler := &printer.Handler{Provider: st}
	printerAdmin := &printer.AdminHandler{Provider: st, Validate: validate}

	orderService := &order.Service{
		Carts:    cartStore,
		Orders:   st,
		Shipping: shippingService,
		Enqueuer: taskClient,
		Lock:     &lock.Locker{R: redisClient},
		Log:      logger,
	}
	orderHandler := &order.Handler{Service: orderService, Validate: validate}
	orderAdmin := &order.AdminHandler{Store: st}

	contactLimiter, err := ratelimit.New(redisClient, cfg.ContactRateLimit, "souvenir:ratelimit")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise contact rate limiter")
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: true}.Middleware)
	r.Use(security.BodyLimit{Max: envInt64("SECURE_MAX_BODY_BYTES", 1<<20)}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probe{DB: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.ListProducts)
		v.Get("/products/{slug}", catalogHandler.GetProduct)
		v.Get("/products/{slug}/quote", catalogHandler.QuoteProduct)
		v.Get("/categories", catalogHandler.ListCategories)
		v.Get("/carousel", carouselHandler.ListSlides)
		v.Get("/printers", printerHandler.List)
		v.Get("/faqs", supportHandler.ListFAQs)
		v.With(contactLimiter.Middleware).Post("/contact", supportHandler.SubmitContact)

		v.Route("/carts", func(c chi.Router) {
			c.Post("/", cartHandler.Create)
			c.Get("/{id}", cartHandler.Get)
			c.Post("/{id}/items", cartHandler.AddItem)
			c.Patch("/{id}/items/{itemId}", cartHandler.UpdateItem)
			c.Delete("/{id}/items/{itemId}", cartHandler.RemoveItem)
			c.Delete("/{id}/items", cartHandler.Clear)
		})

		v.Route("/wishlists", func(wl chi.Router) {
			wl.Get("/{id}", wishlistHandler.Get)
			wl.Post("/{id}/items", wishlistHandler.AddItem)
			wl.Delete("/{id}/items/{productId}", wishlistHandler.RemoveItem)
			wl.Delete("/{id}/items", wishlistHandler.Clear)
		})

		v.Route("/shipping", func(sh chi.Router) {
			sh.Get("/states", shippingHandler.States)
			sh.Get("/states/{stateId}/locations", shippingHandler.Locations)
			sh.Post("/quote", shippingHandler.Quote)
		})

		v.With(idem.Middleware).Post("/checkout", orderHandler.Checkout)
		v.Get("/orders/{reference}", orderHandler.Lookup)

		v.Post("/admin/login", authHandler.Login)

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)

			admin.Post("/products", catalogAdmin.CreateProduct)
			admin.Put("/products/{id}", catalogAdmin.UpdateProduct)
			admin.Delete("/products/{id}", catalogAdmin.DeleteProduct)
			admin.Put("/products/{id}/tiers", catalogAdmin.ReplaceTiers)
			admin.Post("/categories", catalogAdmin.CreateCategory)
			admin.Put("/categories/{id}", catalogAdmin.UpdateCategory)
			admin.Delete("/categories/{id}", catalogAdmin.DeleteCategory)

			admin.Get("/carousel", carouselAdmin.ListAll)
			admin.Post("/carousel", carouselAdmin.CreateSlide)
			admin.Put("/carousel/{id}", carouselAdmin.UpdateSlide)
			admin.Delete("/carousel/{id}", carouselAdmin.DeleteSlide)

			admin.Post("/faqs", supportAdmin.CreateFAQ)
			admin.Put("/faqs/{id}", supportAdmin.UpdateFAQ)
			admin.Delete("/faqs/{id}", supportAdmin.DeleteFAQ)
			admin.Get("/contact-messages", supportAdmin.ListContactMessages)
			admin.Post("/contact-messages/{id}/resolve", supportAdmin.ResolveContactMessage)

			admin.Get("/printers", printerAdmin.ListAll)
			admin.Post("/printers", printerAdmin.Create)
			admin.Put("/printers/{id}", printerAdmin.Update)
			admin.Delete("/printers/{id}", printerAdmin.Delete)

			admin.Get("/settings", settingsAdmin.List)
			admin.Put("/settings", settingsAdmin.Update)

			admin.Get("/orders", orderAdmin.List)
			admin.Get("/orders/{id}", orderAdmin.Get)
			admin.Patch("/orders/{id}/status", orderAdmin.UpdateStatus)

			admin.Post("/states", shippingAdmin.CreateState)
			admin.Delete("/states/{id}", shippingAdmin.DeleteState)
			admin.Post("/states/{id}/locations", shippingAdmin.CreateLocation)
			admin.Put("/locations/{id}", shippingAdmin.UpdateLocation)
			admin.Delete("/locations/{id}", shippingAdmin.DeleteLocation)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		health.SetReady(true)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	health.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// productDirectory resolves live catalog rows for cart and wishlist writes.
type productDirectory struct {
	store *store.Store
}

func (d productDirectory) ProductForCart(ctx context.Context, productID string) (cart.Product, error) {
	p, err := d.store.GetProductByID(ctx, productID)
	if err != nil {
		return cart.Product{}, err
	}
	if !p.Active {
		return cart.Product{}, store.ErrNotFound
	}
	return cart.Product{
		Title:          p.Title,
		Slug:           p.Slug,
		Price:          pricing.Money(p.Price),
		Stock:          p.Stock,
		PrintAvailable: p.PrintAvailable,
		PrintSurcharge: pricing.Money(p.PrintSurcharge),
	}, nil
}

func (d productDirectory) ProductForWishlist(ctx context.Context, productID string) (wishlist.ProductInfo, error) {
	p, err := d.store.GetProductByID(ctx, productID)
	if err != nil {
		return wishlist.ProductInfo{}, err
	}
	if !p.Active {
		return wishlist.ProductInfo{}, store.ErrNotFound
	}
	return wishlist.ProductInfo{Title: p.Title, Slug: p.Slug, Price: pricing.Money(p.Price)}, nil
}

// locationDirectory adapts the relational directory to the shipping service.
type locationDirectory struct {
	store *store.Store
}

func (d locationDirectory) ListStates(ctx context.Context) ([]shipping.State, error) {
	rows, err := d.store.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]shipping.State, 0, len(rows))
	for _, row := range rows {
		states = append(states, shipping.State{ID: row.ID, Name: row.Name})
	}
	return states, nil
}

func (d locationDirectory) ListLocationsByState(ctx context.Context, stateID string) ([]shipping.Location, error) {
	rows, err := d.store.ListLocationsByState(ctx, stateID)
	if err != nil {
		return nil, err
	}
	locations := make([]shipping.Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, convertLocation(row))
	}
	return locations, nil
}

func (d locationDirectory) GetLocation(ctx context.Context, locationID string) (shipping.Location, error) {
	row, err := d.store.GetLocation(ctx, locationID)
	if err != nil {
		return shipping.Location{}, err
	}
	return convertLocation(row), nil
}

func convertLocation(row store.Location) shipping.Location {
	loc := shipping.Location{ID: row.ID, Name: row.Name, StateID: row.StateID}
	if row.Fee != nil {
		fee := pricing.Money(*row.Fee)
		loc.Fee = &fee
	}
	return loc
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
