// @title						BuyZaar API
// @version					1.0
// @description				Storefront backend: catalog, cart, atomic order placement, reviews and payments.
// @host						localhost:8080
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/docs"
	"github.com/aaravmahajanofficial/buyzaar/internal/api/handlers"
	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/cache"
	"github.com/aaravmahajanofficial/buyzaar/internal/config"
	"github.com/aaravmahajanofficial/buyzaar/internal/health"
	"github.com/aaravmahajanofficial/buyzaar/internal/metrics"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/aaravmahajanofficial/buyzaar/internal/tracing"
	"github.com/aaravmahajanofficial/buyzaar/pkg/sendgrid"
	"github.com/aaravmahajanofficial/buyzaar/pkg/stripe"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Otel, health.ComponentVersion)
	if err != nil {
		slog.Error("Failed to initialise tracing", slog.Any("error", err))
		os.Exit(1)
	}

	repos, err := repository.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to the database", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := repository.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	jwtKey := []byte(cfg.Security.JWTKey)

	userService := service.NewUserService(repos.User, rateLimiter, jwtKey, time.Duration(cfg.Security.JWTExpiryHours)*time.Hour)
	productService := service.NewProductService(repos.Product, productCache)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	orderService := service.NewOrderService(repos.UnitOfWork, repos.Order, productCache)
	reviewService := service.NewReviewService(repos.UnitOfWork, repos.Review, repos.Product, repos.Order, productCache)
	paymentService := service.NewPaymentService(repos.Payment, repos.Order, stripeClient, cfg.Stripe.Currency)
	notificationService := service.NewNotificationService(repos.Notification, emailService)
	statsService := service.NewStatsService(repos.Stats)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, notificationService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	statsHandler := handlers.NewStatsHandler(statsService)
	auth := middleware.NewAuthMiddleware(jwtKey)

	var healthStripe stripe.Client
	if cfg.Stripe.APIKey != "" {
		healthStripe = stripeClient
	}

	healthChecker, err := health.NewHealthHandler(cfg, healthStripe)
	if err != nil {
		slog.Error("Failed to build health checks", slog.Any("error", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST "+apiPrefix+"/users/register", userHandler.Register())
	mux.HandleFunc("POST "+apiPrefix+"/users/login", userHandler.Login())
	mux.HandleFunc("GET "+apiPrefix+"/users/profile", auth.Authenticate(userHandler.Profile()))

	mux.HandleFunc("GET "+apiPrefix+"/products", productHandler.ListProducts())
	mux.HandleFunc("GET "+apiPrefix+"/products/{id}", productHandler.GetProduct())
	mux.HandleFunc("POST "+apiPrefix+"/products", auth.Admin(productHandler.CreateProduct()))
	mux.HandleFunc("PUT "+apiPrefix+"/products/{id}", auth.Admin(productHandler.UpdateProduct()))
	mux.HandleFunc("GET "+apiPrefix+"/products/{id}/reviews", reviewHandler.ListProductReviews())

	mux.HandleFunc("GET "+apiPrefix+"/cart", auth.Authenticate(cartHandler.GetCart()))
	mux.HandleFunc("DELETE "+apiPrefix+"/cart", auth.Authenticate(cartHandler.ClearCart()))
	mux.HandleFunc("POST "+apiPrefix+"/cart/items", auth.Authenticate(cartHandler.AddItem()))
	mux.HandleFunc("PUT "+apiPrefix+"/cart/items", auth.Authenticate(cartHandler.UpdateItem()))
	mux.HandleFunc("DELETE "+apiPrefix+"/cart/items/{productId}", auth.Authenticate(cartHandler.RemoveItem()))

	mux.HandleFunc("POST "+apiPrefix+"/orders", auth.Authenticate(orderHandler.PlaceOrder()))
	mux.HandleFunc("GET "+apiPrefix+"/orders/mine", auth.Authenticate(orderHandler.ListMyOrders()))
	mux.HandleFunc("GET "+apiPrefix+"/orders/{id}", auth.Authenticate(orderHandler.GetOrder()))
	mux.HandleFunc("GET "+apiPrefix+"/orders", auth.Admin(orderHandler.ListAllOrders()))
	mux.HandleFunc("PATCH "+apiPrefix+"/orders/{id}/status", auth.Admin(orderHandler.UpdateOrderStatus()))

	mux.HandleFunc("POST "+apiPrefix+"/reviews", auth.Authenticate(reviewHandler.AddReview()))
	mux.HandleFunc("PUT "+apiPrefix+"/reviews/{id}", auth.Authenticate(reviewHandler.UpdateReview()))
	mux.HandleFunc("DELETE "+apiPrefix+"/reviews/{id}", auth.Authenticate(reviewHandler.DeleteReview()))

	mux.HandleFunc("POST "+apiPrefix+"/orders/{id}/payments", auth.Authenticate(paymentHandler.CreatePayment()))
	mux.HandleFunc("GET "+apiPrefix+"/payments", auth.Authenticate(paymentHandler.ListPayments()))
	mux.HandleFunc("GET "+apiPrefix+"/payments/{id}", auth.Authenticate(paymentHandler.GetPayment()))
	mux.HandleFunc("POST "+apiPrefix+"/payments/webhook", paymentHandler.HandleStripeWebhook())

	mux.HandleFunc("GET "+apiPrefix+"/admin/stats", auth.Admin(statsHandler.GetDashboardStats()))

	mux.Handle("GET /health", healthChecker.Handler())
	mux.Handle("GET /metrics", metrics.Handler())

	docs.SwaggerInfo.Host = cfg.Addr
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "buyzaar-http")

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", slog.String("address", cfg.Addr), slog.String("env", cfg.Env))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", slog.Any("error", err))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Tracer shutdown failed", slog.Any("error", err))
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("Failed to close redis client", slog.Any("error", err))
	}

	if err := repos.Close(); err != nil {
		slog.Error("Failed to close database", slog.Any("error", err))
	}

	slog.Info("Server stopped")
}
