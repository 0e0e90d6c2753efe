package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/cache"
	"github.com/syphaxalili/b2connect-store-sub001/catalog"
	"github.com/syphaxalili/b2connect-store-sub001/checkout"
	"github.com/syphaxalili/b2connect-store-sub001/controller"
	"github.com/syphaxalili/b2connect-store-sub001/gateway"
	kafkax "github.com/syphaxalili/b2connect-store-sub001/kafka"
	"github.com/syphaxalili/b2connect-store-sub001/ledger"
	"github.com/syphaxalili/b2connect-store-sub001/mailer"
	"github.com/syphaxalili/b2connect-store-sub001/middleware"
	"github.com/syphaxalili/b2connect-store-sub001/model"
	"github.com/syphaxalili/b2connect-store-sub001/routes"
)

var DB *gorm.DB
var Mongo *mongo.Database

func initDB() {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASS", "postgres")
	name := getEnv("DB_NAME", "storedb")

	dsn := "host=" + host + " user=" + user + " password=" + pass +
		" dbname=" + name + " port=" + port + " sslmode=disable TimeZone=UTC"

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect postgres:", err)
	}

	err = DB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.WebhookEvent{},
		&model.Cart{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

func initMongo() {
	uri := getEnv("MONGO_URI", "mongodb://localhost:27017")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("failed to connect mongo:", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("failed to ping mongo:", err)
	}

	Mongo = client.Database(getEnv("MONGO_DB", "catalogdb"))
	log.Println("Mongo connected")
}

func main() {
	initDB()
	initMongo()
	cache.ConnectRedis()

	producer := kafkax.NewProducer()
	notifier := &kafkax.OrderNotifier{Producer: producer}

	catalogStore := catalog.NewStore(Mongo)
	orderLedger := ledger.New(DB)
	checkoutSvc := checkout.NewService(catalogStore, orderLedger, notifier)

	gatewayClient := gateway.NewClient(
		getEnv("GATEWAY_URL", "https://pay.example.com"),
		os.Getenv("GATEWAY_API_KEY"),
	)

	jwtSecret := getEnv("JWT_SECRET", "dev-secret")
	auth := middleware.AuthRequired(jwtSecret)

	// notification consumers
	m := mailer.NewFromEnv()
	consumer := kafkax.NewConsumer()
	consumer.Consume("order.created", kafkax.OrderCreatedHandler(DB, m))
	consumer.Consume("order.status.changed", kafkax.StatusChangedHandler(DB, m))
	consumer.Consume("user.password.reset", kafkax.PasswordResetHandler(m))

	app := fiber.New()
	app.Use(logger.New())

	routes.RegisterAuthRoutes(app, &controller.AuthController{
		DB:        DB,
		Producer:  producer,
		JWTSecret: jwtSecret,
	})
	routes.RegisterProductRoutes(app,
		&controller.ProductController{Catalog: catalogStore},
		&controller.CategoryController{Catalog: catalogStore},
		auth,
	)
	routes.RegisterCartRoutes(app, &controller.CartController{DB: DB}, auth)
	routes.RegisterOrderRoutes(app, &controller.OrderController{
		Checkout: checkoutSvc,
		Ledger:   orderLedger,
		Notifier: notifier,
		DB:       DB,
	}, auth)
	routes.RegisterPaymentRoutes(app, &controller.PaymentController{
		Checkout:      checkoutSvc,
		Catalog:       catalogStore,
		Gateway:       gatewayClient,
		WebhookSecret: os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CancelURL:     getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
	}, auth)

	port := getEnv("PORT", "3000")
	log.Println("HTTP server running on port " + port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("fiber error:", err)
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
