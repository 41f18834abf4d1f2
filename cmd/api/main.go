package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-stockbook/internal/handler"
	"go-stockbook/internal/middleware"
	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/internal/service"
	"go-stockbook/internal/ws"
	"go-stockbook/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Contact{}, &model.Transaction{}, &model.TransactionItem{}); err != nil {
		log.Fatal("Failed to run migrations. \n", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	contactRepo := repository.NewContactRepo(db)
	txRepo := repository.NewTransactionRepo(db)

	authService := service.NewAuthService(userRepo)
	productService := service.NewProductService(db, productRepo, wsHub)
	contactService := service.NewContactService(contactRepo)
	postingService := service.NewPostingService(db, productRepo, contactRepo, txRepo, wsHub)
	reportService := service.NewReportService(txRepo, productRepo)
	dashService := service.NewDashboardService(txRepo)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	contactHandler := handler.NewContactHandler(contactService)
	txHandler := handler.NewTransactionHandler(postingService, reportService)
	reportHandler := handler.NewReportHandler(reportService)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stockbook v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication; the middleware resolves
	// the tenant every handler is scoped to.
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/auth/me", authHandler.Me)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", productHandler.CreateProduct)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)
	protected.Delete("/products/:id", productHandler.DeleteProduct)
	protected.Post("/products/:id/adjust-stock", productHandler.AdjustStock)

	// Contact Routes (customers & vendors)
	protected.Get("/contacts", contactHandler.GetContacts)
	protected.Post("/contacts", contactHandler.CreateContact)
	protected.Get("/contacts/:id", contactHandler.GetContact)
	protected.Put("/contacts/:id", contactHandler.UpdateContact)
	protected.Delete("/contacts/:id", contactHandler.DeleteContact)

	// Transaction Routes (append-only ledger, no update/delete)
	protected.Get("/transactions", txHandler.GetTransactions)
	protected.Get("/transactions/:id", txHandler.GetTransaction)
	protected.Post("/transactions", txHandler.PostTransaction)

	// Report Routes
	protected.Get("/reports/transactions", reportHandler.GetTransactionReport)
	protected.Get("/reports/inventory", reportHandler.GetInventoryReport)

	// Dashboard Routes
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
