package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakhadian/clinic-api/internal/handlers"
	"github.com/rakhadian/clinic-api/internal/metrics"
	"github.com/rakhadian/clinic-api/internal/middleware"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/records"
	"github.com/rakhadian/clinic-api/internal/scheduling"
	"github.com/rakhadian/clinic-api/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "clinic"
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(dbName)
	log.Println("Successfully connected to MongoDB!")

	st := store.New(db)
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// --- Services ---
	bookingMetrics := metrics.NewBookingMetrics(nil)
	engine := scheduling.NewEngine(st, bookingMetrics)
	recordSvc := records.NewService(st)

	h := handlers.NewHandler(st, engine, recordSvc)

	// --- Gin Router ---
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// --- Routes ---
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/me", h.GetCurrentProfile)
		api.GET("/profiles/:id", h.GetProfile)
		api.PUT("/profiles/:id", h.UpdateProfile)

		// Service catalog: everyone reads, admins manage.
		api.GET("/services", h.ListServices)
		api.GET("/services/:id", h.GetService)
		api.GET("/services/:id/staff", h.ListEligibleStaff)
		adminServices := api.Group("/services")
		adminServices.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			adminServices.POST("", h.CreateService)
			adminServices.PUT("/:id", h.UpdateService)
			adminServices.DELETE("/:id", h.DeleteService)
			adminServices.DELETE("", h.DeleteAllServices)
		}

		// Staff accounts are provisioned by admins.
		api.POST("/profiles/staff", middleware.RequireRoles(models.RoleAdmin), h.CreateStaffProfile)
		api.GET("/patients", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor, models.RoleOfficer), h.ListPatients)

		// Scheduling: patients book and pay, doctors decide.
		api.POST("/schedules", middleware.RequireRoles(models.RolePatient), h.CreateSchedule)
		api.GET("/schedules", h.ListSchedules)
		api.GET("/schedules/:id", h.GetSchedule)
		api.POST("/schedules/:id/payment", middleware.RequireRoles(models.RolePatient), h.ConfirmPayment)
		api.PATCH("/schedules/:id/status", middleware.RequireRoles(models.RoleDoctor), h.UpdateScheduleStatus)

		// Medical records.
		api.POST("/medical-records", middleware.RequireRoles(models.RoleDoctor), h.CreateMedicalRecord)
		api.GET("/medical-records", h.ListMedicalRecords)
		api.GET("/patients/:id/medical-records", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor), h.ListPatientMedicalRecords)

		// Inventory: staff read, admins and officers manage.
		api.GET("/inventory", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor, models.RoleOfficer), h.ListInventory)
		api.GET("/inventory/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor, models.RoleOfficer), h.GetInventory)
		manageInventory := api.Group("/inventory")
		manageInventory.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleOfficer))
		{
			manageInventory.POST("", h.CreateInventory)
			manageInventory.PUT("/:id", h.UpdateInventory)
			manageInventory.DELETE("/:id", h.DeleteInventory)
			manageInventory.DELETE("", h.DeleteAllInventory)
		}
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
