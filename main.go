package main

import (
	"algoritmia/config"
	"algoritmia/database"
	authRoutes "algoritmia/routers/authRoutes"
	difficultyRoutes "algoritmia/routers/difficultyRoutes"
	questionRoutes "algoritmia/routers/questionRoutes"
	sessionRoutes "algoritmia/routers/sessionRoutes"
	"algoritmia/services"
	"algoritmia/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	services.Init(database.Database.Db)
	services.Sessions.Notifier = utils.NotifySessionAssigned

	// Background sweep for overdue pending sessions
	utils.InitializeSessionScheduler(services.Sessions)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	questionRoutes.SetupQuestionRoutes(app)
	difficultyRoutes.SetupDifficultyRoutes(app)
	sessionRoutes.SetupSessionRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
