package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/overridelist"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
	"github.com/SceneForge/GoMaterialOverride/internal/models/user"
	"github.com/SceneForge/GoMaterialOverride/internal/services"
	"github.com/SceneForge/GoMaterialOverride/internal/web"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load("secrets/.env")
	if err != nil {
		panic(fmt.Sprintf("Error loading .env file: %s", err))
	}

	// Create server logger
	logger, err := log.NewLogger(true, false, "override-server.log")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rabbitMQIP := os.Getenv("RABBITMQ_IP")
	serverIP := os.Getenv("SERVER_IP")
	serverPort := 5000
	if p := os.Getenv("SERVER_PORT"); p != "" {
		serverPort, err = strconv.Atoi(p)
		if err != nil {
			logger.Fatal("Invalid SERVER_PORT:", err)
		}
	}

	// Create a MongoDB client
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:27017",
		os.Getenv("MONGO_INITDB_ROOT_USERNAME"),
		os.Getenv("MONGO_INITDB_ROOT_PASSWORD"),
		os.Getenv("MONGO_IP"))
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal("Error creating MongoDB client:", err)
	}

	// Create separate managers with the MongoDB client
	sceneManager := scene.NewSceneManager(client, logger, false)
	snapshotManager := snapshot.NewSnapshotManager(client, logger, false)
	userManager := user.NewUserManager(client, logger, false)
	overrideListManager := overridelist.NewOverrideListManager(client, logger, false)

	// Initialize services
	renderHooks, err := services.NewRenderHookService(rabbitMQIP, logger)
	if err != nil {
		logger.Panic("Error initializing render hook service:", err)
	}
	defer renderHooks.Shutdown()

	overrideService := services.NewOverrideService(sceneManager, snapshotManager, userManager, overrideListManager, renderHooks, logger)
	renderHooks.StartConsumers(overrideService)

	// Initialize web server
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	server := web.NewWebServer(jwtSecret, overrideService, logger)

	fmt.Println("Starting server...")

	// Start the web server
	if err := server.Run(serverIP, serverPort); err != nil {
		logger.Fatal("Error starting web server:", err)
	}
}
