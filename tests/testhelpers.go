package tests

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/thikana-bd/app-thikana/internal/config"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/redisclient"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestContainers holds references to test containers
type TestContainers struct {
	MongoContainer *mongodb.MongoDBContainer
	RedisContainer *redis.RedisContainer
	MongoDB        *mongo.Database
	Redis          *redisclient.Client
	Cleanup        func()
}

// SkipWithoutDocker skips container-backed tests unless explicitly
// enabled, so the suite stays runnable on machines without Docker.
func SkipWithoutDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("INTEGRATION_TESTS not set, skipping container-backed test")
	}
}

// SetupTestContainers starts MongoDB and Redis containers for testing
func SetupTestContainers(t *testing.T) *TestContainers {
	ctx := context.Background()

	require.NoError(t, logging.InitLogger(), "Failed to initialize logger")

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx,
		"mongo:7.0",
		mongodb.WithUsername("root"),
		mongodb.WithPassword("password"),
	)
	require.NoError(t, err, "Failed to start MongoDB container")

	// Start Redis container
	redisContainer, err := redis.Run(ctx,
		"redis:7-alpine",
	)
	require.NoError(t, err, "Failed to start Redis container")

	// Get MongoDB connection string
	mongoURI, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	// Get Redis connection string
	redisURI, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	// Connect to MongoDB
	clientOptions := options.Client().ApplyURI(mongoURI)
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	require.NoError(t, err, "Failed to connect to MongoDB")

	// Ping MongoDB
	err = mongoClient.Ping(ctx, nil)
	require.NoError(t, err, "Failed to ping MongoDB")

	// Get test database
	database := mongoClient.Database("thikana_test")

	// Connect to Redis
	redisOpts, err := goredis.ParseURL(redisURI)
	require.NoError(t, err, "Failed to parse Redis connection string")
	redisClient := redisclient.NewClient(goredis.NewClient(redisOpts))
	require.NoError(t, redisClient.Ping(ctx).Err(), "Failed to ping Redis")

	// Initialize config for tests
	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}

	// Set test configuration
	config.AppConfig.MongoURI = mongoURI
	config.AppConfig.MongoDatabase = "thikana_test"
	config.AppConfig.RedisURI = redisOpts.Addr
	config.AppConfig.UserCollection = "users"
	config.AppConfig.OTPCollection = "otps"
	config.AppConfig.AuditLogCollection = "audit_logs"
	config.AppConfig.EmergencyContactCollection = "emergency_contacts"
	config.AppConfig.FamilyMemberCollection = "family_members"
	config.AppConfig.HouseWorkerCollection = "house_workers"
	config.AppConfig.ResidenceCollection = "residences"
	config.AppConfig.LandlordCollection = "landlords"
	config.AppConfig.DocumentCollection = "documents"
	config.AppConfig.NotificationCollection = "notifications"
	config.AppConfig.OTPExpiry = 5 * time.Minute
	config.AppConfig.OTPResendCooldown = 60 * time.Second
	config.AppConfig.PendingFlowTTL = 15 * time.Minute
	config.AppConfig.AuditWorkers = 2
	config.AppConfig.AuditBufferSize = 100

	// Set global database references
	config.MongoDB = database
	config.Redis = redisClient

	require.NoError(t, config.EnsureIndexes(ctx, database), "Failed to ensure indexes")

	cleanup := func() {
		// Disconnect MongoDB
		if mongoClient != nil {
			ctx := context.Background()
			mongoClient.Disconnect(ctx)
		}

		// Terminate containers
		if mongoContainer != nil {
			mongoContainer.Terminate(ctx)
		}
		if redisContainer != nil {
			redisContainer.Terminate(ctx)
		}
	}

	return &TestContainers{
		MongoContainer: mongoContainer,
		RedisContainer: redisContainer,
		MongoDB:        database,
		Redis:          redisClient,
		Cleanup:        cleanup,
	}
}

// CleanupDatabase drops all collections in the test database
func CleanupDatabase(t *testing.T, db *mongo.Database) {
	ctx := context.Background()
	collections, err := db.ListCollectionNames(ctx, map[string]interface{}{})
	require.NoError(t, err, "Failed to list collections")

	for _, collection := range collections {
		err := db.Collection(collection).Drop(ctx)
		require.NoError(t, err, fmt.Sprintf("Failed to drop collection %s", collection))
	}
}
