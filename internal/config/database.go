package config

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/redisclient"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB client
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatal(err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Fatal(err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := EnsureIndexes(context.Background(), MongoDB); err != nil {
		logging.Logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
}

// InitRedis initializes the Redis connection
func InitRedis() {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Wrap with traced client
	Redis = redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis",
			zap.String("uri", AppConfig.RedisURI),
			zap.Error(err))
		return
	}

	logging.Logger.Info("connected to Redis",
		zap.String("uri", AppConfig.RedisURI))
}

// maskMongoURI masks credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}

// EnsureIndexes creates required indexes if they don't exist
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	logger := logging.Logger.With(zap.String("component", "database"))
	logger.Info("ensuring required indexes exist")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Uniqueness on the national id is what resolves duplicate-account
	// races during concurrent finalize calls.
	if err := ensureIndex(ctx, db, AppConfig.UserCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "nid_number", Value: 1}},
		Options: options.Index().
			SetName("nid_number_1").
			SetUnique(true),
	}, logger); err != nil {
		return err
	}

	if err := ensureIndex(ctx, db, AppConfig.UserCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "mobile_number", Value: 1}},
		Options: options.Index().SetName("mobile_number_1"),
	}, logger); err != nil {
		return err
	}

	// OTP lookups are always newest-first per phone.
	if err := ensureIndex(ctx, db, AppConfig.OTPCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "mobile_number", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("mobile_number_1_created_at_-1"),
	}, logger); err != nil {
		return err
	}

	// At most one unused code per phone, enforced by the server. Issuance
	// supersedes before inserting; a concurrent issuance that slips
	// between the two steps fails the insert instead of leaving two
	// usable codes.
	if err := ensureIndex(ctx, db, AppConfig.OTPCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "mobile_number", Value: 1}},
		Options: options.Index().
			SetName("mobile_number_1_unused").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"used": false}),
	}, logger); err != nil {
		return err
	}

	if err := ensureIndex(ctx, db, AppConfig.AuditLogCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_-1"),
	}, logger); err != nil {
		return err
	}

	for _, coll := range []string{
		AppConfig.EmergencyContactCollection,
		AppConfig.FamilyMemberCollection,
		AppConfig.HouseWorkerCollection,
		AppConfig.PreviousLandlordCollection,
		AppConfig.DocumentCollection,
		AppConfig.NotificationCollection,
	} {
		if err := ensureIndex(ctx, db, coll, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_1"),
		}, logger); err != nil {
			return err
		}
	}

	for _, coll := range []string{
		AppConfig.ResidenceCollection,
		AppConfig.LandlordCollection,
	} {
		if err := ensureIndex(ctx, db, coll, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("user_id_1").
				SetUnique(true),
		}, logger); err != nil {
			return err
		}
	}

	logger.Info("all required indexes verified")
	return nil
}

// ensureIndex creates a single index, tolerating concurrent creation by
// another instance.
func ensureIndex(ctx context.Context, db *mongo.Database, collection string, model mongo.IndexModel, logger *logging.SafeLogger) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, model)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logger.Debug("index already exists",
				zap.String("collection", collection))
			return nil
		}
		logger.Error("failed to create index",
			zap.String("collection", collection),
			zap.Error(err))
		return err
	}
	return nil
}
