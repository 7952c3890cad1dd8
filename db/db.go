package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	SessionsCollection     *mongo.Collection
	ReservationsCollection *mongo.Collection
	RolesCollection        *mongo.Collection
	MachinesCollection     *mongo.Collection
	ToolsCollection        *mongo.Collection
	MaterialsCollection    *mongo.Collection
	ScansCollection        *mongo.Collection
	PaymentsCollection     *mongo.Collection
	PlansCollection        *mongo.Collection
	IdempotencyCollection  *mongo.Collection
	Client                 *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	clientOptions := options.Client().ApplyURI(uri)
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("novadb")
	UserCollection = database.Collection("users")
	SessionsCollection = database.Collection("sessions")
	ReservationsCollection = database.Collection("reservations")
	RolesCollection = database.Collection("roles")
	MachinesCollection = database.Collection("machines")
	ToolsCollection = database.Collection("tools")
	MaterialsCollection = database.Collection("materials")
	ScansCollection = database.Collection("scans")
	PaymentsCollection = database.Collection("payments")
	PlansCollection = database.Collection("plans")
	IdempotencyCollection = database.Collection("idempotency")
}

// EnsureIndexes creates the indexes the hot paths depend on. Called once at
// startup; index creation is idempotent on the server side.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// One open session per member: partial unique index on sessions whose
	// endTime is still null. A double badge tap then surfaces as a
	// duplicate-key error instead of a second open session.
	_, err := SessionsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "member.id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("unique_open_session").
			SetPartialFilterExpression(bson.M{"endTime": bson.M{"$type": "null"}}),
	})
	if err != nil {
		return err
	}

	// Conflict-check prefilter scans reservations by resource and startAt.
	_, err = ReservationsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "machineId", Value: 1}, {Key: "startAt", Value: 1}}},
		{Keys: bson.D{{Key: "staffUserId", Value: 1}, {Key: "startAt", Value: 1}}},
	})
	if err != nil {
		return err
	}

	// Badge fallback lookups hit these fields directly.
	_, err = UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "badge.id", Value: 1}}},
		{Keys: bson.D{{Key: "badge.badgeNumber", Value: 1}}},
	})
	return err
}
