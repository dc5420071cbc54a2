package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/open-wap/go-push-gateway/internal/config"
	event2 "github.com/open-wap/go-push-gateway/internal/event"
	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/utils"
)

const ResultCollectionName = "delivery_results"

var Client *mongo.Client
var Database *mongo.Database
var Results *mongo.Collection
var OperationTimeout time.Duration

type DBCloseCallback struct {
}

func NewDBCloseCallback() *DBCloseCallback {
	return &DBCloseCallback{}
}

func (dc *DBCloseCallback) Invoke(ctx context.Context) error {
	logger.InfoF("Closing database connection")
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()
	return Client.Disconnect(ctx)
}

func ConnectDatabase() error {
	logger.DebugF("Connecting to database...")
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("error occured while connecting to database: %v", err)
	}

	OperationTimeout = utils.ParseStringTime(cfg.Database.OperationTimeout)

	// Credentials may carry URL special characters.
	encodedUser := url.QueryEscape(cfg.Database.Username)
	encodedPass := url.QueryEscape(cfg.Database.Password)
	databaseUrl := fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=admin",
		encodedUser, encodedPass,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	clientOptions := options.Client().ApplyURI(databaseUrl).SetAppName(cfg.AppName)
	clientOptions.SetMinPoolSize(cfg.Database.MinPoolSize)
	clientOptions.SetMaxPoolSize(cfg.Database.MaxPoolSize)
	clientOptions.SetMaxConnIdleTime(utils.ParseStringTime(cfg.Database.ConnectIdleTimeout))
	clientOptions.SetConnectTimeout(utils.ParseStringTime(cfg.Database.ConnectTimeout))
	clientOptions.SetSocketTimeout(utils.ParseStringTime(cfg.Database.SocketTimeout))
	clientOptions.SetHeartbeatInterval(utils.ParseStringTime(cfg.Database.Heartbeat))
	if cfg.Database.UseTLS {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: false,
		}
		clientOptions.SetTLSConfig(tlsConfig)
	}
	clientOptions.SetPoolMonitor(&event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				logger.DebugF("Database connection created: %+v", evt)
			case event.ConnectionClosed:
				logger.DebugF("Database connection closed: %+v", evt)
			}
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	Client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("error occured while connecting to database: %v", err)
	}

	if err = Client.Ping(ctx, nil); err != nil {
		_ = Client.Disconnect(ctx)
		return fmt.Errorf("error occured while pinging database: %v", err)
	}

	Database = Client.Database(cfg.Database.Database)
	Results = Database.Collection(ResultCollectionName)

	_, err = Results.Indexes().CreateOne(
		context.Background(),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "pi_push_id", Value: 1}},
			Options: options.Index().SetName("results_pi_push_id"),
		},
	)
	if err != nil {
		return fmt.Errorf("error occured while creating database indexes: %v", err)
	}

	event2.NewCleaner().Add(NewDBCloseCallback())
	return nil
}

type DBStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var DbStore *DBStore

func NewDatabaseStore() *DBStore {
	if DbStore == nil {
		DbStore = &DBStore{client: Client, db: Database}
	}
	return DbStore
}

func (ds *DBStore) Save(ctx context.Context, result DeliveryResult) error {
	ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
	defer cancel()

	if result.PiPushID == "" {
		return ErrEmptyPushID
	}

	filter := bson.D{{Key: "pi_push_id", Value: result.PiPushID}}
	opts := options.Replace().SetUpsert(true)

	res, err := ds.db.Collection(ResultCollectionName).ReplaceOne(ctx, filter, result, opts)
	if err != nil {
		return fmt.Errorf("database operation failed: %w", err)
	}

	logger.InfoF("Delivery result saved: pi_push_id=%s, state=%s, matched=%d, upserted=%v",
		result.PiPushID,
		result.State,
		res.MatchedCount,
		res.UpsertedID != nil,
	)

	return nil
}

func (ds *DBStore) Get(ctx context.Context, piPushID string) (*DeliveryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
	defer cancel()

	if piPushID == "" {
		return nil, ErrEmptyPushID
	}

	filter := bson.D{{Key: "pi_push_id", Value: piPushID}}
	var result DeliveryResult

	startTime := time.Now()
	err := ds.db.Collection(ResultCollectionName).FindOne(ctx, filter).Decode(&result)
	logger.DebugF("delivery result query cost: %v", time.Since(startTime))

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database operation failed: %w", err)
	}
	return &result, nil
}

func (ds *DBStore) Delete(ctx context.Context, piPushID string) error {
	ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
	defer cancel()

	if piPushID == "" {
		return ErrEmptyPushID
	}

	filter := bson.D{{Key: "pi_push_id", Value: piPushID}}
	res, err := ds.db.Collection(ResultCollectionName).DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("database operation failed: %w", err)
	}

	logger.InfoF("Delivery result deleted: pi_push_id=%s, deleted=%d", piPushID, res.DeletedCount)
	return nil
}
