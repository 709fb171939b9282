package internal

import (
	"context"
	"duitku/config"
	"duitku/services"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionLog = "payment_log"

// MongoDB stores log records; it is the only persistence the relay has.
type MongoDB struct {
	client   *mongo.Client
	database string
}

func NewMongoClient(ctx context.Context, conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, fmt.Errorf("mongo is disabled")
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri).SetConnectTimeout(10 * time.Second)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &MongoDB{
		client:   client,
		database: conf.Mongo.Database,
	}, nil
}

func (m *MongoDB) WriteLogMessage(ctx context.Context, data services.Data) error {
	collection := m.client.Database(m.database).Collection(collectionLog)
	_, err := collection.InsertOne(ctx, data)
	return err
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
