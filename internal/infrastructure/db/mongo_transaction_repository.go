package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
)

// NewMongoConnector returns a connector that dials and pings the mongodb deployment at uri
func NewMongoConnector(uri string, timeout time.Duration, log logger.Logger) *Connector[*mongo.Client] {
	return NewConnector("mongodb", func(ctx context.Context) (*mongo.Client, error) {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}

		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		return client, nil
	}, func(ctx context.Context, client *mongo.Client) error {
		return client.Disconnect(ctx)
	}, timeout, log)
}

// mongoTransaction is the stored shape of a transaction document
type mongoTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Amount      float64            `bson:"amount"`
	Date        string             `bson:"date"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d mongoTransaction) toEntity() entity.Transaction {
	return entity.Transaction{
		ID:          d.ID.Hex(),
		Amount:      d.Amount,
		Date:        d.Date,
		Description: d.Description,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// MongoTransactionRepository implements the transaction repository interface using mongodb
type MongoTransactionRepository struct {
	conn     *Connector[*mongo.Client]
	database string
	now      func() time.Time
}

// NewMongoTransactionRepository creates a new mongodb transaction repository
func NewMongoTransactionRepository(conn *Connector[*mongo.Client], database string) *MongoTransactionRepository {
	return &MongoTransactionRepository{conn: conn, database: database, now: time.Now}
}

func (r *MongoTransactionRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(r.database).Collection(transactionsCollection), nil
}

// List returns every stored transaction, most recent first
func (r *MongoTransactionRepository) List(ctx context.Context) ([]entity.Transaction, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}
	defer cur.Close(ctx)

	var docs []mongoTransaction
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	list := make([]entity.Transaction, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toEntity())
	}
	return list, nil
}

// Create persists a new transaction, assigning its ID and timestamps
func (r *MongoTransactionRepository) Create(ctx context.Context, input entity.TransactionInput) (*entity.Transaction, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}

	// Mongo stores milliseconds, so the returned record is truncated to match
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoTransaction{
		ID:          primitive.NewObjectID(),
		Amount:      *input.Amount,
		Date:        input.Date,
		Description: input.Description,
		Category:    input.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, &entity.StoreError{Op: "create", Err: err}
	}

	tx := doc.toEntity()
	return &tx, nil
}

// FindByID retrieves a transaction by its unique identifier
func (r *MongoTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "find", Err: err}
	}

	var doc mongoTransaction
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, wrapMongoError("find", id, err)
	}

	tx := doc.toEntity()
	return &tx, nil
}

// Update replaces the client-supplied fields of an existing transaction
func (r *MongoTransactionRepository) Update(ctx context.Context, id string, input entity.TransactionInput) (*entity.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "update", Err: err}
	}

	update := bson.M{"$set": bson.M{
		"amount":      *input.Amount,
		"date":        input.Date,
		"description": input.Description,
		"category":    input.Category,
		"updatedAt":   r.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTransaction
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, wrapMongoError("update", id, err)
	}

	tx := doc.toEntity()
	return &tx, nil
}

// Delete removes a transaction
func (r *MongoTransactionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return &entity.StoreError{Op: "delete", Err: err}
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return &entity.StoreError{Op: "delete", Err: err}
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return nil
}

func wrapMongoError(op, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return &entity.StoreError{Op: op, Err: err}
}

// mongoBudget is the stored shape of a budget document, keyed by category
type mongoBudget struct {
	Category string  `bson:"_id"`
	Amount   float64 `bson:"amount"`
}

// MongoBudgetRepository implements the budget repository interface using mongodb
type MongoBudgetRepository struct {
	conn     *Connector[*mongo.Client]
	database string
}

// NewMongoBudgetRepository creates a new mongodb budget repository
func NewMongoBudgetRepository(conn *Connector[*mongo.Client], database string) *MongoBudgetRepository {
	return &MongoBudgetRepository{conn: conn, database: database}
}

func (r *MongoBudgetRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(r.database).Collection(budgetsCollection), nil
}

// Budgets returns every stored budget keyed by category
func (r *MongoBudgetRepository) Budgets(ctx context.Context) (map[string]float64, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}

	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}
	defer cur.Close(ctx)

	var docs []mongoBudget
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &entity.StoreError{Op: "budgets", Err: err}
	}

	budgets := make(map[string]float64, len(docs))
	for _, d := range docs {
		budgets[d.Category] = d.Amount
	}
	return budgets, nil
}

// SetBudget stores the budget for a category, replacing any previous value
func (r *MongoBudgetRepository) SetBudget(ctx context.Context, category string, amount float64) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}

	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": category},
		bson.M{"$set": bson.M{"amount": amount}},
		options.Update().SetUpsert(true))
	if err != nil {
		return &entity.StoreError{Op: "set budget", Err: err}
	}
	return nil
}
