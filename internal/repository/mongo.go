package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sumire/bugtracker/internal/domain"
)

const (
	mongoCollection = "bugs"
	// Server code for a write rejected by the collection's $jsonSchema validator.
	mongoDocumentValidationFailure = 121
)

// mongoBug is the stored shape of a bug document.
type mongoBug struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func toMongoBug(b domain.Bug) mongoBug {
	return mongoBug{
		Title:       b.Title,
		Description: b.Description,
		Status:      string(b.Status),
		Priority:    string(b.Priority),
		CreatedAt:   b.CreatedAt,
	}
}

func (d mongoBug) bug() domain.Bug {
	return domain.Bug{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.BugStatus(d.Status),
		Priority:    domain.BugPriority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// MongoBugRepository stores bugs in a MongoDB collection.
type MongoBugRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoBugRepository connects to uri and prepares the bugs collection in database.
func NewMongoBugRepository(ctx context.Context, uri, database string) (*MongoBugRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create createdAt index: %w", err)
	}

	return &MongoBugRepository{
		client: client,
		coll:   coll,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

// List returns all bugs, newest first.
func (r *MongoBugRepository) List(ctx context.Context) ([]domain.Bug, error) {
	cur, err := r.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find bugs: %w", classifyMongoError(err))
	}

	var docs []mongoBug
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bugs: %w", err)
	}

	bugs := make([]domain.Bug, 0, len(docs))
	for _, d := range docs {
		bugs = append(bugs, d.bug())
	}
	return bugs, nil
}

// Insert stores a new bug, assigning its ID and creation time.
func (r *MongoBugRepository) Insert(ctx context.Context, bug domain.Bug) (*domain.Bug, error) {
	if err := conform(&bug); err != nil {
		return nil, err
	}
	bug.CreatedAt = r.now()

	doc := toMongoBug(bug)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert bug: %w", classifyMongoError(err))
	}

	stored := doc.bug()
	return &stored, nil
}

// Get retrieves a bug by its ID. Malformed IDs are reported as not found.
func (r *MongoBugRepository) Get(ctx context.Context, id string) (*domain.Bug, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc mongoBug
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find bug by id %s: %w", id, classifyMongoError(err))
	}

	bug := doc.bug()
	return &bug, nil
}

// Update merges the input into the stored document and replaces it.
func (r *MongoBugRepository) Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	stored, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := stored.Apply(in)
	if err := conform(&updated); err != nil {
		return nil, err
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	replacement := toMongoBug(updated)

	var doc mongoBug
	err = r.coll.FindOneAndReplace(ctx, bson.M{"_id": oid}, replacement,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("replace bug %s: %w", id, classifyMongoError(err))
	}

	bug := doc.bug()
	return &bug, nil
}

// Delete removes a bug and returns the removed record.
func (r *MongoBugRepository) Delete(ctx context.Context, id string) (*domain.Bug, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc mongoBug
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete bug %s: %w", id, classifyMongoError(err))
	}

	bug := doc.bug()
	return &bug, nil
}

// Close disconnects the client.
func (r *MongoBugRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func classifyMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}

	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(mongoDocumentValidationFailure) {
		return &domain.SchemaError{Fields: map[string]string{
			"document": "Document failed validation",
		}}
	}
	return err
}
