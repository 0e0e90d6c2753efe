package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/syphaxalili/b2connect-store-sub001/model"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when a conditional decrement matches no
	// document, i.e. the product does not have enough stock left. The
	// failed decrement is the authoritative stock check.
	ErrOutOfStock = errors.New("insufficient stock")
)

type Store struct {
	products   *mongo.Collection
	categories *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
	}
}

// FindByIDs loads the products for the given hex ids. A missing or
// malformed id yields ErrNotFound.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrNotFound
		}
		oids = append(oids, oid)
	}

	cur, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) != len(oids) {
		return nil, ErrNotFound
	}

	// Return products in request order so callers can zip them with
	// their quantities.
	byID := make(map[string]model.Product, len(out))
	for _, p := range out {
		byID[p.ID.Hex()] = p
	}
	ordered := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, ErrNotFound
		}
		ordered = append(ordered, p)
	}
	return ordered, nil
}

// DecrementStock takes qty units off a product in one conditional
// update. The stock filter makes the operation fail instead of driving
// stock below zero, even under concurrent checkouts.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": oid, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOutOfStock
	}
	return nil
}

// IncrementStock gives units back, compensating a reservation that
// could not be turned into an order.
func (s *Store) IncrementStock(ctx context.Context, id string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.products.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	return err
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p model.Product
	err = s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, categoryID string) ([]model.Product, error) {
	filter := bson.M{}
	if categoryID != "" {
		oid, err := primitive.ObjectIDFromHex(categoryID)
		if err != nil {
			return nil, ErrNotFound
		}
		filter["categoryId"] = oid
	}

	cur, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	_, err := s.products.InsertOne(ctx, p)
	return err
}

func (s *Store) UpdateProduct(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Category
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	_, err := s.categories.InsertOne(ctx, c)
	return err
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.categories.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
