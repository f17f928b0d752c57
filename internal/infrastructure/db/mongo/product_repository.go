package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

const productsCollection = "products"

// ProductRepository implements ports.ProductRepository.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productsCollection)}
}

type mongoProduct struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Price         int64              `bson:"price"`
	Image         string             `bson:"image"`
	ImagePublicID string             `bson:"cloudinary_public_id,omitempty"`
	Category      string             `bson:"category"`
	Weight        string             `bson:"weight"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (m mongoProduct) toDomain() domain.Product {
	return domain.Product{
		ID:            m.ID.Hex(),
		Title:         m.Title,
		Description:   m.Description,
		Price:         m.Price,
		Image:         m.Image,
		ImagePublicID: m.ImagePublicID,
		Category:      m.Category,
		Weight:        m.Weight,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// editable holds the fields an update may change.
func editable(p *domain.Product) bson.M {
	return bson.M{
		"title":                p.Title,
		"description":          p.Description,
		"price":                p.Price,
		"image":                p.Image,
		"cloudinary_public_id": p.ImagePublicID,
		"category":             p.Category,
		"weight":               p.Weight,
		"updated_at":           p.UpdatedAt,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProduct{
		ID:            primitive.NewObjectID(),
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Image:         p.Image,
		ImagePublicID: p.ImagePublicID,
		Category:      p.Category,
		Weight:        p.Weight,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}

	docs, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID.Hex()] = d.toDomain()
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	docs, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		p := d.toDomain()
		out = append(out, &p)
	}
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoProduct
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": editable(p)}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrProductNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrProductExists
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

// Delete removes the product and returns what was stored.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *ProductRepository) UpsertByTitle(ctx context.Context, p *domain.Product) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set":         editable(p),
		"$setOnInsert": bson.M{"created_at": p.CreatedAt},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"title": p.Title}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert product %q: %w", p.Title, err)
	}
	return res.UpsertedCount > 0, nil
}

// EnsureIndexes creates the title and category indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]mongoProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return docs, nil
}
