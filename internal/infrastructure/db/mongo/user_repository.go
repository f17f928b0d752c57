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
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection), now: time.Now}
}

type mongoCartItem struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type mongoUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password"`
	Verified         bool               `bson:"is_verified"`
	OTP              string             `bson:"otp,omitempty"`
	OTPExpiresAt     time.Time          `bson:"otp_expires_at,omitempty"`
	Cart             []mongoCartItem    `bson:"cart"`
	Wishlist         []string           `bson:"wishlist"`
	Orders           []string           `bson:"orders"`
	RefreshTokenHash string             `bson:"refresh_token,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	cart := make([]mongoCartItem, 0, len(u.Cart))
	for _, it := range u.Cart {
		cart = append(cart, mongoCartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	doc := mongoUser{
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Verified:         u.Verified,
		OTP:              u.OTP,
		OTPExpiresAt:     u.OTPExpiresAt,
		Cart:             cart,
		Wishlist:         nonNil(u.Wishlist),
		Orders:           nonNil(u.Orders),
		RefreshTokenHash: u.RefreshTokenHash,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func (m mongoUser) toDomain() *domain.User {
	cart := make([]domain.CartItem, 0, len(m.Cart))
	for _, it := range m.Cart {
		cart = append(cart, domain.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &domain.User{
		ID:               m.ID.Hex(),
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		Verified:         m.Verified,
		OTP:              m.OTP,
		OTPExpiresAt:     m.OTPExpiresAt,
		Cart:             cart,
		Wishlist:         nonNil(m.Wishlist),
		Orders:           nonNil(m.Orders),
		RefreshTokenHash: m.RefreshTokenHash,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// List returns every customer, newest first.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0, "otp": 0, "refresh_token": 0})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// UpdateRegistration only touches accounts that are still unverified.
func (r *UserRepository) UpdateRegistration(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.updateOne(ctx, bson.M{"_id": oid, "is_verified": false}, bson.M{"$set": bson.M{
		"name":           user.Name,
		"password":       user.PasswordHash,
		"otp":            user.OTP,
		"otp_expires_at": user.OTPExpiresAt,
	}}, true)
	return err
}

func (r *UserRepository) SetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"otp": otp, "otp_expires_at": expiresAt}})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"is_verified": true},
		"$unset": bson.M{"otp": "", "otp_expires_at": ""},
	})
}

func (r *UserRepository) SetRefreshHash(ctx context.Context, id, hash string) error {
	if hash == "" {
		return r.updateByID(ctx, id, bson.M{"$unset": bson.M{"refresh_token": ""}})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"refresh_token": hash}})
}

// SwapRefreshHash matches on the old hash so that of two concurrent
// rotations only the first one updates the document.
func (r *UserRepository) SwapRefreshHash(ctx context.Context, id, oldHash, newHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || oldHash == "" {
		return domain.ErrRefreshInvalid
	}
	res, err := r.updateOne(ctx,
		bson.M{"_id": oid, "refresh_token": oldHash},
		bson.M{"$set": bson.M{"refresh_token": newHash}}, false)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRefreshInvalid
	}
	return nil
}

func (r *UserRepository) AddCartItem(ctx context.Context, id, productID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	// Matches nothing when the product is already in the cart.
	_, err = r.updateOne(ctx,
		bson.M{"_id": oid, "cart.product_id": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"cart": mongoCartItem{ProductID: productID, Quantity: 1}}}, false)
	return err
}

func (r *UserRepository) SetCartQuantity(ctx context.Context, id, productID string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.updateOne(ctx,
		bson.M{"_id": oid, "cart.product_id": productID},
		bson.M{"$set": bson.M{"cart.$.quantity": quantity}}, false)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *UserRepository) RemoveCartItem(ctx context.Context, id, productID string) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"cart": bson.M{"product_id": productID}}})
}

func (r *UserRepository) ClearCart(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"cart": bson.A{}}})
}

func (r *UserRepository) AddWishlistItem(ctx context.Context, id, productID string) error {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"wishlist": productID}})
}

func (r *UserRepository) RemoveWishlistItem(ctx context.Context, id, productID string) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"wishlist": productID}})
}

func (r *UserRepository) AppendOrder(ctx context.Context, id, orderID string) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"orders": orderID}})
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.updateOne(ctx, bson.M{"_id": oid}, update, true)
	return err
}

// updateOne stamps updated_at on every write. With requireMatch a filter
// that matches nothing yields domain.ErrUserNotFound.
func (r *UserRepository) updateOne(ctx context.Context, filter, update bson.M, requireMatch bool) (*mongo.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = r.now().UTC()
	update["$set"] = set

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if requireMatch && res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return res, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
