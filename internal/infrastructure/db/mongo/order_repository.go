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

const ordersCollection = "orders"

// OrderRepository implements ports.OrderRepository.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

type mongoLineItem struct {
	ProductID string `bson:"product_id"`
	Title     string `bson:"title"`
	Quantity  int    `bson:"quantity"`
	UnitPrice int64  `bson:"price"`
}

type mongoAddress struct {
	FullName      string `bson:"full_name"`
	PhoneNumber   string `bson:"phone_number"`
	Email         string `bson:"email"`
	StreetAddress string `bson:"street_address"`
	City          string `bson:"city"`
	State         string `bson:"state"`
	Pincode       string `bson:"pincode"`
	Country       string `bson:"country"`
}

type mongoOrder struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	OrderID             string             `bson:"order_id"`
	UserID              string             `bson:"user_id"`
	Items               []mongoLineItem    `bson:"products"`
	Subtotal            int64              `bson:"subtotal"`
	DeliveryFee         int64              `bson:"delivery_fee"`
	TotalAmount         int64              `bson:"total_amount"`
	Status              string             `bson:"status"`
	PaymentStatus       string             `bson:"payment_status"`
	PaymentMethod       string             `bson:"payment_method"`
	PaymentID           string             `bson:"payment_id,omitempty"`
	Shipping            mongoAddress       `bson:"shipping_address"`
	PhoneNumber         string             `bson:"phone_number"`
	SpecialInstructions string             `bson:"special_instructions,omitempty"`
	CancelledAt         *time.Time         `bson:"cancelled_at,omitempty"`
	CancellationReason  string             `bson:"cancellation_reason,omitempty"`
	RefundInitiatedAt   *time.Time         `bson:"refund_initiated,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func toMongoOrder(o *domain.Order) mongoOrder {
	items := make([]mongoLineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, mongoLineItem(it))
	}
	return mongoOrder{
		OrderID:             o.OrderID,
		UserID:              o.UserID,
		Items:               items,
		Subtotal:            o.Subtotal,
		DeliveryFee:         o.DeliveryFee,
		TotalAmount:         o.TotalAmount,
		Status:              string(o.Status),
		PaymentStatus:       string(o.PaymentStatus),
		PaymentMethod:       string(o.PaymentMethod),
		PaymentID:           o.PaymentID,
		Shipping:            mongoAddress(o.Shipping),
		PhoneNumber:         o.PhoneNumber,
		SpecialInstructions: o.SpecialInstructions,
		CancelledAt:         o.CancelledAt,
		CancellationReason:  o.CancellationReason,
		RefundInitiatedAt:   o.RefundInitiatedAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func (m mongoOrder) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.LineItem(it))
	}
	return &domain.Order{
		ID:                  m.ID.Hex(),
		OrderID:             m.OrderID,
		UserID:              m.UserID,
		Items:               items,
		Subtotal:            m.Subtotal,
		DeliveryFee:         m.DeliveryFee,
		TotalAmount:         m.TotalAmount,
		Status:              domain.OrderStatus(m.Status),
		PaymentStatus:       domain.PaymentStatus(m.PaymentStatus),
		PaymentMethod:       domain.PaymentMethod(m.PaymentMethod),
		PaymentID:           m.PaymentID,
		Shipping:            domain.ShippingAddress(m.Shipping),
		PhoneNumber:         m.PhoneNumber,
		SpecialInstructions: m.SpecialInstructions,
		CancelledAt:         m.CancelledAt,
		CancellationReason:  m.CancellationReason,
		RefundInitiatedAt:   m.RefundInitiatedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// Create inserts o. The unique order_id index rejects a second order for
// the same gateway order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoOrder(o)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrOrderExists
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOrder
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) ExistsByOrderID(ctx context.Context, gatewayOrderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"order_id": gatewayOrderID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count orders: %w", err)
	}
	return n > 0, nil
}

func (r *OrderRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []*domain.Order{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, 0)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{}, 0)
}

// UpdateLifecycle is a compare-and-set on the status field.
func (r *OrderRepository) UpdateLifecycle(ctx context.Context, o *domain.Order, expected domain.OrderStatus) error {
	oid, err := primitive.ObjectIDFromHex(o.ID)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
		"updated_at":     o.UpdatedAt,
	}
	if o.CancelledAt != nil {
		set["cancelled_at"] = o.CancelledAt
		set["cancellation_reason"] = o.CancellationReason
	}
	if o.RefundInitiatedAt != nil {
		set["refund_initiated"] = o.RefundInitiatedAt
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "status": string(expected)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderChanged
	}
	return nil
}

type statsRow struct {
	TotalOrders       int64 `bson:"totalOrders"`
	TotalProductsSold int64 `bson:"totalProductsSold"`
	TotalRevenue      int64 `bson:"totalRevenue"`
	PendingOrders     int64 `bson:"pendingOrders"`
	CompletedOrders   int64 `bson:"completedOrders"`
	CODOrders         int64 `bson:"codOrders"`
	OnlineOrders      int64 `bson:"onlineOrders"`
}

func countWhere(field, value string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$" + field, value}}, 1, 0}}}
}

// Stats aggregates every order in one pass and attaches the most recent ones.
func (r *OrderRepository) Stats(ctx context.Context, recent int64) (*domain.OrderStats, error) {
	aggCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalOrders":       bson.M{"$sum": 1},
			"totalProductsSold": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$products", bson.A{}}}}},
			"totalRevenue":      bson.M{"$sum": "$total_amount"},
			"pendingOrders":     countWhere("status", string(domain.OrderPending)),
			"completedOrders":   countWhere("status", string(domain.OrderDelivered)),
			"codOrders":         countWhere("payment_method", string(domain.PaymentCOD)),
			"onlineOrders":      countWhere("payment_method", string(domain.PaymentOnline)),
		}}},
	}

	cur, err := r.col.Aggregate(aggCtx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate order stats: %w", err)
	}
	var rows []statsRow
	if err := cur.All(aggCtx, &rows); err != nil {
		return nil, fmt.Errorf("aggregate order stats: %w", err)
	}

	stats := &domain.OrderStats{RecentOrders: []domain.Order{}}
	if len(rows) > 0 {
		row := rows[0]
		stats.TotalOrders = row.TotalOrders
		stats.TotalProductsSold = row.TotalProductsSold
		stats.TotalRevenue = row.TotalRevenue
		stats.PendingOrders = row.PendingOrders
		stats.CompletedOrders = row.CompletedOrders
		stats.CODOrders = row.CODOrders
		stats.OnlineOrders = row.OnlineOrders
	}

	latest, err := r.find(ctx, bson.M{}, recent)
	if err != nil {
		return nil, err
	}
	for _, o := range latest {
		stats.RecentOrders = append(stats.RecentOrders, *o)
	}
	return stats, nil
}

// EnsureIndexes creates the unique order_id index plus listing indexes.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// find returns matching orders newest first. A zero limit returns all.
func (r *OrderRepository) find(ctx context.Context, filter bson.M, limit int64) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []mongoOrder
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
