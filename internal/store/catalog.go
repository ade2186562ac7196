package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	opListProducts  = "store.list_products"
	opCreateProduct = "store.create_product"
	opDeleteProduct = "store.delete_product"
	opCountOrders   = "store.count_orders"
	opListOrders    = "store.list_orders"
	opOrderRevenue  = "store.order_revenue"
	opOrdersSince   = "store.orders_since"
	opListTx        = "store.list_transactions"
)

// ListProducts returns all products, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		s.logError(opListProducts, "query_failed", err)
		return nil, newStoreError(opListProducts, "query_failed", err)
	}
	return products, nil
}

// NewProduct carries the fields of the add-product form.
type NewProduct struct {
	Name        string
	Keyword     string
	Description string
	Price       float64
	Stock       int64
	MediaURL    string
	MediaType   string
	GroupJID    string
	CreatedBy   string
}

// CreateProduct inserts one product. The keyword the bot matches on is
// lowercased here so chat commands are case-insensitive.
func (s *Store) CreateProduct(ctx context.Context, input NewProduct) (Product, error) {
	name := strings.TrimSpace(input.Name)
	keyword := strings.ToLower(strings.TrimSpace(input.Keyword))
	if name == "" || keyword == "" || input.Price < 0 || input.Stock < 0 {
		return Product{}, newStoreError(opCreateProduct, "invalid_input", ErrInvalidRow)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreateProduct, "id_generation_failed", err)
		return Product{}, newStoreError(opCreateProduct, "id_generation_failed", err)
	}

	mediaType := strings.TrimSpace(input.MediaType)
	if mediaType == "" {
		mediaType = "image"
	}
	product := Product{
		ID:          id,
		Name:        name,
		Keyword:     keyword,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		MediaURL:    input.MediaURL,
		MediaType:   mediaType,
		GroupJID:    input.GroupJID,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		s.logError(opCreateProduct, "insert_failed", err, zap.String("keyword", keyword))
		return Product{}, newStoreError(opCreateProduct, "insert_failed", err)
	}
	return product, nil
}

// DeleteProduct removes one product by identifier.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{}).Error; err != nil {
		s.logError(opDeleteProduct, "delete_failed", err, zap.String("product_id", id))
		return newStoreError(opDeleteProduct, "delete_failed", err)
	}
	return nil
}

// CountOrders returns the total number of orders.
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Order{}).Count(&count).Error; err != nil {
		s.logError(opCountOrders, "query_failed", err)
		return 0, newStoreError(opCountOrders, "query_failed", err)
	}
	return count, nil
}

// ListOrders returns up to limit orders, newest first.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		s.logError(opListOrders, "query_failed", err)
		return nil, newStoreError(opListOrders, "query_failed", err)
	}
	return orders, nil
}

// CompletedRevenue sums the total amount of completed orders.
func (s *Store) CompletedRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&Order{}).
		Where("status = ?", OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		s.logError(opOrderRevenue, "query_failed", err)
		return 0, newStoreError(opOrderRevenue, "query_failed", err)
	}
	return total, nil
}

// CompletedOrdersSince returns completed orders created at or after since,
// the input of the trailing-week timeline.
func (s *Store) CompletedOrdersSince(ctx context.Context, since time.Time) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", OrderStatusCompleted, since).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		s.logError(opOrdersSince, "query_failed", err)
		return nil, newStoreError(opOrdersSince, "query_failed", err)
	}
	return orders, nil
}

// ListTransactions returns up to limit transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var transactions []Transaction
	if err := query.Find(&transactions).Error; err != nil {
		s.logError(opListTx, "query_failed", err)
		return nil, newStoreError(opListTx, "query_failed", err)
	}
	return transactions, nil
}
