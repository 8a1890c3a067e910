package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/options"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/maruko-pickup/api/internal/service"
	"github.com/rs/zerolog/log"
)

// ProductReader defines the DB methods needed to validate cart lines.
// Satisfied by *database.Queries.
type ProductReader interface {
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProductUsageOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductUsageOptionNamesRow, error)
	ListProductFlavorOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductFlavorOptionNamesRow, error)
}

// OrderCreator turns a checkout into an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// AddRequest is a line to add to a cart.
type AddRequest struct {
	ProductID      string          `json:"product_id"`
	Method         string          `json:"method"`
	Inputs         quantity.Inputs `json:"inputs"`
	SelectedUsage  string          `json:"selected_usage"`
	SelectedFlavor string          `json:"selected_flavor"`
	Remarks        string          `json:"remarks"`
}

// CheckoutRequest carries the customer and pickup fields of the order.
type CheckoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	PickupDate    string `json:"pickup_date"`
	PickupTime    string `json:"pickup_time"`
}

// Service implements cart operations.
type Service struct {
	store    Store
	products ProductReader
	orders   OrderCreator
	now      func() time.Time
}

// NewService creates a new cart Service.
func NewService(store Store, products ProductReader, orders OrderCreator) *Service {
	return &Service{store: store, products: products, orders: orders, now: time.Now}
}

// ValidCartID reports whether id can name a cart.
func ValidCartID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the computed cart.
func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	if !ValidCartID(cartID) {
		return Cart{}, ErrInvalidCartID
	}
	lines, err := s.store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	return Build(cartID, lines)
}

// Add validates req against the current product and merges it into the cart.
func (s *Service) Add(ctx context.Context, cartID string, req AddRequest) (Cart, error) {
	if !ValidCartID(cartID) {
		return Cart{}, ErrInvalidCartID
	}
	line, err := s.newLine(ctx, req)
	if err != nil {
		return Cart{}, err
	}
	lines, err := s.store.Update(ctx, cartID, func(lines []Line) ([]Line, error) {
		out, err := merge(lines, line)
		if err != nil {
			return nil, err
		}
		return out, checkTotal(out)
	})
	if err != nil {
		return Cart{}, err
	}
	return Build(cartID, lines)
}

func (s *Service) newLine(ctx context.Context, req AddRequest) (Line, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return Line{}, service.ErrInvalidProductID
	}
	product, err := s.products.GetProductForOrder(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, ErrProductNotFound
		}
		return Line{}, fmt.Errorf("get product: %w", err)
	}

	method, err := quantity.ParseMethod(req.Method)
	if err != nil {
		return Line{}, err
	}
	allowed := make([]quantity.Method, 0, len(product.QuantityMethods))
	for _, m := range product.QuantityMethods {
		allowed = append(allowed, quantity.Method(m))
	}
	res, err := quantity.Resolve(allowed, method, req.Inputs)
	if err != nil {
		return Line{}, err
	}
	basis := pricing.Basis(product.PriceBasis)
	if _, err := pricing.Price(pricing.Product{Basis: basis, BasePrice: product.BasePrice, Unit: product.Unit}, res); err != nil {
		return Line{}, err
	}

	allowedOpts, err := s.allowedOptions(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	sel, err := options.Resolve(allowedOpts, options.Selection{
		Usage:  strings.TrimSpace(req.SelectedUsage),
		Flavor: strings.TrimSpace(req.SelectedFlavor),
	})
	if err != nil {
		return Line{}, err
	}

	remarks := strings.TrimSpace(req.Remarks)
	if remarks != "" && !product.HasRemarks {
		return Line{}, ErrRemarksNotAllowed
	}

	return Line{
		ID:          uuid.NewString(),
		ProductID:   productID,
		ProductName: product.Name,
		Unit:        product.Unit,
		PriceBasis:  basis,
		UnitPrice:   product.BasePrice,
		Method:      method,
		Inputs:      res.Breakdown.Inputs(),
		Usage:       sel.Usage,
		Flavor:      sel.Flavor,
		Remarks:     remarks,
		AddedAt:     s.now().UTC(),
	}, nil
}

// checkTotal rejects a cart whose lines cannot all be priced.
func checkTotal(lines []Line) error {
	_, err := Build("", lines)
	return err
}

func (s *Service) allowedOptions(ctx context.Context, productID uuid.UUID) (options.Allowed, error) {
	ids := []uuid.UUID{productID}
	usages, err := s.products.ListProductUsageOptionNames(ctx, ids)
	if err != nil {
		return options.Allowed{}, fmt.Errorf("list usage options: %w", err)
	}
	flavors, err := s.products.ListProductFlavorOptionNames(ctx, ids)
	if err != nil {
		return options.Allowed{}, fmt.Errorf("list flavor options: %w", err)
	}
	var a options.Allowed
	for _, r := range usages {
		a.Usages = append(a.Usages, r.Name)
	}
	for _, r := range flavors {
		a.Flavors = append(a.Flavors, r.Name)
	}
	return a, nil
}

// SetPacks sets the pack count (Pack lines) or pack multiplier of a line.
func (s *Service) SetPacks(ctx context.Context, cartID, lineID string, packs int64) (Cart, error) {
	if !ValidCartID(cartID) {
		return Cart{}, ErrInvalidCartID
	}
	lines, err := s.store.Update(ctx, cartID, func(lines []Line) ([]Line, error) {
		for i, l := range lines {
			if l.ID != lineID {
				continue
			}
			res, err := l.resolve()
			if err != nil {
				return nil, err
			}
			b := res.Breakdown.WithPacks(packs)
			if _, err := quantity.Resolve([]quantity.Method{b.Method}, b.Method, b.Inputs()); err != nil {
				return nil, err
			}
			lines[i].Inputs = b.Inputs()
			return lines, checkTotal(lines)
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return Cart{}, err
	}
	return Build(cartID, lines)
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, cartID, lineID string) (Cart, error) {
	if !ValidCartID(cartID) {
		return Cart{}, ErrInvalidCartID
	}
	lines, err := s.store.Update(ctx, cartID, func(lines []Line) ([]Line, error) {
		for i, l := range lines {
			if l.ID == lineID {
				return append(lines[:i], lines[i+1:]...), nil
			}
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return Cart{}, err
	}
	return Build(cartID, lines)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if !ValidCartID(cartID) {
		return ErrInvalidCartID
	}
	return s.store.Clear(ctx, cartID)
}

// Checkout submits the cart as an order. The cart is cleared once the order
// is committed; a failure to clear is logged only.
func (s *Service) Checkout(ctx context.Context, cartID string, req CheckoutRequest) (*service.CreateOrderResult, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := service.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PickupDate:    req.PickupDate,
		PickupTime:    req.PickupTime,
		TotalAmount:   &c.TotalAmount,
		Items:         make([]service.CreateOrderItemRequest, len(c.Lines)),
	}
	for i, l := range c.Lines {
		canonical, subtotal := l.CanonicalQuantity, l.Subtotal
		order.Items[i] = service.CreateOrderItemRequest{
			ProductID:         l.ProductID.String(),
			Method:            string(l.Method),
			Inputs:            l.Inputs,
			CanonicalQuantity: &canonical,
			UnitPrice:         l.UnitPrice,
			Subtotal:          &subtotal,
			SelectedUsage:     l.Usage,
			SelectedFlavor:    l.Flavor,
			Remarks:           l.Remarks,
		}
	}

	result, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.store.Clear(context.WithoutCancel(ctx), cartID); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("clear cart after checkout")
	}
	return result, nil
}
