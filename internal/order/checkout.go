package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StoreFront/internal/cart"
	"StoreFront/internal/catalog"
	"StoreFront/internal/kv"
)

var ErrEmptyCart = errors.New("cart is empty")

// Result describes a checkout attempt. When OK is false, Failed is the cart
// line that could not be taken from stock and Taken lists the lines that
// were already decremented before it.
type Result struct {
	OK     bool        `json:"ok"`
	Order  *Order      `json:"order,omitempty"`
	Failed *cart.Item  `json:"failed,omitempty"`
	Taken  []cart.Item `json:"taken,omitempty"`
}

type Checkout struct {
	Catalog *catalog.Store
	Cart    *cart.Store
	Orders  *Store
	Log     *zap.Logger
	Metrics *Metrics

	// Writer must be the one shared by Catalog, Cart and Orders. It is held
	// for the whole run so concurrent checkouts cannot sell the same stock.
	Writer *kv.Writer

	Now func() time.Time
}

// Run decrements stock for every cart line in order and stops at the first
// line that cannot be served. Lines decremented before that stop stay
// decremented and the cart is kept. When every line succeeds the cart is
// cleared and an order receipt is recorded for email.
func (c *Checkout) Run(ctx context.Context, email string) (Result, error) {
	var res Result
	err := c.Writer.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = c.run(ctx, email)
		return err
	})
	return res, err
}

func (c *Checkout) run(ctx context.Context, email string) (Result, error) {
	items, err := c.Cart.List(ctx)
	if err != nil {
		c.Metrics.observe(resultError)
		return Result{}, err
	}
	if len(items) == 0 {
		c.Metrics.observe(resultEmpty)
		return Result{}, ErrEmptyCart
	}

	taken := make([]cart.Item, 0, len(items))
	for _, it := range items {
		ok, err := c.Catalog.DecreaseStock(ctx, it.ID, it.Qty)
		if err != nil {
			c.Metrics.observe(resultError)
			return Result{}, err
		}
		if !ok {
			failed := it
			c.log().Warn("checkout aborted: insufficient stock",
				zap.String("product_id", it.ID),
				zap.Int("qty", it.Qty),
				zap.Int("already_taken", len(taken)),
			)
			c.Metrics.observe(resultShortfall)
			return Result{Failed: &failed, Taken: taken}, nil
		}
		taken = append(taken, it)
	}

	if err := c.Cart.Clear(ctx); err != nil {
		c.Metrics.observe(resultError)
		return Result{}, err
	}

	o := Order{
		ID:        "o_" + uuid.NewString(),
		Email:     email,
		Items:     items,
		Total:     cart.Total(items),
		Status:    StatusConfirmed,
		CreatedAt: c.now(),
	}
	if c.Orders != nil {
		if err := c.Orders.Create(ctx, o); err != nil {
			c.Metrics.observe(resultError)
			return Result{}, err
		}
	}

	c.Metrics.observe(resultConfirmed)
	c.log().Info("checkout confirmed", zap.String("order_id", o.ID), zap.Int("lines", len(items)))
	return Result{OK: true, Order: &o, Taken: taken}, nil
}

func (c *Checkout) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func (c *Checkout) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}
