package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/store"
	"github.com/pawmart/pawmart/pkg/models"
)

// Dispatcher maps a decided tool to its executor. Each allow-listed
// ToolKind is bound to exactly one method at construction, so an unknown
// tool cannot reach execution. Authorization lives inside each executor:
// catalog queries are public while order/user access needs an identity,
// and the dispatcher has no business knowing which is which.
type Dispatcher struct {
	store store.Store
	exec  map[models.ToolKind]executorFunc
}

type executorFunc func(ctx context.Context, args map[string]any, ac auth.Context) (*models.ToolResult, error)

func NewDispatcher(s store.Store) *Dispatcher {
	d := &Dispatcher{store: s}
	d.exec = map[models.ToolKind]executorFunc{
		models.ToolQueryDB:     d.queryDB,
		models.ToolCreateOrder: d.createOrder,
	}
	return d
}

// Dispatch runs the decided tool. Classified failures (validation, auth,
// not-found, conflict) come back as a terminal ToolResult whose Message
// the composer returns verbatim — the conversation continues and the HTTP
// request still succeeds. Unclassified errors propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, decision models.IntentDecision, ac auth.Context) (*models.ToolResult, error) {
	exec, ok := d.exec[decision.Tool]
	if !ok {
		return nil, fmt.Errorf("no executor bound for tool %q", decision.Tool)
	}

	res, err := exec(ctx, decision.Args, ac)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			log.Debug().
				Str("tool", string(decision.Tool)).
				Int("kind", int(te.Kind)).
				Str("message", te.Message).
				Msg("tool failure rendered as reply")
			return &models.ToolResult{Message: replyFor(te)}, nil
		}
		return nil, fmt.Errorf("execute %s: %w", decision.Tool, err)
	}
	return res, nil
}

// replyFor turns a classified failure into the assistant-facing sentence.
func replyFor(te *ToolError) string {
	switch te.Kind {
	case FailAuthRequired:
		return "你需要先登录才能继续：" + te.Message
	case FailNotFound:
		return "没有找到对应的商品：" + te.Message
	case FailConflict:
		return "暂时无法完成下单：" + te.Message
	default:
		return "这个请求有点问题：" + te.Message
	}
}

// ── query_db ────────────────────────────────────────────────

func (d *Dispatcher) queryDB(ctx context.Context, args map[string]any, ac auth.Context) (*models.ToolResult, error) {
	resource, _ := args["resource"].(string)
	limit := int(argNumber(args, "limit"))

	switch models.Resource(resource) {
	case models.ResourceProducts:
		category, _ := args["category"].(string)
		rows, err := d.store.ListProducts(ctx, category, limit)
		if err != nil {
			return nil, err
		}
		return &models.ToolResult{Resource: models.ResourceProducts, Rows: rows}, nil

	case models.ResourceUser:
		if !ac.Authenticated() {
			return nil, authRequiredf("查询用户信息需要登录")
		}
		// Keyed by the resolved identity, never by a caller-supplied id:
		// another account's row is structurally unreachable.
		account, err := d.store.GetAccount(ctx, ac.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, notFoundf("账号不存在")
			}
			return nil, err
		}
		return &models.ToolResult{Resource: models.ResourceUser, Users: []models.UserRecord{account.Record()}}, nil

	case models.ResourceOrders:
		if !ac.Authenticated() {
			return nil, authRequiredf("查询订单需要登录")
		}
		orders, err := d.store.ListOrders(ctx, ac.UserID, limit)
		if err != nil {
			return nil, err
		}
		return &models.ToolResult{Resource: models.ResourceOrders, Orders: orders}, nil

	default:
		return nil, validationf("不支持的 resource: %s", resource)
	}
}

// ── create_order ────────────────────────────────────────────

func (d *Dispatcher) createOrder(ctx context.Context, args map[string]any, ac auth.Context) (*models.ToolResult, error) {
	if !ac.Authenticated() {
		return nil, authRequiredf("下单需要登录")
	}

	pid := argNumber(args, "productId")
	if pid <= 0 {
		// No usable id: try resolving a product name instead.
		if name, _ := args["productName"].(string); name != "" {
			return d.createOrderByName(ctx, args, ac, name)
		}
		return nil, validationf("productId 不合法")
	}
	if pid != float64(int64(pid)) {
		return nil, validationf("productId 必须是正整数")
	}
	productID := int64(pid)

	amount := argNumber(args, "amount")
	if amount != float64(int(amount)) || amount < 1 || amount > 99 {
		return nil, validationf("amount 必须是 1-99 的整数")
	}

	product, err := d.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("商品 %d 不存在", productID)
		}
		return nil, err
	}

	// Total price defaults to unit price × amount; an explicit valid
	// override wins.
	price := product.Price * amount
	if override := argNumber(args, "price"); override > 0 {
		price = override
	}
	if price <= 0 {
		return nil, validationf("price 不合法")
	}

	order := &models.Order{
		AccountID: ac.UserID,
		Date:      time.Now(),
		Status:    models.OrderStatusUnfulfilled,
		ProductID: productID,
		Amount:    int(amount),
		Price:     price,
	}
	if err := d.store.CreateOrder(ctx, order); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, notFoundf("商品 %d 不存在", productID)
		case errors.Is(err, store.ErrInsufficientStock):
			return nil, conflictf("商品「%s」库存不足", product.Name)
		default:
			return nil, err
		}
	}

	log.Info().
		Int64("order_id", order.ID).
		Int64("account_id", ac.UserID).
		Int64("product_id", productID).
		Int("amount", order.Amount).
		Msg("order created via assistant")

	return &models.ToolResult{OrderID: order.ID}, nil
}

// createOrderByName resolves an exact product name to an id and re-enters
// the id path. An unresolved name is not an error: the executor returns a
// guidance payload carrying the full catalog so the composer can ask the
// model to re-prompt the user with names that exist.
func (d *Dispatcher) createOrderByName(ctx context.Context, args map[string]any, ac auth.Context, name string) (*models.ToolResult, error) {
	product, err := d.store.GetProductByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			all, listErr := d.store.ListProducts(ctx, "", 50)
			if listErr != nil {
				return nil, listErr
			}
			return &models.ToolResult{AllProducts: all, UserInput: name}, nil
		}
		return nil, err
	}

	resolved := make(map[string]any, len(args))
	for k, v := range args {
		resolved[k] = v
	}
	resolved["productId"] = float64(product.ID)
	return d.createOrder(ctx, resolved, ac)
}

// argNumber reads a numeric argument leniently: model-emitted JSON may
// carry numbers as float64, json.Number, or digit strings. Returns 0 when
// absent or unusable.
func argNumber(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
