package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/store"
	"github.com/pawmart/pawmart/pkg/models"
)

// newTestDispatcher seeds an in-memory store with a small catalog and one
// account.
func newTestDispatcher(t *testing.T) (*Dispatcher, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	products := []models.Product{
		{Name: "金毛狗粮", Price: 120, Stock: 10, Category: "food"},
		{Name: "猫咪零食", Price: 30, Stock: 5, Category: "food"},
		{Name: "猫爬架", Price: 260, Stock: 3, Category: "furniture"},
		{Name: "耐咬玩具球", Price: 15, Stock: 40, Category: "toy"},
	}
	for i := range products {
		if err := s.CreateProduct(ctx, &products[i]); err != nil {
			t.Fatalf("CreateProduct() error = %v", err)
		}
	}
	if err := s.CreateAccount(ctx, &models.Account{PhoneNumber: "13800000001", Password: "pw", Name: "测试用户"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return NewDispatcher(s), s
}

func dispatch(t *testing.T, d *Dispatcher, tool models.ToolKind, args map[string]any, ac auth.Context) *models.ToolResult {
	t.Helper()
	res, err := d.Dispatch(context.Background(), models.IntentDecision{ShouldUseTool: true, Tool: tool, Args: args}, ac)
	if err != nil {
		t.Fatalf("Dispatch(%s) error = %v", tool, err)
	}
	return res
}

const userID = int64(1)

// ── query_db ────────────────────────────────────────────────

func TestQueryDB_ProductsByCategory(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "products", "category": "food"}, auth.Context{})
	if res.Resource != models.ResourceProducts {
		t.Fatalf("resource = %q, want products", res.Resource)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(res.Rows))
	}
	for _, p := range res.Rows {
		if p.Category != "food" {
			t.Errorf("row %q category = %q, want food", p.Name, p.Category)
		}
	}
	// Most recently added first.
	if res.Rows[0].ID < res.Rows[1].ID {
		t.Errorf("rows not in descending id order: %d then %d", res.Rows[0].ID, res.Rows[1].ID)
	}
}

func TestQueryDB_ProductsUnfiltered(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "products"}, auth.Context{})
	if len(res.Rows) != 4 {
		t.Fatalf("len(rows) = %d, want full catalog of 4", len(res.Rows))
	}
}

func TestQueryDB_UnknownResource(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "secrets"}, auth.Context{UserID: userID})
	if res.Message == "" {
		t.Fatalf("unknown resource did not produce a terminal reply: %+v", res)
	}
}

func TestQueryDB_OrdersRequireAuth(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, resource := range []string{"orders", "user"} {
		res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": resource}, auth.Context{})
		if res.Message == "" {
			t.Errorf("anonymous %s query returned data instead of a sign-in reply: %+v", resource, res)
		}
		if !strings.Contains(res.Message, "登录") {
			t.Errorf("%s reply = %q, want sign-in guidance", resource, res.Message)
		}
	}
}

func TestQueryDB_UserReturnsOwnRecordOnly(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "user"}, auth.Context{UserID: userID})
	if len(res.Users) != 1 || res.Users[0].ID != userID {
		t.Fatalf("user query = %+v, want exactly the caller's record", res.Users)
	}
	if res.Users[0].Name != "测试用户" {
		t.Errorf("name = %q, want 测试用户", res.Users[0].Name)
	}
}

func TestQueryDB_OrdersScopedToOwner(t *testing.T) {
	d, s := newTestDispatcher(t)
	ctx := context.Background()

	if err := s.CreateAccount(ctx, &models.Account{PhoneNumber: "13800000002", Password: "pw", Name: "别人"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	mine := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(1), "amount": float64(1)}, auth.Context{UserID: userID})
	if mine.OrderID == 0 {
		t.Fatalf("setup order failed: %+v", mine)
	}

	res := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "orders"}, auth.Context{UserID: 2})
	if len(res.Orders) != 0 {
		t.Fatalf("other account sees %d orders, want 0", len(res.Orders))
	}
}

// ── create_order ────────────────────────────────────────────

func TestCreateOrder_RequiresAuth(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(1), "amount": float64(1)}, auth.Context{})
	if res.Message == "" || !strings.Contains(res.Message, "登录") {
		t.Fatalf("anonymous create_order reply = %+v, want sign-in guidance", res)
	}
}

func TestCreateOrder_AmountValidation(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, amount := range []float64{0, 100, -3, 2.5} {
		res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(1), "amount": amount}, auth.Context{UserID: userID})
		if res.Message == "" {
			t.Errorf("amount %v accepted, want validation reply", amount)
		}
	}
}

func TestCreateOrder_ProductIDValidation(t *testing.T) {
	d, s := newTestDispatcher(t)

	// A fractional id must be rejected, not truncated to a neighboring
	// product.
	for _, pid := range []any{float64(1.5), "1.5"} {
		res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": pid, "amount": float64(2)}, auth.Context{UserID: userID})
		if res.Message == "" {
			t.Errorf("productId %v accepted, want validation reply", pid)
		}
	}

	p, err := s.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.Stock != 10 {
		t.Errorf("stock = %d, want untouched 10", p.Stock)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// Product 2 has stock 5.
	res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(2), "amount": float64(50)}, auth.Context{UserID: userID})
	if res.Message == "" || !strings.Contains(res.Message, "库存") {
		t.Fatalf("oversized order reply = %+v, want stock conflict", res)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(999), "amount": float64(1)}, auth.Context{UserID: userID})
	if res.Message == "" {
		t.Fatalf("unknown product accepted: %+v", res)
	}
}

func TestCreateOrder_Success(t *testing.T) {
	d, s := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder, map[string]any{"productId": float64(1), "amount": float64(3)}, auth.Context{UserID: userID})
	if res.OrderID == 0 {
		t.Fatalf("create_order result = %+v, want an order id", res)
	}

	// Stock decremented atomically with the insert.
	p, err := s.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.Stock != 7 {
		t.Errorf("stock = %d, want 7 after ordering 3 of 10", p.Stock)
	}

	orders := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "orders"}, auth.Context{UserID: userID})
	if len(orders.Orders) != 1 {
		t.Fatalf("len(orders) = %d, want 1", len(orders.Orders))
	}
	if orders.Orders[0].Status != models.OrderStatusUnfulfilled {
		t.Errorf("status = %q, want the unfulfilled sentinel", orders.Orders[0].Status)
	}
	if orders.Orders[0].Price != 360 {
		t.Errorf("price = %v, want 360 (120 × 3)", orders.Orders[0].Price)
	}
}

func TestCreateOrder_PriceOverride(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder,
		map[string]any{"productId": float64(1), "amount": float64(2), "price": float64(99)},
		auth.Context{UserID: userID})
	if res.OrderID == 0 {
		t.Fatalf("create_order with override failed: %+v", res)
	}

	orders := dispatch(t, d, models.ToolQueryDB, map[string]any{"resource": "orders"}, auth.Context{UserID: userID})
	if orders.Orders[0].Price != 99 {
		t.Errorf("price = %v, want explicit override 99", orders.Orders[0].Price)
	}
}

func TestCreateOrder_ByNameResolves(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder,
		map[string]any{"productName": "耐咬玩具球", "amount": float64(1)},
		auth.Context{UserID: userID})
	if res.OrderID == 0 {
		t.Fatalf("create_order by name failed: %+v", res)
	}
}

func TestCreateOrder_UnknownNameReturnsGuidance(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder,
		map[string]any{"productName": "不存在的神秘商品", "amount": float64(1)},
		auth.Context{UserID: userID})
	if res.Message != "" {
		t.Fatalf("unresolved name produced an error reply %q, want guidance payload", res.Message)
	}
	if len(res.AllProducts) != 4 {
		t.Fatalf("guidance catalog has %d rows, want 4", len(res.AllProducts))
	}
	if res.UserInput != "不存在的神秘商品" {
		t.Errorf("guidance userInput = %q, want the original name", res.UserInput)
	}
}

func TestDispatch_UnknownToolIsAnError(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(),
		models.IntentDecision{ShouldUseTool: true, Tool: models.ToolNone}, auth.Context{})
	if err == nil {
		t.Fatal("Dispatch(none) error = nil, want unbound-tool error")
	}
}

// stringNumbersAccepted: model-emitted args sometimes carry digits as strings.
func TestCreateOrder_StringArguments(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := dispatch(t, d, models.ToolCreateOrder,
		map[string]any{"productId": "1", "amount": "2"}, auth.Context{UserID: userID})
	if res.OrderID == 0 {
		t.Fatalf("string-typed args rejected: %+v", res)
	}
}
