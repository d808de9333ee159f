package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/store"
	"github.com/pawmart/pawmart/pkg/models"
)

// ── Catalog ─────────────────────────────────────────────────

// ListProducts returns the products of one category (public).
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.Store.ListProducts(r.Context(), category, 50)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("product listing failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}
	if len(products) == 0 {
		respondResult(w, http.StatusNotFound, false, "该分类下没有商品", nil)
		return
	}

	respondResult(w, http.StatusOK, true, "获取商品信息成功", products)
}

// Carousel serves the promotional image list for the home page.
func (h *Handlers) Carousel(w http.ResponseWriter, r *http.Request) {
	respondResult(w, http.StatusOK, true, "获取轮播图信息成功！", []string{
		"/img/carousel1.jpg",
		"/img/carousel2.jpg",
		"/img/carousel3.jpg",
		"/img/carousel4.jpg",
	})
}

// ── Orders ──────────────────────────────────────────────────

// ListOrders returns the caller's orders, most recent first.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	orders, err := h.Store.ListOrders(r.Context(), ac.UserID, 50)
	if err != nil {
		log.Error().Err(err).Int64("user_id", ac.UserID).Msg("order listing failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器错误", nil)
		return
	}
	respondResult(w, http.StatusOK, true, "查询订单成功！", orders)
}

// DeleteOrder cancels one of the caller's orders. Ownership is enforced in
// the store's WHERE clause, so another account's order reads as missing.
func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		respondResult(w, http.StatusBadRequest, false, "订单号不合法", nil)
		return
	}

	if err := h.Store.DeleteOrder(r.Context(), orderID, ac.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondResult(w, http.StatusForbidden, false, "无权操作此订单或订单不存在", nil)
			return
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("order delete failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}
	respondResult(w, http.StatusOK, true, "订单已取消", nil)
}

type buyRequest struct {
	ProductID int64   `json:"productId"`
	Amount    int     `json:"amount"`
	Price     float64 `json:"price"`
}

// Buy creates an order directly from the storefront. It shares the
// store's atomic stock decrement with the assistant's create_order tool.
func (h *Handlers) Buy(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondResult(w, http.StatusBadRequest, false, "请求体不合法", nil)
		return
	}
	if req.ProductID <= 0 || req.Amount < 1 || req.Amount > 99 {
		respondResult(w, http.StatusBadRequest, false, "productId 或 amount 不合法", nil)
		return
	}

	price := req.Price
	if price <= 0 {
		product, err := h.Store.GetProduct(r.Context(), req.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondResult(w, http.StatusNotFound, false, "商品不存在", nil)
				return
			}
			log.Error().Err(err).Msg("buy product lookup failed")
			respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
			return
		}
		price = product.Price * float64(req.Amount)
	}

	order := &models.Order{
		AccountID: ac.UserID,
		Date:      time.Now(),
		Status:    models.OrderStatusUnfulfilled,
		ProductID: req.ProductID,
		Amount:    req.Amount,
		Price:     price,
	}
	if err := h.Store.CreateOrder(r.Context(), order); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondResult(w, http.StatusNotFound, false, "商品不存在", nil)
		case errors.Is(err, store.ErrInsufficientStock):
			respondResult(w, http.StatusConflict, false, "库存不足", nil)
		default:
			log.Error().Err(err).Msg("order create failed")
			respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		}
		return
	}

	respondResult(w, http.StatusOK, true, "购买成功，生成订单数据", order.ID)
}

// ── Cart ────────────────────────────────────────────────────

func (h *Handlers) ListCart(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	items, err := h.Store.ListCartItems(r.Context(), ac.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", ac.UserID).Msg("cart listing failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}
	respondResult(w, http.StatusOK, true, "查询购物车成功！", items)
}

type addCartRequest struct {
	ProductID  int64   `json:"productId"`
	Amount     int     `json:"amount"`
	TotalPrice float64 `json:"totalPrice"`
}

func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req addCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondResult(w, http.StatusBadRequest, false, "请求体不合法", nil)
		return
	}
	if req.ProductID <= 0 || req.Amount < 1 {
		respondResult(w, http.StatusBadRequest, false, "productId 或 amount 不合法", nil)
		return
	}

	item := &models.CartItem{
		AccountID:  ac.UserID,
		ProductID:  req.ProductID,
		Amount:     req.Amount,
		TotalPrice: req.TotalPrice,
	}
	if err := h.Store.AddCartItem(r.Context(), item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondResult(w, http.StatusNotFound, false, "商品不存在", nil)
			return
		}
		log.Error().Err(err).Msg("cart add failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}
	respondResult(w, http.StatusOK, true, "已加入购物车", item.ID)
}

func (h *Handlers) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		respondResult(w, http.StatusBadRequest, false, "购物车条目不合法", nil)
		return
	}

	if err := h.Store.DeleteCartItem(r.Context(), itemID, ac.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondResult(w, http.StatusForbidden, false, "无权操作此条目或条目不存在", nil)
			return
		}
		log.Error().Err(err).Msg("cart delete failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}
	respondResult(w, http.StatusOK, true, "已从购物车移除", nil)
}
