package httpserver

import (
	"net/http"
	"strconv"

	"bakery-shop/internal/domain"
	cartsvc "bakery-shop/internal/service/cart"
	"bakery-shop/internal/service/identity"
	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID    string  `json:"productId"`
	Quantity     *int    `json:"quantity"`
	SizeSelected *string `json:"sizeSelected"`
	PriceID      *string `json:"priceId"`
}

func cartResponse(message string, summary *domain.CartSummary) gin.H {
	return gin.H{"success": true, "message": message, "cart": summary}
}

// owner resolves the cart owner for a mutating call. Guests without a
// session get one when create is set.
func (h *handlers) owner(c *gin.Context, create bool) (domain.Owner, error) {
	who := caller(c)
	if who.UserID == "" && who.SessionToken == "" && create {
		who.SessionToken = h.sessions.ensure(c)
	}
	return identity.Resolve(who)
}

func (h *handlers) getCart(c *gin.Context) {
	owner, _, err := identity.ResolveOptional(caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.GetSummary(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) cartPreview(c *gin.Context) {
	owner, _, err := identity.ResolveOptional(caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.GetSummary(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalItems":  summary.TotalItems,
		"totalAmount": summary.TotalAmount,
		"items":       summary.Items,
	})
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	if req.ProductID == "" {
		c.JSON(http.StatusBadRequest, failure("productId is required"))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	owner, err := h.owner(c, true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.AddItem(c.Request.Context(), owner, cartsvc.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  quantity,
		SizeLabel: req.SizeSelected,
		VariantID: req.PriceID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Added to cart", summary))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, failure("quantity must be an integer"))
		return
	}
	owner, err := h.owner(c, false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), owner, c.Param("lineId"), quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Cart updated", summary))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	owner, err := h.owner(c, false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), owner, c.Param("lineId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Item removed from cart", summary))
}

func (h *handlers) clearCart(c *gin.Context) {
	owner, ok, err := identity.ResolveOptional(caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if ok {
		if err := h.deps.CartSvc.ClearCart(c.Request.Context(), owner); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}
