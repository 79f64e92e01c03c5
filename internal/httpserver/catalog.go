package httpserver

import (
	"net/http"

	productsvc "bakery-shop/internal/service/product"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	views, err := h.deps.ProductSvc.List(c.Request.Context())
	h.productList(c, views, err)
}

func (h *handlers) featuredProducts(c *gin.Context) {
	views, err := h.deps.ProductSvc.Featured(c.Request.Context())
	h.productList(c, views, err)
}

func (h *handlers) topViewedProducts(c *gin.Context) {
	views, err := h.deps.ProductSvc.TopViewed(c.Request.Context())
	h.productList(c, views, err)
}

func (h *handlers) relatedProducts(c *gin.Context) {
	views, err := h.deps.ProductSvc.Related(c.Request.Context(), c.Param("id"))
	h.productList(c, views, err)
}

func (h *handlers) productDetail(c *gin.Context) {
	view, err := h.deps.ProductSvc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) listCategories(c *gin.Context) {
	list, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
}

func (h *handlers) categoryProducts(c *gin.Context) {
	ctx := c.Request.Context()
	cat, err := h.deps.CategorySvc.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	views, err := h.deps.ProductSvc.ByCategory(ctx, cat.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if views == nil {
		views = []productsvc.View{}
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "count": len(views), "results": views})
}

func (h *handlers) productList(c *gin.Context, views []productsvc.View, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	if views == nil {
		views = []productsvc.View{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "results": views})
}
