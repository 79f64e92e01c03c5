package httpserver

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"bakery-shop/internal/domain"
	cartsvc "bakery-shop/internal/service/cart"
	customersvc "bakery-shop/internal/service/customer"
	productsvc "bakery-shop/internal/service/product"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductService interface {
	List(ctx context.Context) ([]productsvc.View, error)
	Featured(ctx context.Context) ([]productsvc.View, error)
	TopViewed(ctx context.Context) ([]productsvc.View, error)
	ByCategory(ctx context.Context, categoryID string) ([]productsvc.View, error)
	Detail(ctx context.Context, id string) (*productsvc.View, error)
	Related(ctx context.Context, id string) ([]productsvc.View, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
}

type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*customersvc.Session, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*customersvc.Session, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	AccessTTLSeconds() int
}

type CartService interface {
	AddItem(ctx context.Context, owner domain.Owner, in cartsvc.AddItemInput) (*domain.CartSummary, error)
	UpdateQuantity(ctx context.Context, owner domain.Owner, lineID string, quantity int) (*domain.CartSummary, error)
	RemoveItem(ctx context.Context, owner domain.Owner, lineID string) (*domain.CartSummary, error)
	ClearCart(ctx context.Context, owner domain.Owner) error
	GetSummary(ctx context.Context, owner domain.Owner) (*domain.CartSummary, error)
	MergeGuestIntoUser(ctx context.Context, sessionToken, userID string) error
}

type SessionService interface {
	Issue() string
	Resume(token string) (string, error)
	End(token string)
	TTL() time.Duration
}

// Deps groups the services the router dispatches to.
type Deps struct {
	ProductSvc  ProductService
	CategorySvc CategoryService
	CustomerSvc CustomerService
	CartSvc     CartService
	SessionSvc  SessionService
}

func (d Deps) validate() error {
	var missing []string
	if d.ProductSvc == nil {
		missing = append(missing, "ProductSvc")
	}
	if d.CategorySvc == nil {
		missing = append(missing, "CategorySvc")
	}
	if d.CustomerSvc == nil {
		missing = append(missing, "CustomerSvc")
	}
	if d.CartSvc == nil {
		missing = append(missing, "CartSvc")
	}
	if d.SessionSvc == nil {
		missing = append(missing, "SessionSvc")
	}
	if len(missing) > 0 {
		return errors.New("httpserver: missing dependencies: " + strings.Join(missing, ", "))
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = "bakery_session"
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization")
	if len(opts.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	sessions := &sessionCookies{name: opts.SessionCookie, svc: deps.SessionSvc}
	h := &handlers{deps: deps, logger: logger, sessions: sessions}

	api := router.Group("/api")
	api.Use(identityMiddleware(deps.CustomerSvc, sessions))

	api.POST("/session", h.startSession)
	api.POST("/signup", h.signup)
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)
	api.POST("/refresh", h.refresh)
	api.GET("/me", h.me)

	api.GET("/products", h.listProducts)
	api.GET("/products/featured", h.featuredProducts)
	api.GET("/products/top-viewed", h.topViewedProducts)
	api.GET("/products/:id", h.productDetail)
	api.GET("/products/:id/related", h.relatedProducts)
	api.GET("/categories", h.listCategories)
	api.GET("/categories/:id/products", h.categoryProducts)

	api.GET("/cart", h.getCart)
	api.GET("/cart/preview", h.cartPreview)
	api.POST("/cart", h.addToCart)
	api.DELETE("/cart", h.clearCart)
	api.PUT("/cart/items/:lineId", h.updateCartItem)
	api.DELETE("/cart/items/:lineId", h.removeCartItem)

	return router, nil
}

type handlers struct {
	deps     Deps
	logger   *log.Logger
	sessions *sessionCookies
}
