package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"farmacia/internal/app"
	"farmacia/internal/domain"
	"farmacia/internal/repository"
	"farmacia/internal/service"
)

type Server struct {
	engine     *gin.Engine
	dispatcher *app.Dispatcher
	products   repository.ProductCatalog
	admin      *service.ProductService
	log        *zap.Logger
}

func NewServer(d *app.Dispatcher, products repository.ProductCatalog, admin *service.ProductService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	s := &Server{engine: r, dispatcher: d, products: products, admin: admin, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		catalog := v1.Group("/catalog")
		catalog.GET("", s.getCatalog)
		catalog.DELETE("/filter", s.resetFilter)
		catalog.POST("/refresh", s.refreshCatalog)
		catalog.GET("/categories", s.getCategories)

		v1.GET("/products/:id", s.getProduct)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.POST("/items", s.addItem)
		cart.PUT("/items/:id", s.setQuantity)
		cart.DELETE("/items/:id", s.removeItem)
		cart.POST("/checkout", s.checkout)

		v1.GET("/notice", s.getNotice)
		v1.DELETE("/notice", s.dismissNotice)

		admin := v1.Group("/admin/products")
		admin.POST("", s.createProduct)
		admin.PUT(":id", s.updateProduct)
		admin.DELETE(":id", s.deleteProduct)
	}
}

// requestLogger пишет access-лог через zap
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// Catalog handlers

// @Summary Filtered catalog
// @Description Without query parameters the active filter is kept.
// @Tags catalog
// @Produce json
// @Param q query string false "Search in name and description"
// @Param category query string false "Exact category"
// @Param max_price query string false "Max price, empty or 0 means no limit"
// @Success 200 {object} app.Result
// @Router /catalog [get]
func (s *Server) getCatalog(c *gin.Context) {
	// без параметров отдаём каталог с текущим фильтром
	if len(c.Request.URL.Query()) == 0 {
		res, err := s.dispatcher.Dispatch(c, app.ViewCatalog{})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	f := domain.Filter{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		MaxPrice: parseMaxPrice(c.Query("max_price")),
	}
	res, err := s.dispatcher.Dispatch(c, app.ApplyFilter{Filter: f})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Reset catalog filter
// @Tags catalog
// @Produce json
// @Success 200 {object} app.Result
// @Router /catalog/filter [delete]
func (s *Server) resetFilter(c *gin.Context) {
	res, err := s.dispatcher.Dispatch(c, app.ResetFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Load a catalog page from the product API
// @Tags catalog
// @Produce json
// @Param limit query int false "Page size (1..100)"
// @Param token query string false "Continuation token"
// @Success 200 {object} app.Result
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /catalog/refresh [post]
func (s *Server) refreshCatalog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = repository.ClampLimit(n)
	}
	res, err := s.dispatcher.Dispatch(c, app.LoadCatalog{Limit: limit, Token: c.Query("token")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Categories present in the snapshot
// @Tags catalog
// @Produce json
// @Success 200 {array} string
// @Router /catalog/categories [get]
func (s *Server) getCategories(c *gin.Context) {
	res, err := s.dispatcher.Dispatch(c, app.ViewCatalog{})
	if err != nil {
		s.fail(c, err)
		return
	}
	categories := res.Categories
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetProduct(c, c.Param("id"))
	if err != nil {
		s.dispatcher.Banner().Flash("Erro ao obter produto")
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Cart handlers

type addItemReq struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
}

// @Summary Cart contents
// @Tags cart
// @Produce json
// @Success 200 {object} app.Result
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	res, err := s.dispatcher.Dispatch(c, app.ViewCart{})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Add one unit of a product
// @Description Name and price are looked up through the product API when omitted.
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addItemReq true "Item"
// @Success 200 {object} app.Result
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Name == "" || req.Price == nil {
		p, err := s.products.GetProduct(c, req.ProductID)
		if err != nil {
			s.dispatcher.Banner().Flash("Erro ao obter produto")
			s.fail(c, err)
			return
		}
		req.Name, req.Price = p.Name, &p.Price
	}
	res, err := s.dispatcher.Dispatch(c, app.AddItem{ProductID: req.ProductID, Name: req.Name, UnitPrice: *req.Price})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type setQuantityReq struct {
	Quantity int64 `json:"quantity"`
}

// @Summary Set line quantity
// @Description Quantities below 1 and unknown products leave the cart unchanged (changed=false).
// @Tags cart
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body setQuantityReq true "Quantity"
// @Success 200 {object} app.Result
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [put]
func (s *Server) setQuantity(c *gin.Context) {
	var req setQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := s.dispatcher.Dispatch(c, app.SetQuantity{ProductID: c.Param("id"), Quantity: req.Quantity})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Remove a line
// @Tags cart
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} app.Result
// @Router /cart/items/{id} [delete]
func (s *Server) removeItem(c *gin.Context) {
	res, err := s.dispatcher.Dispatch(c, app.RemoveItem{ProductID: c.Param("id")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Checkout
// @Tags cart
// @Produce json
// @Success 200 {object} app.Result
// @Failure 409 {object} map[string]string
// @Router /cart/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	res, err := s.dispatcher.Dispatch(c, app.Checkout{})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Current notice
// @Tags notice
// @Produce json
// @Success 200 {object} render.Notice
// @Success 204
// @Router /notice [get]
func (s *Server) getNotice(c *gin.Context) {
	n, ok := s.dispatcher.Banner().Current()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary Dismiss the notice
// @Tags notice
// @Success 204
// @Router /notice [delete]
func (s *Server) dismissNotice(c *gin.Context) {
	s.dispatcher.Banner().Dismiss()
	c.Status(http.StatusNoContent)
}

// Admin handlers

type createProductReq struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
}

// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /admin/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.admin.Create(c, domain.Product{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updateProductReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
	Category    *string          `json:"category"`
}

// @Summary Update product
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body updateProductReq true "Fields to change"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.admin.Update(c, c.Param("id"), domain.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags admin
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.admin.Delete(c, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseMaxPrice: пустое, нечисловое или нулевое значение означает «без ограничения»
func parseMaxPrice(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsZero() {
		return nil
	}
	return &d
}

func mapErrorToStatus(err error) int {
	if re, ok := domain.AsRequestError(err); ok {
		// транспортный сбой или непригодный ответ upstream
		if re.StatusCode < http.StatusBadRequest {
			return http.StatusBadGateway
		}
		return re.StatusCode
	}
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, app.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
