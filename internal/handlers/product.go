package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"productcatalog/internal/logging"
	"productcatalog/internal/models"
	"productcatalog/internal/mykafka"
	"productcatalog/internal/search"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Search   *search.Index
}

// productRequest binds mutation payloads. Prices are pointers so that an
// absent field is distinguishable from zero and rejected instead of
// stored silently.
type productRequest struct {
	VideoLink   string   `json:"video_link"`
	Name        string   `json:"name"`
	ActualPrice *float64 `json:"actual_price"`
	DisPrice    *float64 `json:"dis_price"`
}

func (r *productRequest) validate() error {
	if r.Name == "" || r.VideoLink == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and video_link are required")
	}
	if r.ActualPrice == nil || r.DisPrice == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "actual_price and dis_price are required")
	}
	return nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	var products []models.Product
	err := h.DB.WithContext(c.Request().Context()).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return dbError(err)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return dbError(err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	return h.create(c)
}

// UploadProduct serves the legacy upload route; it behaves exactly like
// CreateProduct.
func (h *ProductHandler) UploadProduct(c echo.Context) error {
	return h.create(c)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	product := models.Product{
		VideoLink:   req.VideoLink,
		Name:        req.Name,
		ActualPrice: *req.ActualPrice,
		DisPrice:    *req.DisPrice,
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&product).Error; err != nil {
		return dbError(err)
	}

	h.index(c, product)
	h.publish(c, map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return dbError(err)
	}

	product.VideoLink = req.VideoLink
	product.Name = req.Name
	product.ActualPrice = *req.ActualPrice
	product.DisPrice = *req.DisPrice

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return dbError(err)
	}

	h.index(c, product)
	h.publish(c, map[string]interface{}{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return dbError(err)
	}

	if err := h.DB.WithContext(ctx).Delete(&product).Error; err != nil {
		return dbError(err)
	}

	h.remove(c, product.ID)
	h.publish(c, map[string]interface{}{
		"type":      "product_deleted",
		"productID": product.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return uint(id), nil
}

func (h *ProductHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

// index and remove keep the search index following the database. Search
// staleness is tolerated, so failures are logged and the request still
// succeeds.
func (h *ProductHandler) index(c echo.Context, product models.Product) {
	if h.Search == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Search.IndexProduct(ctx, product); err != nil {
		logging.FromContext(ctx).Error("search index failed", "error", err, "productID", product.ID)
	}
}

func (h *ProductHandler) remove(c echo.Context, id uint) {
	if h.Search == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Search.RemoveProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search remove failed", "error", err, "productID", id)
	}
}
