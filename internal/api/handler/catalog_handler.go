package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// MaxImageBytes caps product image uploads.
const MaxImageBytes = 5 << 20

// CatalogHandler serves product reads and admin product management.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// List handles GET /api/users/products and GET /api/admin/products.
//
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  envelope{data=[]domain.Product}
// @Router       /api/users/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return ok(c, "Product collection is empty!", []*domain.Product{})
	}
	return ok(c, "Successfully fetched products detail.", products)
}

// TopSelling handles GET /api/users/products/top-selling.
//
// @Summary      Featured products
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  envelope{data=[]domain.Product}
// @Router       /api/users/products/top-selling [get]
func (h *CatalogHandler) TopSelling(c echo.Context) error {
	products, err := h.service.TopSelling(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched products.", nonNil(products))
}

// Get handles GET /api/users/products/:id.
//
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  envelope{data=domain.Product}
// @Failure      404  {object}  failureResponse
// @Router       /api/users/products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	product, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched product details.", product)
}

// ByCategory handles GET /api/users/products/category/:category.
//
// @Summary      List products of a category
// @Tags         catalog
// @Produce      json
// @Param        category  path      string  true  "Category name"
// @Success      200       {object}  envelope{data=[]domain.Product}
// @Router       /api/users/products/category/{category} [get]
func (h *CatalogHandler) ByCategory(c echo.Context) error {
	return h.byCategory(c, c.Param("category"))
}

// ByCategoryQuery handles GET /api/admin/products/category?name=.
//
// @Summary      List products of a category (admin)
// @Tags         admin
// @Produce      json
// @Param        name  query     string  true  "Category name"
// @Success      200   {object}  envelope{data=[]domain.Product}
// @Failure      400   {object}  failureResponse
// @Router       /api/admin/products/category [get]
func (h *CatalogHandler) ByCategoryQuery(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return domain.NewError(domain.ErrValidation, "name is required")
	}
	return h.byCategory(c, name)
}

func (h *CatalogHandler) byCategory(c echo.Context, category string) error {
	products, err := h.service.ListByCategory(c.Request().Context(), category)
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched products details.", nonNil(products))
}

// Create handles POST /api/admin/products.
//
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  envelope{data=domain.Product}
// @Failure      400   {object}  failureResponse
// @Failure      409   {object}  failureResponse
// @Router       /api/admin/products [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.Request().Context(), toProductInput(req))
	if err != nil {
		return err
	}
	return created(c, "Successfully created a product.", product)
}

// Update handles PUT /api/admin/products/:id.
//
// @Summary      Update a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  envelope{data=domain.Product}
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/admin/products/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), toProductInput(req))
	if err != nil {
		return err
	}
	return ok(c, "Successfully updated a product.", product)
}

// Delete handles DELETE /api/admin/products/:id.
//
// @Summary      Delete a product
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  failureResponse
// @Router       /api/admin/products/{id} [delete]
func (h *CatalogHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return ok(c, "Successfully deleted a product.", nil)
}

// UploadImage handles POST /api/admin/upload-image with a multipart "image"
// field.
//
// @Summary      Upload a product image
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Param        image  formData  file  true  "Image file, at most 5 MB"
// @Success      200    {object}  envelope{data=uploadImageResponse}
// @Failure      400    {object}  failureResponse
// @Failure      413    {object}  failureResponse
// @Failure      500    {object}  failureResponse
// @Router       /api/admin/upload-image [post]
func (h *CatalogHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return domain.NewError(domain.ErrValidation, "No image uploaded")
	}
	if fh.Size > MaxImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d MB", MaxImageBytes>>20))
	}
	if ct := fh.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ct, "image/") {
		return domain.NewError(domain.ErrValidation, "Only image files are allowed!")
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	img, err := h.service.UploadImage(c.Request().Context(), io.LimitReader(f, MaxImageBytes), fh.Filename)
	if err != nil {
		return err
	}
	return ok(c, "Image uploaded successfully", uploadImageResponse{ImageURL: img.URL, PublicID: img.PublicID})
}

func toProductInput(req productRequest) ports.ProductInput {
	return ports.ProductInput{
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Category:      strings.TrimSpace(req.Category),
		Weight:        req.Weight,
		Image:         req.Image,
		ImagePublicID: req.ImagePublicID,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
