package category

import (
	"context"
	"errors"
	"net/http"
	"time"

	"helpmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("category not found")

// Category groups offers for browsing and search filters.
type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex" json:"name"`
	Slug      string    `gorm:"uniqueIndex" json:"slug"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `gorm:"column:sort_order" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Repository handles all DB operations for categories
type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	var cats []*Category
	err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&cats).Error
	return cats, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	var cat Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Handler handles HTTP requests for categories
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (h *Handler) List(c *gin.Context) {
	cats, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, cats)
}

// Get godoc
// @Summary Get a category
// @Tags Categories
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	cat, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, cat)
}

func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	group := rg.Group("/categories")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}
}
