package productcontroller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
)

// bestsellers sold more than this share of everything stocked
const bestsellerPercent = 60

var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
}

// ListFilter narrows the catalogue listing. Zero values mean "no filter".
type ListFilter struct {
	Period        string
	SpecialOffers bool
	Bestsellers   bool
	CategoryIDs   []uint
	TagIDs        []uint
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Search        string
	SortBy        string
	SortDesc      bool
}

// PeriodStart returns the earliest creation time for a new-arrivals period.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch strings.ToLower(period) {
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, apperr.New(apperr.InvalidArgument, "invalid period: %s. Supported: week, month, year", period)
	}
}

// ListProducts applies every filter in SQL. Price bounds compare the list
// price, not the discounted one.
func ListProducts(db *gorm.DB, f ListFilter) ([]models.Product, error) {
	query := db.Model(&models.Product{}).Preload("Categories").Preload("Tags")

	if f.Period != "" {
		start, err := PeriodStart(f.Period, time.Now())
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at >= ?", start)
	}
	if f.SpecialOffers {
		query = query.Where("discount > 0")
	}
	if f.Bestsellers {
		query = query.Where("quantity > 0 AND sold_quantity * 100 > quantity * ?", bestsellerPercent)
	}
	if len(f.CategoryIDs) > 0 {
		query = query.Where("id IN (?)",
			db.Table("product_categories").Select("product_id").Where("category_id IN ?", f.CategoryIDs))
	}
	if len(f.TagIDs) > 0 {
		query = query.Where("id IN (?)",
			db.Table("product_tags").Select("product_id").Where("tag_id IN ?", f.TagIDs))
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := column + " ASC"
	if f.SortDesc {
		order = column + " DESC"
	}

	var products []models.Product
	if err := query.Order(order).Order("id").Find(&products).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch products")
	}
	return products, nil
}

func parseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, apperr.New(apperr.InvalidArgument, "invalid id list: %q", raw)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func parseDecimal(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.New(apperr.InvalidArgument, "invalid %s", name)
	}
	return &d, nil
}

// ParseListFilter reads the listing query string.
func ParseListFilter(c *gin.Context) (ListFilter, error) {
	f := ListFilter{
		Period:        c.Query("period"),
		SpecialOffers: c.Query("special_offers") == "true",
		Bestsellers:   c.Query("bestsellers") == "true",
		Search:        c.Query("search"),
		SortBy:        c.DefaultQuery("sort_by", "created_at"),
		SortDesc:      strings.ToLower(c.DefaultQuery("order", "desc")) != "asc",
	}

	var err error
	if f.CategoryIDs, err = parseIDList(c.Query("category_ids")); err != nil {
		return f, err
	}
	if f.TagIDs, err = parseIDList(c.Query("tag_ids")); err != nil {
		return f, err
	}
	if f.MinPrice, err = parseDecimal("min_price", c.Query("min_price")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseDecimal("max_price", c.Query("max_price")); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/products
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := ParseListFilter(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		products, err := ListProducts(db.WithContext(c.Request.Context()), f)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
