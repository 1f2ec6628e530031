package productcontroller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
)

// productHeaders is shared with the importer; column positions matter.
var productHeaders = []string{
	"ID", "Name", "Description", "Price", "Discount", "Quantity",
	"AvailableQuantity", "SoldQuantity", "Color", "SKU", "Image",
	"CategoryIDs", "TagIDs", "CreatedAt", "UpdatedAt",
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func BuildProductsWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range productHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.Discount.StringFixed(2))
		row.AddCell().SetInt(p.Quantity)
		row.AddCell().SetInt(p.AvailableQuantity)
		row.AddCell().SetInt(p.SoldQuantity)
		row.AddCell().SetString(p.Color)
		row.AddCell().SetString(p.SKU)
		row.AddCell().SetString(p.Image)

		var catIDs, tagIDs []uint
		for _, cat := range p.Categories {
			catIDs = append(catIDs, cat.ID)
		}
		for _, tag := range p.Tags {
			tagIDs = append(tagIDs, tag.ID)
		}
		row.AddCell().SetString(joinIDs(catIDs))
		row.AddCell().SetString(joinIDs(tagIDs))

		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// GET /api/products/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).
			Preload("Categories").Preload("Tags").Order("id").
			Find(&products).Error; err != nil {
			apperr.Respond(c, apperr.Wrap(apperr.Internal, err, "failed to fetch products"))
			return
		}

		file, err := BuildProductsWorkbook(products)
		if err != nil {
			apperr.Respond(c, apperr.Wrap(apperr.Internal, err, "failed to create Excel sheet"))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		// Headers are already out; a failed write can only be logged.
		if err := file.Write(c.Writer); err != nil {
			zap.L().Error("write products workbook", zap.Error(err))
		}
	}
}
