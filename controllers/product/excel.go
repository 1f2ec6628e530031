package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
)

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// rowInput reads one sheet row laid out as productHeaders. SoldQuantity and
// the timestamps are ignored: they are owned by the ledger and the database.
func rowInput(row *xlsx.Row) (uint, ProductInput, bool) {
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	var in ProductInput
	in.Name = get(1)
	in.Description = get(2)
	price, err := decimal.NewFromString(get(3))
	if in.Name == "" || err != nil {
		return 0, in, false
	}
	in.Price = price
	if d, err := decimal.NewFromString(get(4)); err == nil {
		in.Discount = &d
	}
	qty, err := strconv.Atoi(get(5))
	if err != nil {
		return 0, in, false
	}
	in.Quantity = qty
	if avail, err := strconv.Atoi(get(6)); err == nil {
		in.AvailableQuantity = &avail
	}
	in.Color = get(8)
	in.SKU = get(9)
	in.Image = get(10)
	in.CategoryIDs, _ = parseIDList(get(11))
	in.TagIDs, _ = parseIDList(get(12))

	var id uint
	if v, err := strconv.ParseUint(get(0), 10, 64); err == nil {
		id = uint(v)
	}
	return id, in, true
}

// ImportProducts creates or updates one product per data row. Rows with an
// id of an existing product update it; anything unreadable is skipped.
func ImportProducts(db *gorm.DB, file *xlsx.File) (ImportResult, error) {
	var res ImportResult
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return res, apperr.New(apperr.InvalidArgument, "Excel file is empty or missing header row")
	}

	sheet := file.Sheets[0]
	for i := 1; i < sheet.MaxRow; i++ {
		id, in, ok := rowInput(sheet.Rows[i])
		if !ok {
			res.Skipped++
			continue
		}

		if id != 0 {
			_, err := UpdateProduct(db, id, in)
			if err == nil {
				res.Updated++
				continue
			}
			if !apperr.Is(err, apperr.NotFound) {
				zap.L().Warn("import row skipped", zap.Int("row", i+1), zap.Error(err))
				res.Skipped++
				continue
			}
		}

		if _, err := CreateProduct(db, in); err != nil {
			zap.L().Warn("import row skipped", zap.Int("row", i+1), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res, nil
}

// POST /api/products/import
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		f, err := header.Open()
		if err != nil {
			apperr.Respond(c, apperr.Wrap(apperr.Internal, err, "failed to open Excel file"))
			return
		}
		defer f.Close()

		xlFile, err := xlsx.OpenReaderAt(f, header.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		res, err := ImportProducts(db.WithContext(c.Request.Context()), xlFile)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": res.Created,
			"updated_count": res.Updated,
			"skipped_count": res.Skipped,
		})
	}
}
