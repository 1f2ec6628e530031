package orderControllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
)

var orderHeaders = []string{
	"ID", "OrderRef", "UserID", "Status", "PaymentStatus", "PaymentID",
	"PaymentMethod", "TotalAmount", "Items", "CustomerEmail", "CreatedAt", "PaidAt",
}

// BuildOrdersWorkbook renders one row per order. Items are summarised as
// "qty x name" pairs.
func BuildOrdersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range orderHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetString(o.OrderRef)
		row.AddCell().SetString(o.UserID)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(o.PaymentID)
		row.AddCell().SetString(o.PaymentMethod)
		total, _ := o.TotalAmount.Float64()
		row.AddCell().SetFloat(total)

		summary := ""
		for i, item := range o.Items {
			if i > 0 {
				summary += ", "
			}
			summary += fmt.Sprintf("%d x %s", item.Quantity, item.ProductName)
		}
		row.AddCell().SetString(summary)
		row.AddCell().SetString(o.Customer.Email)
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04:05"))
		paidAt := ""
		if o.PaymentCompletedAt != nil {
			paidAt = o.PaymentCompletedAt.Format("2006-01-02 15:04:05")
		}
		row.AddCell().SetString(paidAt)
	}
	return file, nil
}

// GET /api/orders/export
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := GetAllOrders(db.WithContext(c.Request.Context()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		file, err := BuildOrdersWorkbook(orders)
		if err != nil {
			apperr.Respond(c, apperr.Wrap(apperr.Internal, err, "failed to create Excel sheet"))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		// Headers are already out; a failed write can only be logged.
		if err := file.Write(c.Writer); err != nil {
			zap.L().Error("write orders workbook", zap.Error(err))
		}
	}
}
