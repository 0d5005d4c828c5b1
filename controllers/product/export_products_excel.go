package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
)

// buildWorkbook lays products out as productColumns.
func buildWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range productColumns {
		headerRow.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		for _, v := range productRow(p) {
			row.AddCell().SetString(v)
		}
	}
	return file, nil
}

// GET /admin/products/export
func ExportProductsToExcel(store ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := store.ListProducts(c.Request.Context(), catalog.ListFilter{SortBy: "name", Order: "asc"})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file, err := buildWorkbook(products)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.Error(err)
		}
	}
}
