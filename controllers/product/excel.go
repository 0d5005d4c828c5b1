package productcontroller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Spreadsheet columns shared by import and export.
var productColumns = []string{
	"ID", "Name", "Description", "SKU", "Price", "Category",
	"Tags", "Colors", "Sizes", "Stock", "Images",
}

var errBadRow = errors.New("row is missing a name or a valid price")

// productFromRow parses one spreadsheet row laid out as productColumns.
// List columns are comma separated.
func productFromRow(cells []string) (models.Product, error) {
	get := func(index int) string {
		if index < len(cells) {
			return strings.TrimSpace(cells[index])
		}
		return ""
	}

	price, err := strconv.ParseFloat(get(4), 64)
	if get(1) == "" || err != nil || price < 0 {
		return models.Product{}, errBadRow
	}
	stock, _ := strconv.ParseFloat(get(9), 64)

	return models.Product{
		ID:          get(0),
		Name:        get(1),
		Description: get(2),
		SKU:         get(3),
		Price:       price,
		Category:    get(5),
		Tags:        splitList(get(6)),
		Colors:      splitList(get(7)),
		Sizes:       splitList(get(8)),
		Stock:       max(int(stock), 0),
		Images:      imagesFromCell(get(10)),
	}, nil
}

func productRow(p models.Product) []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return []string{
		p.ID, p.Name, p.Description, p.SKU,
		strconv.FormatFloat(p.Price, 'f', -1, 64), p.Category,
		strings.Join(p.Tags, ","), strings.Join(p.Colors, ","), strings.Join(p.Sizes, ","),
		strconv.Itoa(p.Stock), strings.Join(urls, ","),
	}
}

// POST /admin/products/import
//
// Rows whose ID matches an existing product update it; everything else is
// created.
func ImportProductsFromExcel(store ProductStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		ctx := c.Request.Context()
		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < len(sheet.Rows); i++ {
			cells := make([]string, 0, len(productColumns))
			for _, cell := range sheet.Rows[i].Cells {
				cells = append(cells, cell.String())
			}

			product, err := productFromRow(cells)
			if err != nil {
				skippedCount++
				continue
			}

			if product.ID != "" {
				existing, err := store.ProductByID(ctx, product.ID)
				switch {
				case err == nil:
					product.Slug = existing.Slug
					product.CreatedAt = existing.CreatedAt
					if err := store.SaveProduct(ctx, &product); err != nil {
						logger.Warn("import update failed", zap.String("id", product.ID), zap.Error(err))
						skippedCount++
					} else {
						updatedCount++
					}
					continue
				case !errors.Is(err, catalog.ErrProductNotFound):
					skippedCount++
					continue
				}
			}

			if err := store.CreateProduct(ctx, &product); err != nil {
				logger.Warn("import create failed", zap.String("name", product.Name), zap.Error(err))
				skippedCount++
				continue
			}
			createdCount++
		}

		logger.Info("product import finished",
			zap.Int("created", createdCount),
			zap.Int("updated", updatedCount),
			zap.Int("skipped", skippedCount))

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
