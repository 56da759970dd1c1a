package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Seeds the product catalog. With no arguments it writes the five
// built-in demo products; with an XLSX file path it bulk-imports from
// the spreadsheet.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	docStore, err := store.Open(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to open document store:", err)
	}
	defer docStore.Close()

	productRepo := repository.NewProductRepository(docStore)
	productService := service.NewProductService(productRepo)

	var products []model.Product
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		products, err = readProductsFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		products = demoCatalog()
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	if err := productService.Seed(context.Background(), products); err != nil {
		log.Fatal("Failed to seed products:", err)
	}

	fmt.Println("Import completed successfully!")
}

// demoCatalog returns the built-in demo products.
func demoCatalog() []model.Product {
	now := time.Now()
	return []model.Product{
		{
			ID: "prod_1", Name: "华为Mate 60 Pro", Price: 6999, OriginalPrice: 7999,
			Image: "📱", Category: "electronics", Description: "旗舰智能手机，麒麟9000S芯片",
			Stock: 50, Sales: 1250, IsHot: true, IsOnSale: true,
			Tags: []string{"热门", "限时特价"}, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "prod_2", Name: "iPhone 15 Pro", Price: 8999, OriginalPrice: 9999,
			Image: "📱", Category: "electronics", Description: "苹果最新旗舰手机",
			Stock: 30, Sales: 980, IsHot: true, IsOnSale: false,
			Tags: []string{"热门"}, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "prod_3", Name: "小米电视 75寸", Price: 5999, OriginalPrice: 6999,
			Image: "📺", Category: "electronics", Description: "4K超高清智能电视",
			Stock: 20, Sales: 320, IsHot: false, IsOnSale: true,
			Tags: []string{"限时特价"}, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "prod_4", Name: "耐克运动鞋", Price: 699, OriginalPrice: 899,
			Image: "👟", Category: "fashion", Description: "专业运动跑步鞋",
			Stock: 100, Sales: 850, IsHot: true, IsOnSale: true,
			Tags: []string{"热门", "新品"}, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "prod_5", Name: "智能扫地机器人", Price: 2999, OriginalPrice: 3999,
			Image: "🤖", Category: "home", Description: "全自动智能清扫",
			Stock: 25, Sales: 420, IsHot: false, IsOnSale: true,
			Tags: []string{"限时特价"}, CreatedAt: now, UpdatedAt: now,
		},
	}
}

// readProductsFromXLSX reads products from a spreadsheet.
// Column order: id, name, price, original price, category, description,
// stock, sales, hot flag, sale flag, tags.
func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	now := time.Now()
	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		// First row is the header
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 8 {
			skipped++
			continue
		}

		id := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if id == "" || name == "" || seen[id] {
			skipped++
			continue
		}
		seen[id] = true

		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		originalPrice, _ := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		stock, _ := strconv.Atoi(strings.TrimSpace(row[6]))
		sales, _ := strconv.Atoi(strings.TrimSpace(row[7]))

		p := model.Product{
			ID:            id,
			Name:          name,
			Price:         price,
			OriginalPrice: originalPrice,
			Category:      strings.TrimSpace(row[4]),
			Description:   strings.TrimSpace(row[5]),
			Stock:         stock,
			Sales:         sales,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if len(row) > 8 {
			p.IsHot = strings.TrimSpace(row[8]) == "是"
		}
		if len(row) > 9 {
			p.IsOnSale = strings.TrimSpace(row[9]) == "是"
		}
		if len(row) > 10 {
			for _, tag := range strings.Split(row[10], ",") {
				if trimmed := strings.TrimSpace(tag); trimmed != "" {
					p.Tags = append(p.Tags, trimmed)
				}
			}
		}

		products = append(products, p)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	return products, nil
}
