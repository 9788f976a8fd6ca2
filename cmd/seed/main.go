// Command seed imports the template shop and its menus from an XLSX sheet.
// The template shop is the one new shops copy their menus from, so it can
// only be seeded into an empty database.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ikkim/salonflow-backend/config"
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	"github.com/ikkim/salonflow-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// menu sheet columns
const (
	colName = iota
	colCategory
	colBasePrice
	colDiscount
	colInterval
	colDuration
	menuColumns
)

func main() {
	owner := flag.String("owner", "", "identity provider subject of the template shop owner")
	name := flag.String("name", "", "shop name")
	address := flag.String("address", "", "shop address")
	phone := flag.String("phone", "", "shop phone")
	flag.Parse()

	if flag.NArg() < 1 || *owner == "" {
		log.Fatal("Usage: seed -owner <subject> -name <shop> -address <addr> -phone <phone> <menus.xlsx>")
	}

	inputs, err := readMenusFromXLSX(flag.Arg(0))
	if err != nil {
		log.Fatal("Failed to read XLSX: ", err)
	}
	fmt.Printf("Menus to import: %d\n", len(inputs))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	shopRepo := repository.NewShopRepository(db.GetDB())
	menuRepo := repository.NewMenuRepository(db.GetDB())

	count, err := shopRepo.Count()
	if err != nil {
		log.Fatal("Failed to count shops: ", err)
	}
	if count > 0 {
		log.Fatalf("Database already has %d shop(s); the template shop must be the first one", count)
	}

	shopService := service.NewShopService(db.GetDB(), shopRepo, menuRepo)
	menuService := service.NewMenuService(shopRepo, menuRepo, nil)

	result, err := shopService.CreateShop(*owner, service.ShopMutation{
		Name:    name,
		Address: address,
		Phone:   phone,
	})
	if err != nil {
		log.Fatal("Failed to create template shop: ", err)
	}
	fmt.Printf("Template shop created: #%d %s\n", result.Shop.ID, result.Shop.Name)

	for i, input := range inputs {
		menu, err := menuService.CreateMenu(*owner, input)
		if err != nil {
			log.Fatalf("Row %d: %v", i+2, err)
		}
		fmt.Printf("  %2d. %s (%s)\n", menu.SortOrder, menu.Name, menu.Category)
	}

	fmt.Println("Import completed successfully!")
}

// readMenusFromXLSX reads the first sheet: a header row, then one menu per
// row as name, category, base price, default discount, interval months and
// duration minutes. Empty discount and interval cells take the defaults.
func readMenusFromXLSX(filePath string) ([]service.MenuInput, error) {
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("no menu rows found in sheet %s", sheetName)
	}

	var inputs []service.MenuInput
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[colName]) == "" {
			continue
		}
		input, err := parseMenuRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func parseMenuRow(row []string) (service.MenuInput, error) {
	cells := make([]string, menuColumns)
	for i := range cells {
		if i < len(row) {
			cells[i] = strings.TrimSpace(row[i])
		}
	}

	name := cells[colName]
	category := model.MenuCategory(strings.ToLower(cells[colCategory]))

	price, err := strconv.Atoi(strings.ReplaceAll(cells[colBasePrice], ",", ""))
	if err != nil {
		return service.MenuInput{}, fmt.Errorf("base price %q: %w", cells[colBasePrice], err)
	}
	duration, err := strconv.Atoi(cells[colDuration])
	if err != nil {
		return service.MenuInput{}, fmt.Errorf("duration %q: %w", cells[colDuration], err)
	}

	input := service.MenuInput{
		Name:        &name,
		Category:    &category,
		BasePrice:   &price,
		DurationMin: &duration,
	}

	if raw := strings.TrimSuffix(cells[colDiscount], "%"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.MenuInput{}, fmt.Errorf("discount %q: %w", cells[colDiscount], err)
		}
		if strings.HasSuffix(cells[colDiscount], "%") || discount > 1 {
			discount /= 100
		}
		input.DefaultDiscount = &discount
	}
	if raw := cells[colInterval]; raw != "" {
		interval, err := strconv.Atoi(raw)
		if err != nil {
			return service.MenuInput{}, fmt.Errorf("interval %q: %w", raw, err)
		}
		input.DefaultIntervalMonth = &interval
	}
	return input, nil
}
