package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/weddingcard/card_admin/models"
)

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, name string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, name)
	if err != nil {
		t.Fatalf("GetCellValue(%s): %v", name, err)
	}
	return v
}

func TestExportOrders(t *testing.T) {
	created := time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC)
	orders := []models.Order{
		{
			ID:        "o1",
			Price:     models.Money{Decimal: decimal.RequireFromString("1499.50")},
			Status:    models.OrderStatusShipped,
			Size:      "5x7",
			Qty:       100,
			Color:     models.OrderColor{Color: "gold"},
			CreatedAt: &created,
			User: &models.OrderUser{
				FirstName:      "Asha",
				LastName:       "Rao",
				Email:          "asha@example.com",
				AddressDetails: models.AddressDetails{City: "Pune", Country: "India"},
			},
		},
		{ID: "o2", Status: models.OrderStatusPlaced},
	}

	var buf bytes.Buffer
	if err := ExportOrders(&buf, orders); err != nil {
		t.Fatalf("ExportOrders: %v", err)
	}
	f := openWorkbook(t, &buf)

	checks := map[string]string{
		"A1": "Order",
		"K1": "Status",
		"A2": "o1",
		"B2": "2024-02-14",
		"C2": "Asha Rao",
		"F2": "Pune, India",
		"G2": "gold",
		"I2": "100",
		"J2": "1499.5",
		"K2": "shipped",
		"A3": "o2",
		"C3": "",
	}
	for name, want := range checks {
		if got := cell(t, f, name); got != want {
			t.Fatalf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestExportUsers(t *testing.T) {
	users := []models.User{{FirstName: "Ravi", LastName: "K", Email: "ravi@example.com", Contact: "9876543210"}}

	var buf bytes.Buffer
	if err := ExportUsers(&buf, users); err != nil {
		t.Fatalf("ExportUsers: %v", err)
	}
	f := openWorkbook(t, &buf)

	if got := cell(t, f, "C2"); got != "ravi@example.com" {
		t.Fatalf("unexpected email cell %q", got)
	}
	if got := cell(t, f, "D2"); got != "+91 98765 43210" {
		t.Fatalf("contact should be in international format, got %q", got)
	}
}
