package reports

import (
	"io"
	"time"

	"github.com/weddingcard/card_admin/models"
)

var orderHeadings = []string{"Order", "Date", "Customer", "Email", "Phone", "Address", "Color", "Size", "Qty", "Price", "Status"}

type orderRow struct {
	order models.Order
}

func (r orderRow) GetCellValues() []interface{} {
	o := r.order
	var date string
	if o.CreatedAt != nil {
		date = o.CreatedAt.Format(time.DateOnly)
	}
	var email, phone, address string
	if o.User != nil {
		email = o.User.Email
		phone = o.User.PhoneNumber
		address = o.User.AddressDetails.String()
	}
	price, _ := o.Price.Float64()
	return []interface{}{
		o.ID, date, o.CustomerName(), email, phone, address,
		o.Color.Color, o.Size, o.Qty, price, string(o.Status),
	}
}

// ExportOrders writes the orders list as an xlsx workbook.
func ExportOrders(w io.Writer, orders []models.Order) error {
	rows := make([]ExcelExporter, len(orders))
	for i := range orders {
		rows[i] = orderRow{order: orders[i]}
	}
	return WriteExcel(w, rows, orderHeadings...)
}
