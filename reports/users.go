package reports

import (
	"io"

	"github.com/weddingcard/card_admin/models"
)

var userHeadings = []string{"First Name", "Last Name", "Email", "Contact"}

type userRow struct {
	user models.User
}

func (r userRow) GetCellValues() []interface{} {
	return []interface{}{r.user.FirstName, r.user.LastName, r.user.Email, r.user.FormattedContact()}
}

func ExportUsers(w io.Writer, users []models.User) error {
	rows := make([]ExcelExporter, len(users))
	for i := range users {
		rows[i] = userRow{user: users[i]}
	}
	return WriteExcel(w, rows, userHeadings...)
}
