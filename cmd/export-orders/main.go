// export-orders writes the order list (or the user list) to an XLSX file.
//
// Usage:
//   ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/export-orders -out orders.xlsx -status placed
//   go run ./cmd/export-orders -users -out users.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/reports"
)

func main() {
	out := flag.String("out", "orders.xlsx", "Output file")
	status := flag.String("status", "", "Optional: only orders with this status")
	users := flag.Bool("users", false, "Export users instead of orders")
	query := flag.String("q", "", "Optional: user search (with -users)")
	flag.Parse()

	ctx := context.Background()
	logger := config.GetLogger()

	input := models.LoginInput{
		Email:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	client := backend.NewClient(config.BackendBaseURL(), config.BackendTimeout())
	info, err := client.Login(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	if !info.User.IsAdmin() {
		fmt.Fprintf(os.Stderr, "%s is not an admin\n", input.Email)
		os.Exit(1)
	}
	client = client.WithToken(info.Token)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	var rows int
	if *users {
		list, err := client.ListUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list users: %v\n", err)
			os.Exit(1)
		}
		list = models.FilterUsers(list, *query)
		rows = len(list)
		err = reports.ExportUsers(f, list)
		if err != nil {
			config.LogError(logger, "ExportOrders", "ExportUsers", *out, rows, err)
			os.Exit(1)
		}
	} else {
		list, err := client.ListOrders(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list orders: %v\n", err)
			os.Exit(1)
		}
		if strings.TrimSpace(*status) != "" {
			want, err := models.ParseOrderStatus(*status)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v: %q\n", err, *status)
				os.Exit(2)
			}
			filtered := list[:0]
			for _, o := range list {
				if o.Status == want {
					filtered = append(filtered, o)
				}
			}
			list = filtered
		}
		rows = len(list)
		if err := reports.ExportOrders(f, list); err != nil {
			config.LogError(logger, "ExportOrders", "ExportOrders", *out, rows, err)
			os.Exit(1)
		}
		logger.WithFields(logrus.Fields{
			"field":   "export",
			"revenue": models.Revenue(list).StringFixed(2),
		}).Info("[export.orders]")
	}
	fmt.Printf("Wrote %d row(s) to %s\n", rows, *out)
}
