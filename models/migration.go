package models

import (
	"log"

	"github.com/weddingcard/card_admin/config"
)

func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		return
	}

	err := db.AutoMigrate(
		&Activity{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
