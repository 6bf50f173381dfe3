package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abetworks/crm-backend/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "crm",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "crm",
	}
	assert.Equal(t,
		"crm:s3cret@tcp(db.internal:3306)/crm?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg := config.Config{
		DBUser: "root",
		DBHost: "localhost",
		DBPort: "3307",
		DBName: "crm_dev",
	}
	assert.Equal(t,
		"root@tcp(localhost:3307)/crm_dev?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
