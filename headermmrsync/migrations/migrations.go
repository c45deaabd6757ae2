package migrations

import (
	_ "embed"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/db/types"
	mmrmigrations "github.com/0xPolygon/cdk-mmr/mmr/migrations"
)

//go:embed headermmrsync0001.sql
var mig0001 string

func RunMigrations(dbPath string) error {
	migrations := []types.Migration{
		{
			ID:  "headermmrsync0001",
			SQL: mig0001,
		},
	}
	migrations = append(migrations, mmrmigrations.Migrations("")...)
	return db.RunMigrations(dbPath, migrations)
}
