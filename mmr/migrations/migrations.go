package migrations

import (
	_ "embed"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/db/types"
)

//go:embed mmr0001.sql
var mig0001 string

// Migrations returns the node table migrations, tables named with prefix
func Migrations(prefix string) []types.Migration {
	return []types.Migration{
		{
			ID:     "mmr0001",
			SQL:    mig0001,
			Prefix: prefix,
		},
	}
}

func RunMigrations(dbPath string, prefix string) error {
	return db.RunMigrations(dbPath, Migrations(prefix))
}
