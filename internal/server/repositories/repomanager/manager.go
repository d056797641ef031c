package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronovs/papertrail/internal/dbx"
	"github.com/avoronovs/papertrail/internal/server/repositories/devices"
	"github.com/avoronovs/papertrail/internal/server/repositories/documents"
	"github.com/avoronovs/papertrail/internal/server/repositories/synchistory"
	"github.com/avoronovs/papertrail/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
	Devices(db dbx.DBTX) devices.Repository
	SyncHistory(db dbx.DBTX) synchistory.Repository
}
