package http

import (
	"github.com/osonapteka/backoffice/internal/database"
	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/messages"
	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/database/suppliers"
	"github.com/osonapteka/backoffice/internal/settingsstore"
	"github.com/osonapteka/backoffice/internal/syncer"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	Database *database.Database
	Engine   *syncer.Engine

	Inventory *inventory.Repository
	Sales     *sales.Repository
	Cursors   *cursor.Repository
	Doctors   *doctors.Repository
	Suppliers *suppliers.Repository
	Messages  *messages.Repository
	Runs      *runs.Repository

	Settings *settingsstore.SettingsStore

	Version string
}
