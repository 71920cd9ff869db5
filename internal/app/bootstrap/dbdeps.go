// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/folio/internal/app/system/mongoconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Client and Database come from Mongo and stay valid until Shutdown
// closes the manager.
type DBDeps struct {
	Mongo         *mongoconn.Manager
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
