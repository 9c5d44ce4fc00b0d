package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/health"
	httpAPI "github.com/iyhunko/inventory-manager/internal/http"
	"github.com/iyhunko/inventory-manager/internal/http/controller"
	"github.com/iyhunko/inventory-manager/internal/model"
	sqlrepo "github.com/iyhunko/inventory-manager/internal/repository/sql"
	"github.com/iyhunko/inventory-manager/internal/service"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	URL      string
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations.
// It skips the test in -short mode.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	// Pull and run PostgreSQL container
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}
	db.SetMaxOpenConns(20)

	if err := sqlrepo.RunMigrations(db); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		URL:      databaseURL,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables truncates all tables in the test database
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"events", "transactions", "products", "customers"}

	for _, table := range tables {
		_, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("Could not truncate table %s: %s", table, err)
		}
	}
}

// InsertCustomer stores a customer. Customers are read-only for the service, so
// tests seed them directly.
func (tdb *TestDB) InsertCustomer(t *testing.T, id, name string, category model.CustomerCategory) {
	t.Helper()

	_, err := tdb.DB.ExecContext(context.Background(),
		"INSERT INTO customers (id, name, category, email) VALUES ($1, $2, $3, $4)",
		id, name, string(category), id+"@example.com")
	if err != nil {
		t.Fatalf("Could not insert customer %s: %s", id, err)
	}
}

// NewRouter wires the full HTTP stack on top of the test database.
func (tdb *TestDB) NewRouter(t *testing.T, opts service.Options) (*gin.Engine, *service.InventoryService) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	store := sqlrepo.NewStore(tdb.DB)
	svc := service.NewInventoryService(store, opts)

	readiness, err := health.NewReadinessHandler("test", store)
	if err != nil {
		t.Fatalf("Could not create readiness handler: %s", err)
	}

	router := httpAPI.InitRouter(gin.New(), httpAPI.Controllers{
		General:     controller.New(readiness.Handler()),
		Product:     controller.NewProductController(svc),
		Transaction: controller.NewTransactionController(svc),
		Report:      controller.NewReportController(svc),
	})
	return router, svc
}
