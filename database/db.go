package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/candleworks/fulfil/cache"

	"github.com/candleworks/fulfil/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		orderCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("order cache disabled: %v", errCache)
			orderCache = nil
		}
		instance = &Datasource{Conn: con, Cache: orderCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createOrderTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createOrderTable creates the orders table, the single source of truth for
// quote/label/reconciliation state. tracking_code and label_url double as the
// label-issued flag; shipping_fee_captured_at is the reconciliation guard.
func createOrderTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE SCHEMA IF NOT EXISTS fulfil;
		CREATE TABLE IF NOT EXISTS fulfil.orders (
			id BIGSERIAL PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			quantity INT NOT NULL DEFAULT 1,
			destination_address JSONB NOT NULL DEFAULT '{}',
			shipping_cost_collected NUMERIC(12,2) NOT NULL DEFAULT 0,
			payment_transfer_id TEXT,
			tracking_id TEXT,
			tracking_code TEXT,
			label_url TEXT,
			carrier TEXT,
			service TEXT,
			label_generated_at TIMESTAMP,
			shipping_fee_captured_at TIMESTAMP,
			shipping_fee_amount_cents BIGINT NOT NULL DEFAULT 0,
			transfer_reversal_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	return err
}
