package database

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/cache"
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

// GetDBConnection provides a global access point to the instance and
// initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		newCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("cache init failed, continuing without cache: %v", errCache)
		}
		instance = &Datasource{Conn: con, Cache: newCache}
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
		log.Printf("database Connection error: %v", err)
		return nil, err
	}
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS hairmanager`); err != nil {
		return nil, err
	}
	err = createUserTable(db)
	if err != nil {
		return nil, err
	}
	err = createProfileTable(db)
	if err != nil {
		return nil, err
	}
	err = createClientTable(db)
	if err != nil {
		return nil, err
	}
	err = createServiceTable(db)
	if err != nil {
		return nil, err
	}
	err = createLocationTable(db)
	if err != nil {
		return nil, err
	}
	err = createAppointmentTable(db)
	if err != nil {
		return nil, err
	}
	err = createEmailLogTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createUserTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.users (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating users table: %v", err)
	}
	return err
}

func createProfileTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.profiles (
			id SERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL UNIQUE REFERENCES hairmanager.users(user_id),
			business_name TEXT,
			address TEXT,
			phone TEXT,
			sendgrid_api_key TEXT,
			notification_email TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating profiles table: %v", err)
	}
	return err
}

func createClientTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.clients (
			id SERIAL PRIMARY KEY,
			client_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT,
			email TEXT,
			phone TEXT,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating clients table: %v", err)
	}
	return err
}

func createServiceTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.services (
			id SERIAL PRIMARY KEY,
			service_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			duration_mins INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating services table: %v", err)
	}
	return err
}

func createLocationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.locations (
			id SERIAL PRIMARY KEY,
			location_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating locations table: %v", err)
	}
	return err
}

func createAppointmentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.appointments (
			id SERIAL PRIMARY KEY,
			appointment_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			client_id TEXT NOT NULL REFERENCES hairmanager.clients(client_id),
			service_id TEXT NOT NULL REFERENCES hairmanager.services(service_id),
			location_id TEXT REFERENCES hairmanager.locations(location_id),
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('booked', 'completed', 'cancelled')),
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating appointments table: %v", err)
	}
	return err
}

func createEmailLogTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hairmanager.email_logs (
			id SERIAL PRIMARY KEY,
			log_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			invoice_ref TEXT,
			recipient_email TEXT NOT NULL,
			subject TEXT,
			status TEXT NOT NULL CHECK (status IN ('pending', 'sent', 'delivered', 'failed', 'opened', 'unknown')),
			provider_message_id TEXT,
			provider_event_id TEXT,
			error_message TEXT,
			attachment_path TEXT,
			sent_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating email_logs table: %v", err)
	}
	return err
}
