package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: ""},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Carrier:    CarrierConfig{ApiKey: "EZTK_test"},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432"},
		Redis:      RedisConfig{Dns: ""},
		Carrier:    CarrierConfig{ApiKey: "EZTK_test"},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "redis DNS is required" {
		t.Errorf("Expected redis DNS required error, got %v", err)
	}

	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "carrier API key is required" {
		t.Errorf("Expected carrier API key required error, got %v", err)
	}

	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource:  DataSourceConfig{Dns: "some-dns"},
		Redis:       RedisConfig{Dns: "localhost:6379"},
		Carrier:     CarrierConfig{ApiKey: "EZTK_test"},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Packaging and pricing defaults
	if cnf.Shipping.UnitWeightOz != 15 {
		t.Errorf("Expected default unit weight 15, got %v", cnf.Shipping.UnitWeightOz)
	}
	if cnf.Shipping.BoxBaseHeightIn != 4 {
		t.Errorf("Expected default base height 4, got %v", cnf.Shipping.BoxBaseHeightIn)
	}
	if cnf.Shipping.SurchargeCents != 100 {
		t.Errorf("Expected default surcharge 100, got %v", cnf.Shipping.SurchargeCents)
	}
	if cnf.Carrier.BaseUrl == "" {
		t.Error("Expected default carrier base url to be set")
	}
	if cnf.Carrier.TimeoutSec != 15 {
		t.Errorf("Expected default carrier timeout 15, got %v", cnf.Carrier.TimeoutSec)
	}

	// Test default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "fulfil.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	cnf := Configuration{
		ProjectName: "Candleworks",
		DataSource:  DataSourceConfig{Dns: "postgres://localhost:5432/fulfil"},
		Redis:       RedisConfig{Dns: "localhost:6379"},
		Carrier:     CarrierConfig{ApiKey: "EZTK_test", TimeoutSec: 5},
		Shipping:    ShippingConfig{UnitWeightOz: 15, SurchargeCents: 100},
	}

	payload, err := json.Marshal(cnf)
	if err != nil {
		t.Fatalf("Unable to marshal config: %v", err)
	}
	if _, err := tmpFile.Write(payload); err != nil {
		t.Fatalf("Unable to write config: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Unable to close config: %v", err)
	}

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Expected config fetch to succeed, got %v", err)
	}
	if loaded.ProjectName != "Candleworks" {
		t.Errorf("Expected project name Candleworks, got %s", loaded.ProjectName)
	}
	if loaded.Carrier.TimeoutSec != 5 {
		t.Errorf("Expected carrier timeout 5, got %d", loaded.Carrier.TimeoutSec)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FULFIL_SHIPPING_SURCHARGE_CENTS", "250")

	tmpFile, err := os.CreateTemp("", "fulfil.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/fulfil"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Carrier:    CarrierConfig{ApiKey: "EZTK_test"},
	}
	payload, _ := json.Marshal(cnf)
	if _, err := tmpFile.Write(payload); err != nil {
		t.Fatalf("Unable to write config: %v", err)
	}
	_ = tmpFile.Close()

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	loaded, _ := Fetch()
	if loaded.Shipping.SurchargeCents != 250 {
		t.Errorf("Expected env override surcharge 250, got %d", loaded.Shipping.SurchargeCents)
	}
}
