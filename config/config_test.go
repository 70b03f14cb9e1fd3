package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Web.Port != 8085 {
		t.Errorf("Web.Port = %d, want 8085", cfg.Web.Port)
	}
	if cfg.OData.Timeout != 30*time.Second {
		t.Errorf("OData.Timeout = %v, want 30s", cfg.OData.Timeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfloor.yaml")
	yml := `
odata:
  base_url: https://gw.example.com/sap/opu/odata/SAP
  timeout: 5s
  sap_client: "100"
screens:
  - id: production-orders
    search_fields: [Aufnr, Matnr]
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OData.BaseURL != "https://gw.example.com/sap/opu/odata/SAP" {
		t.Errorf("BaseURL = %q", cfg.OData.BaseURL)
	}
	if cfg.OData.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.OData.Timeout)
	}
	if cfg.OData.SAPClient != "100" {
		t.Errorf("SAPClient = %q, want 100", cfg.OData.SAPClient)
	}
	if cfg.Web.Port != 8085 {
		t.Errorf("Web.Port = %d, want default 8085", cfg.Web.Port)
	}
	if len(cfg.Screens) != 1 || len(cfg.Screens[0].SearchFields) != 2 {
		t.Errorf("Screens = %+v", cfg.Screens)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfloor.yaml")
	cfg := Defaults()
	cfg.OData.BaseURL = "http://sap.local"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.OData.BaseURL != "http://sap.local" {
		t.Errorf("BaseURL = %q, want http://sap.local", got.OData.BaseURL)
	}
}

func TestClientID(t *testing.T) {
	cfg := Defaults()
	if got := cfg.ClientID(); got != "plant.shopfloor-1" {
		t.Errorf("ClientID() = %q", got)
	}
	cfg.Messaging.MQTT.ClientID = "custom"
	if got := cfg.ClientID(); got != "custom" {
		t.Errorf("ClientID() = %q, want custom", got)
	}
}
