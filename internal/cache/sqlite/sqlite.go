// Package sqlite caches the topology discovered by a crawl so the `list`
// command can show it without touching the PDU again. Only topology is
// stored, never readings.
package sqlite

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rackprobe/raritan-pdu-exporter/internal/util"
	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

const (
	CONNECTOR_TABLE = "raritan_connectors"
	SENSOR_TABLE    = "raritan_sensors"
)

// ConnectorRow is one cached connector.
type ConnectorRow struct {
	PDU         string    `db:"pdu" json:"pdu"`
	RID         string    `db:"rid" json:"rid"`
	Type        string    `db:"type" json:"type"`
	Label       string    `db:"label" json:"label"`
	CustomLabel string    `db:"custom_label" json:"custom_label"`
	Socket      string    `db:"socket" json:"socket,omitempty"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// SensorRow is one cached sensor.
type SensorRow struct {
	PDU       string    `db:"pdu" json:"pdu"`
	RID       string    `db:"rid" json:"rid"`
	Connector string    `db:"connector" json:"connector"`
	Name      string    `db:"name" json:"name"`
	Metric    string    `db:"metric" json:"metric"`
	Unit      string    `db:"unit" json:"unit"`
	Longname  string    `db:"longname" json:"longname,omitempty"`
	Interface string    `db:"interface" json:"interface"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// Inventory is everything the cache holds for display.
type Inventory struct {
	Connectors []ConnectorRow `json:"connectors"`
	Sensors    []SensorRow    `json:"sensors"`
}

func CreateInventoryIfNotExists(path string) (*sqlx.DB, error) {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		pdu          TEXT NOT NULL,
		rid          TEXT NOT NULL,
		type         TEXT,
		label        TEXT,
		custom_label TEXT,
		socket       TEXT,
		timestamp    TIMESTAMP,
		PRIMARY KEY (pdu, rid)
	);
	CREATE TABLE IF NOT EXISTS %s (
		pdu       TEXT NOT NULL,
		rid       TEXT NOT NULL,
		connector TEXT,
		name      TEXT,
		metric    TEXT,
		unit      TEXT,
		longname  TEXT,
		interface TEXT,
		timestamp TIMESTAMP,
		PRIMARY KEY (pdu, rid)
	);
	`, CONNECTOR_TABLE, SENSOR_TABLE)
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	db.MustExec(schema)
	return db, nil
}

// InsertInventory upserts the discovered topology of one PDU into the
// cache.
func InsertInventory(path string, pdu *raritan.PDU) error {
	if pdu == nil {
		return fmt.Errorf("pdu == nil")
	}

	db, err := CreateInventoryIfNotExists(path)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	tx := db.MustBegin()
	for _, c := range pdu.Connectors {
		sql := fmt.Sprintf(`INSERT OR REPLACE INTO %s (pdu, rid, type, label, custom_label, socket, timestamp)
		VALUES (:pdu, :rid, :type, :label, :custom_label, :socket, :timestamp);`, CONNECTOR_TABLE)
		row := ConnectorRow{
			PDU:         pdu.Name,
			RID:         c.RID,
			Type:        string(c.Type),
			Label:       c.Label,
			CustomLabel: c.CustomLabel,
			Socket:      c.Socket,
			Timestamp:   now,
		}
		if _, err := tx.NamedExec(sql, &row); err != nil {
			return fmt.Errorf("failed to insert connector: %v", err)
		}
	}
	for _, s := range pdu.Sensors {
		sql := fmt.Sprintf(`INSERT OR REPLACE INTO %s (pdu, rid, connector, name, metric, unit, longname, interface, timestamp)
		VALUES (:pdu, :rid, :connector, :name, :metric, :unit, :longname, :interface, :timestamp);`, SENSOR_TABLE)
		row := SensorRow{
			PDU:       pdu.Name,
			RID:       s.RID,
			Connector: s.Parent.ExportLabel(),
			Name:      s.Name,
			Metric:    s.Metric,
			Unit:      s.Unit,
			Longname:  s.Longname,
			Interface: s.Interface,
			Timestamp: now,
		}
		if _, err := tx.NamedExec(sql, &row); err != nil {
			return fmt.Errorf("failed to insert sensor: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// GetInventory reads everything back from the cache.
func GetInventory(path string) (*Inventory, error) {
	// check if path exists first to prevent creating the database
	exists, _ := util.PathExists(path)
	if !exists {
		return nil, fmt.Errorf("no file found")
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	inventory := &Inventory{}
	err = db.Select(&inventory.Connectors,
		fmt.Sprintf("SELECT * FROM %s ORDER BY pdu ASC, rid ASC;", CONNECTOR_TABLE))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve connectors: %v", err)
	}
	err = db.Select(&inventory.Sensors,
		fmt.Sprintf("SELECT * FROM %s ORDER BY pdu ASC, rid ASC;", SENSOR_TABLE))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sensors: %v", err)
	}
	return inventory, nil
}
