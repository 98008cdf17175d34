// Package snowflake reads KPI rollups from a Snowflake warehouse and turns
// them into dashboard readings.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/kpi"
)

// historyMonths is how many periods of history each reading carries.
const historyMonths = 12

// Client provides access to the KPI rollup table in Snowflake.
type Client struct {
	config config.SnowflakeConfig
	db     *sql.DB
}

// NewClient opens a pooled connection to Snowflake.
// DSN format: user:password@account/database/schema?warehouse=xxx
func NewClient(cfg config.SnowflakeConfig) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		cfg.User,
		cfg.Password,
		cfg.Account,
		cfg.Database,
		cfg.Schema,
	)
	if cfg.Warehouse != "" {
		dsn += "?warehouse=" + cfg.Warehouse
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{config: cfg, db: db}, nil
}

// newClientWithDB wires a client around an existing handle, for tests.
func newClientWithDB(cfg config.SnowflakeConfig, db *sql.DB) *Client {
	return &Client{config: cfg, db: db}
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// rollupRow is one (kpi, period) row from the rollup table.
type rollupRow struct {
	KPIID  string
	Period string
	Value  float64
	Target float64
}

// Fetch queries recent rollups and builds one reading per KPI found in the
// warehouse. KPIs with no rows are skipped; the classifier handles gaps.
func (c *Client) Fetch(ctx context.Context) ([]kpi.Reading, error) {
	query := fmt.Sprintf(`
		SELECT KPI_ID, PERIOD, VALUE, TARGET_VALUE
		FROM %s
		WHERE PERIOD >= ?
		ORDER BY KPI_ID, PERIOD
	`, c.config.Table)

	cutoff := time.Now().UTC().AddDate(0, -historyMonths, 0).Format("2006-01")

	rows, err := c.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying kpi rollups: %w", err)
	}
	defer rows.Close()

	byKPI := make(map[string][]rollupRow)
	var order []string
	for rows.Next() {
		var r rollupRow
		if err := rows.Scan(&r.KPIID, &r.Period, &r.Value, &r.Target); err != nil {
			return nil, fmt.Errorf("scanning rollup row: %w", err)
		}
		if _, seen := byKPI[r.KPIID]; !seen {
			order = append(order, r.KPIID)
		}
		byKPI[r.KPIID] = append(byKPI[r.KPIID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rollup rows: %w", err)
	}

	now := time.Now().UTC()
	readings := make([]kpi.Reading, 0, len(order))
	for _, id := range order {
		series := byKPI[id]
		if _, err := kpi.Lookup(kpi.ID(id)); err != nil {
			log.Printf("[snowflake] skipping unknown KPI %q in rollup table", id)
			continue
		}
		readings = append(readings, buildReading(kpi.ID(id), series, now))
	}
	return readings, nil
}

// buildReading turns an ordered period series into a reading. The last row
// is the current period, the one before it the previous.
func buildReading(id kpi.ID, series []rollupRow, now time.Time) kpi.Reading {
	last := series[len(series)-1]
	reading := kpi.Reading{
		ID:           id,
		CurrentValue: last.Value,
		TargetValue:  last.Target,
		Trend:        kpi.TrendStable,
		LastUpdated:  now,
	}
	if len(series) > 1 {
		prev := series[len(series)-2]
		reading.PreviousValue = prev.Value
		reading.Trend = deriveTrend(last.Value, prev.Value)
	}

	history := make([]kpi.HistoricalValue, 0, len(series))
	for _, r := range series {
		history = append(history, kpi.HistoricalValue{Period: r.Period, Value: r.Value})
	}
	reading.HistoricalValues = history
	return reading
}

// deriveTrend compares consecutive periods. Moves under half a percent
// count as stable so chart noise doesn't flap the arrow.
func deriveTrend(current, previous float64) kpi.Trend {
	if previous == 0 {
		return kpi.TrendStable
	}
	change := (current - previous) / previous
	switch {
	case change > 0.005:
		return kpi.TrendUp
	case change < -0.005:
		return kpi.TrendDown
	default:
		return kpi.TrendStable
	}
}
