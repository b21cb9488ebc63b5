package metrics

import (
	_ "embed"
)

//go:embed dashboard.json
var dashboardJSON []byte

// DashboardPath is where the exporter serves the bundled Grafana dashboard.
const DashboardPath = "/dashboards/hp-instant-ink.json"

// Dashboards maps request paths to dashboard JSON.
func Dashboards() map[string][]byte {
	return map[string][]byte{DashboardPath: dashboardJSON}
}
