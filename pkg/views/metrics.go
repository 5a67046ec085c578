package views

import "github.com/prometheus/client_golang/prometheus"

var batterySOC = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "sungrowmon_battery_soc_percent",
		Help: "Latest battery state of charge of mounted battery cards",
	},
	[]string{"ps_key"},
)

// MetricsCollectors returns collectors for the views.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{batterySOC}
}
