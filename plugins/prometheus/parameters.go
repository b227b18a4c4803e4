package prometheus

import (
	flag "github.com/spf13/pflag"
)

const (
	// CfgPrometheusBindAddress defines the config flag of the bind address of the Prometheus exporter.
	CfgPrometheusBindAddress = "prometheus.bindAddress"
)

func init() {
	flag.String(CfgPrometheusBindAddress, "127.0.0.1:9311", "the bind address on which the Prometheus exporter listens on")
}
