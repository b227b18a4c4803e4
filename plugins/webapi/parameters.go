package webapi

import (
	flag "github.com/spf13/pflag"
)

const (
	// CfgBindAddress defines the config flag of the web API binding address.
	CfgBindAddress = "webapi.bindAddress"
	// CfgMaxWait defines the config flag of the longest wait a status request may ask for.
	CfgMaxWait = "webapi.maxWait"
)

func init() {
	flag.String(CfgBindAddress, "127.0.0.1:8080", "the bind address for the web API")
	flag.Duration(CfgMaxWait, defaultMaxWait, "the longest time a status request may wait for the outcome of an attempt")
}
