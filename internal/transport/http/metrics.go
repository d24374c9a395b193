package httptransport

import "expvar"

var (
	metricSessionCreateTotal  = expvar.NewInt("session_create_total")
	metricSessionCreateErrors = expvar.NewInt("session_create_errors_total")

	metricJoinTotal  = expvar.NewInt("session_join_total")
	metricJoinErrors = expvar.NewInt("session_join_errors_total")

	metricKillTotal          = expvar.NewInt("kill_record_total")
	metricSpawnPurchaseTotal = expvar.NewInt("spawn_purchase_total")

	metricDistributionTotal  = expvar.NewInt("distribution_total")
	metricDistributionErrors = expvar.NewInt("distribution_errors_total")
)
