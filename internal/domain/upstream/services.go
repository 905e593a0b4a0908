package upstream

// Имена сервисов RMM.
const (
	ListClients                = "list_clients"
	ListSites                  = "list_sites"
	ListDevicesAtClient        = "list_devices_at_client"
	ListFailingChecks          = "list_failing_checks"
	ListServers                = "list_servers"
	ListWorkstations           = "list_workstations"
	ListAgentlessAssets        = "list_agentless_assets"
	ListChecks                 = "list_checks"
	ListOutages                = "list_outages"
	ListPerformanceHistory     = "list_performance_history"
	ListExchangeStorageHistory = "list_exchange_storage_history"
	ListAllHardware            = "list_all_hardware"
	ListAllSoftware            = "list_all_software"
	ListSupportedAVProducts    = "list_supported_av_products"
)

// Имена сервисов защиты агентов.
const (
	Threats = "threats"
	Agents  = "agents"
)
