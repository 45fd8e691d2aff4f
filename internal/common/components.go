package common

const (
	ComponentSource      = "source"
	ComponentDispatcher  = "dispatcher"
	ComponentStore       = "store"
	ComponentAPI         = "api"
	ComponentMaintenance = "maintenance"
	ComponentRPC         = "rpc"
)

var AllComponents = map[string]struct{}{
	ComponentSource:      {},
	ComponentDispatcher:  {},
	ComponentStore:       {},
	ComponentAPI:         {},
	ComponentMaintenance: {},
	ComponentRPC:         {},
}
