package hcl

import (
	"sort"
	"strings"

	"arm-cost/core/types"
)

// mapping converts an azurerm resource to its ARM type and desired state
type mapping struct {
	armType string
	state   func(r Resource, st types.ResourceState)
}

var mappings = map[string]mapping{
	"azurerm_storage_account": {
		armType: "Microsoft.Storage/storageAccounts",
		state: func(r Resource, st types.ResourceState) {
			tier, repl := r.Attr("account_tier"), r.Attr("account_replication_type")
			if tier.Known() && repl.Known() {
				set(st, tier.AsString()+"_"+strings.ToUpper(repl.AsString()), "sku", "name")
			}
			setAttr(st, r.Attr("account_kind"), "kind")
			setAttr(st, r.Attr("access_tier"), "properties", "accessTier")
		},
	},
	"azurerm_container_app": {
		armType: "Microsoft.App/containerApps",
		state:   func(r Resource, st types.ResourceState) {},
	},
	"azurerm_container_registry": {
		armType: "Microsoft.ContainerRegistry/registries",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("sku"), "sku", "name")
		},
	},
	"azurerm_service_plan": {
		armType: "Microsoft.Web/serverfarms",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("sku_name"), "sku", "name")
			if osType := r.Attr("os_type"); osType.Known() {
				linux := strings.EqualFold(osType.AsString(), "Linux")
				set(st, linux, "properties", "reserved")
				if linux {
					set(st, "linux", "kind")
				} else {
					set(st, "app", "kind")
				}
			}
		},
	},
	"azurerm_log_analytics_workspace": {
		armType: "Microsoft.OperationalInsights/workspaces",
		state: func(r Resource, st types.ResourceState) {
			// the provider defaults sku to PerGB2018
			set(st, "PerGB2018", "properties", "sku", "name")
			setAttr(st, r.Attr("sku"), "properties", "sku", "name")
			setAttr(st, r.Attr("reservation_capacity_in_gb_per_day"), "properties", "sku", "capacityReservationLevel")
		},
	},
	"azurerm_firewall": {
		armType: "Microsoft.Network/azureFirewalls",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("sku_name"), "properties", "sku", "name")
			setAttr(st, r.Attr("sku_tier"), "properties", "sku", "tier")
		},
	},
	"azurerm_bot_service_azure_bot": {
		armType: "Microsoft.BotService/botServices",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("sku"), "sku", "name")
		},
	},
	"azurerm_iot_time_series_insights_gen2_environment": {
		armType: "Microsoft.TimeSeriesInsights/environments",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("sku_name"), "sku", "name")
		},
	},
	"azurerm_iot_time_series_insights_standard_environment": {
		armType: "Microsoft.TimeSeriesInsights/environments",
		state: func(r Resource, st types.ResourceState) {
			// sku_name is "<sku>_<capacity>", e.g. "S1_1"
			if v := r.Attr("sku_name"); v.Known() {
				sku, _, _ := strings.Cut(v.AsString(), "_")
				set(st, sku, "sku", "name")
			}
		},
	},
	"azurerm_linux_virtual_machine": {
		armType: "Microsoft.Compute/virtualMachines",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("size"), "properties", "hardwareProfile", "vmSize")
			set(st, "Linux", "properties", "storageProfile", "osDisk", "osType")
		},
	},
	"azurerm_windows_virtual_machine": {
		armType: "Microsoft.Compute/virtualMachines",
		state: func(r Resource, st types.ResourceState) {
			setAttr(st, r.Attr("size"), "properties", "hardwareProfile", "vmSize")
			set(st, "Windows", "properties", "storageProfile", "osDisk", "osType")
		},
	},
}

// ARMType returns the ARM resource type of an azurerm resource type
func ARMType(terraformType string) (string, bool) {
	m, ok := mappings[terraformType]
	return m.armType, ok
}

// SupportedTypes returns the azurerm resource types that are mapped, sorted
func SupportedTypes() []string {
	out := make([]string, 0, len(mappings))
	for t := range mappings {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// State builds the desired state of a resource. Unknown attributes are left out.
func State(r Resource) types.ResourceState {
	st := types.ResourceState{}
	setAttr(st, r.Attr("location"), "location")
	if tags := r.Attr("tags"); tags.Kind == KindMap {
		st["tags"] = tags.Data
	}
	if m, ok := mappings[r.Type]; ok {
		m.state(r, st)
	}
	return st
}

func setAttr(st types.ResourceState, v Value, path ...string) {
	if v.Known() {
		set(st, v.Data, path...)
	}
}

// set writes value at path, creating intermediate objects
func set(st types.ResourceState, value interface{}, path ...string) {
	current := map[string]interface{}(st)
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[key] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}
