package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

const mainTF = `
variable "location" {
  default = "westeurope"
}

variable "replication" {}

resource "azurerm_resource_group" "rg" {
  name     = "rg-app"
  location = var.location
}

resource "azurerm_storage_account" "logs" {
  name                     = "stlogs"
  resource_group_name      = azurerm_resource_group.rg.name
  location                 = var.location
  account_tier             = "Standard"
  account_replication_type = "grs"
  access_tier              = "Cool"
}

resource "azurerm_storage_account" "data" {
  name                     = "stdata"
  resource_group_name      = "rg-data"
  location                 = "eastus"
  account_tier             = "Premium"
  account_replication_type = var.replication
}

resource "azurerm_linux_virtual_machine" "vm" {
  name     = "vm1"
  location = "eastus"
  size     = "Standard_B2s"

  os_disk {
    caching              = "ReadWrite"
    storage_account_type = "Standard_LRS"
  }
}

resource "azurerm_key_vault" "kv" {
  name     = "kv1"
  location = "eastus"
}

resource "random_string" "suffix" {
  length = 6
}
`

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestScan(t *testing.T) {
	dir := writeConfig(t, map[string]string{"main.tf": mainTF})

	module, err := NewScanner(nil).Scan(dir)
	require.NoError(t, err)
	require.Len(t, module.Resources, 6)

	logs := module.Resources[1]
	assert.Equal(t, "azurerm_storage_account.logs", logs.Address())
	assert.Equal(t, "main.tf", logs.File)
	assert.Equal(t, "westeurope", logs.Attr("location").AsString())
	assert.False(t, logs.Attr("resource_group_name").Known())

	data := module.Resources[2]
	assert.False(t, data.Attr("account_replication_type").Known())

	vm := module.Resources[3]
	require.NotNil(t, vm.Block("os_disk"))
	assert.Equal(t, "ReadWrite", vm.Block("os_disk")["caching"].AsString())

	n, ok := module.Resources[5].Attr("length").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, float64(6), n)
}

func TestScanTfvarsOverrideDefaults(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"main.tf":          mainTF,
		"terraform.tfvars": `location = "northeurope"`,
		"x.auto.tfvars":    `replication = "LRS"`,
	})

	module, err := NewScanner(nil).Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, "northeurope", module.Variables["location"].AsString())
	assert.Equal(t, "northeurope", module.Resources[1].Attr("location").AsString())
	assert.Equal(t, "LRS", module.Resources[2].Attr("account_replication_type").AsString())
}

func TestScanErrors(t *testing.T) {
	_, err := NewScanner(nil).Scan(filepath.Join(t.TempDir(), "missing.tf"))
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = NewScanner(nil).Scan(t.TempDir())
	assert.True(t, errors.IsType(err, errors.TypeInput))

	dir := writeConfig(t, map[string]string{"broken.tf": `resource "x" {`})
	_, err = NewScanner(nil).Scan(dir)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestIsTerraform(t *testing.T) {
	dir := writeConfig(t, map[string]string{"main.tf": mainTF, "template.json": `{}`})

	assert.True(t, IsTerraform(dir))
	assert.True(t, IsTerraform(filepath.Join(dir, "main.tf")))
	assert.False(t, IsTerraform(filepath.Join(dir, "template.json")))
	assert.False(t, IsTerraform(t.TempDir()))
	assert.False(t, IsTerraform(filepath.Join(dir, "nope")))
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		kind Kind
		data interface{}
	}{
		{"string", cty.StringVal("a"), KindString, "a"},
		{"number", cty.NumberIntVal(3), KindNumber, float64(3)},
		{"bool", cty.True, KindBool, true},
		{"null", cty.NullVal(cty.String), KindNull, nil},
		{"unknown", cty.UnknownVal(cty.String), KindUnknown, nil},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a")}), KindList, []interface{}{"a"}},
		{"object", cty.ObjectVal(map[string]cty.Value{"k": cty.StringVal("v"), "n": cty.NullVal(cty.String)}), KindMap, map[string]interface{}{"k": "v"}},
		{"partly unknown", cty.TupleVal([]cty.Value{cty.UnknownVal(cty.String)}), KindUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Convert(tt.in)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.data, v.Data)
		})
	}
}

func TestSourcePreview(t *testing.T) {
	dir := writeConfig(t, map[string]string{"main.tf": mainTF})
	req := types.DeploymentRequest{ScopeID: "sub-1", ResourceGroup: "rg-default", Scope: types.ScopeResourceGroup}

	resp, err := NewSource(dir, nil).Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSucceeded, resp.Status)

	changes := resp.Changes()
	require.Len(t, changes, 5, "random_string is not an azurerm resource")
	for _, c := range changes {
		assert.Equal(t, types.ChangeCreate, c.ChangeType)
		assert.Nil(t, c.Before)
	}

	assert.Equal(t, "/subscriptions/sub-1/resourceGroups/rg-default/providers/Microsoft.Storage/storageAccounts/stlogs", changes[1].ResourceID)
	assert.Equal(t, "Standard_GRS", changes[1].After.String("sku", "name"))
	assert.Equal(t, "Cool", changes[1].After.String("properties", "accessTier"))
	assert.Equal(t, "westeurope", changes[1].After.Location())

	assert.Equal(t, "/subscriptions/sub-1/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/stdata", changes[2].ResourceID)
	assert.Empty(t, changes[2].After.String("sku", "name"), "unknown replication leaves the sku out")

	assert.Equal(t, "Standard_B2s", changes[3].After.String("properties", "hardwareProfile", "vmSize"))
	assert.Equal(t, "Linux", changes[3].After.String("properties", "storageProfile", "osDisk", "osType"))

	assert.Equal(t, "/subscriptions/sub-1/resourceGroups/rg-default/providers/Terraform/azurerm_key_vault/kv1", changes[4].ResourceID)
}

func TestState(t *testing.T) {
	plan := Resource{
		Type: "azurerm_service_plan",
		Attributes: map[string]Value{
			"location": {Kind: KindString, Data: "eastus"},
			"sku_name": {Kind: KindString, Data: "P1v3"},
			"os_type":  {Kind: KindString, Data: "Linux"},
		},
	}
	st := State(plan)
	assert.Equal(t, "P1v3", st.String("sku", "name"))
	assert.Equal(t, "linux", st.String("kind"))
	reserved, ok := st.Lookup("properties", "reserved")
	assert.True(t, ok)
	assert.Equal(t, true, reserved)

	workspace := State(Resource{Type: "azurerm_log_analytics_workspace", Attributes: map[string]Value{}})
	assert.Equal(t, "PerGB2018", workspace.String("properties", "sku", "name"))

	tsi := State(Resource{
		Type:       "azurerm_iot_time_series_insights_standard_environment",
		Attributes: map[string]Value{"sku_name": {Kind: KindString, Data: "S1_2"}},
	})
	assert.Equal(t, "S1", tsi.String("sku", "name"))

	armType, ok := ARMType("azurerm_firewall")
	assert.True(t, ok)
	assert.Equal(t, "Microsoft.Network/azureFirewalls", armType)
	assert.Contains(t, SupportedTypes(), "azurerm_container_registry")
}
