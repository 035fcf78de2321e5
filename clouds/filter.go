// Package clouds - OData filter builder for the retail prices catalog
package clouds

import "strings"

// Filter accumulates "and"-joined OData predicates
type Filter struct {
	clauses []string
}

// NewFilter creates an empty filter
func NewFilter() *Filter {
	return &Filter{}
}

// ServiceFilter starts a filter on serviceId and armRegionName
func ServiceFilter(serviceID, region string) *Filter {
	return NewFilter().Eq("serviceId", serviceID).Eq("armRegionName", region)
}

// Eq adds "field eq 'value'"
func (f *Filter) Eq(field, value string) *Filter {
	f.clauses = append(f.clauses, eq(field, value))
	return f
}

// AnyOf adds "(field eq 'a' or field eq 'b')". A single value is added as Eq.
func (f *Filter) AnyOf(field string, values ...string) *Filter {
	switch len(values) {
	case 0:
		return f
	case 1:
		return f.Eq(field, values[0])
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = eq(field, v)
	}
	f.clauses = append(f.clauses, "("+strings.Join(parts, " or ")+")")
	return f
}

// Contains adds "contains(field, 'value')"
func (f *Filter) Contains(field, value string) *Filter {
	f.clauses = append(f.clauses, "contains("+field+", "+quote(value)+")")
	return f
}

// Consumption restricts results to pay-as-you-go prices
func (f *Filter) Consumption() *Filter {
	return f.Eq("priceType", "Consumption")
}

// String renders the predicate
func (f *Filter) String() string {
	return strings.Join(f.clauses, " and ")
}

func eq(field, value string) string {
	return field + " eq " + quote(value)
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// NormalizeRegion turns a display location ("East US") into an ARM region name ("eastus")
func NormalizeRegion(location string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(location), " ", ""))
}
