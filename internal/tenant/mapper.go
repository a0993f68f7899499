// Package tenant implements the Tenant Access Layer (spec §4.C8): the
// app-tenant to inventory-tenant mapping and the ownership checks every
// resource operation is filtered through.
package tenant

import "sync"

// Mapper resolves an app-tenant identity (the string asserted via
// X-Tenant-Id) to the integer inventory-tenant id, and back.
//
// A single Mapper instance must be shared by every caller that needs to
// resolve or verify tenant ownership — the request-path authorization
// check and the resource-ownership check are two views onto the same
// mapping table, not independent copies (see SPEC_FULL.md's supplemented
// shared-mapping-instance note).
type Mapper struct {
	mu      sync.RWMutex
	forward map[string]int // app-tenant -> inventory-tenant
	reverse map[int]string // inventory-tenant -> app-tenant
}

// NewMapper constructs an empty Mapper.
func NewMapper() *Mapper {
	return &Mapper{
		forward: make(map[string]int),
		reverse: make(map[int]string),
	}
}

// Register associates an app-tenant with an inventory-tenant. Intended for
// startup wiring (static tenant config) and tests; safe to call
// concurrently with lookups.
func (m *Mapper) Register(appTenant string, inventoryTenant int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forward[appTenant] = inventoryTenant
	m.reverse[inventoryTenant] = appTenant
}

// Resolve returns the inventory-tenant id for an app-tenant, or ok=false if
// the app-tenant is unknown.
func (m *Mapper) Resolve(appTenant string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.forward[appTenant]
	return id, ok
}

// AppTenantOf returns the app-tenant for an inventory-tenant id, or
// ok=false if unmapped.
func (m *Mapper) AppTenantOf(inventoryTenant int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	appTenant, ok := m.reverse[inventoryTenant]
	return appTenant, ok
}
