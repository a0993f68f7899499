package domain

// DeviceStatus is the lifecycle status of an Inventory device.
type DeviceStatus string

const (
	DeviceStatusOffline         DeviceStatus = "offline"
	DeviceStatusActive          DeviceStatus = "active"
	DeviceStatusPlanned         DeviceStatus = "planned"
	DeviceStatusStaged          DeviceStatus = "staged"
	DeviceStatusFailed          DeviceStatus = "failed"
	DeviceStatusInventory       DeviceStatus = "inventory"
	DeviceStatusDecommissioning DeviceStatus = "decommissioning"
)

// Device is the Inventory's representation of a device, the symmetric
// counterpart to Site for C1's device operations.
type Device struct {
	ID           *int                   `json:"id,omitempty"`
	Name         string                 `json:"name,omitempty"`
	Tenant       *int                   `json:"tenant,omitempty"`
	Serial       string                 `json:"serial,omitempty"`
	AssetTag     string                 `json:"asset_tag,omitempty"`
	Site         *int                   `json:"site,omitempty"`
	Status       DeviceStatus           `json:"status,omitempty"`
	Comments     string                 `json:"comments,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
	Created      string                 `json:"created,omitempty"`
	LastUpdated  string                 `json:"last_updated,omitempty"`
}

// CreateDeviceRequest is the payload for the Inventory's create-device
// operation.
type CreateDeviceRequest struct {
	Name     string       `json:"name,omitempty"`
	Tenant   *int         `json:"tenant,omitempty"`
	Serial   string       `json:"serial,omitempty"`
	AssetTag string       `json:"asset_tag,omitempty"`
	Site     int          `json:"site"`
	Status   DeviceStatus `json:"status,omitempty"`
	Comments string       `json:"comments,omitempty"`
	Tags     []string     `json:"tags,omitempty"`
}

// UpdateDeviceRequest is a partial update to an existing device.
type UpdateDeviceRequest struct {
	Name     *string      `json:"name,omitempty"`
	Status   DeviceStatus `json:"status,omitempty"`
	Comments *string      `json:"comments,omitempty"`
	Tags     []string     `json:"tags,omitempty"`
}

// ListDevicesQuery describes a filtered, paginated device listing.
type ListDevicesQuery struct {
	Site   *int
	Tenant *int
	Limit  *int
	Offset *int
}

// DeviceListPage is the page of results the Inventory returns for a device
// list operation.
type DeviceListPage struct {
	Count    int      `json:"count"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
	Results  []Device `json:"results"`
}
