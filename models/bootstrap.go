package models

// BootstrapConfig is the read-only configuration embedded in the booking page.
// Activity ids are strings on the page side.
type BootstrapConfig struct {
	Supplier        string            `json:"supplier"`
	SupplierName    string            `json:"supplierName,omitempty"`
	Activity        string            `json:"activity"`
	ActivityName    string            `json:"activityName,omitempty"`
	Today           string            `json:"today,omitempty"`
	GuestTypes      []GuestType       `json:"guestTypes"`
	ActivityIDs     []string          `json:"activityIds"`
	ActivityOrder   []string          `json:"activityOrder,omitempty"`
	DepartureLabels map[string]string `json:"departureLabels,omitempty"`
	ActivityNames   map[string]string `json:"activityNames,omitempty"`
}
