package models

// GuestType is a priced guest category, e.g. adult or child.
type GuestType struct {
	ID      string `mapstructure:"id" json:"id"`
	Name    string `mapstructure:"name" json:"name"`
	Minimum int    `mapstructure:"minimum" json:"minimum"`
}

// Activity is a bookable experience. Every departure of it is a separate
// upstream activity id listed in TimeslotIDs.
type Activity struct {
	Slug            string            `mapstructure:"slug" json:"slug"`
	Name            string            `mapstructure:"name" json:"name"`
	ActivityID      int64             `mapstructure:"activity_id" json:"activityId"`
	TimeslotIDs     []int64           `mapstructure:"timeslot_ids" json:"activityIds"`
	DisplayOrder    []int64           `mapstructure:"display_order" json:"activityOrder,omitempty"`
	DepartureLabels map[string]string `mapstructure:"departure_labels" json:"departureLabels,omitempty"`
	ActivityNames   map[string]string `mapstructure:"activity_names" json:"activityNames,omitempty"`
	GuestTypes      []GuestType       `mapstructure:"guest_types" json:"guestTypes"`
}

// Supplier is a tour operator with its own Ponorez credentials.
type Supplier struct {
	Slug        string     `mapstructure:"slug" json:"slug"`
	Name        string     `mapstructure:"name" json:"name"`
	SupplierID  int64      `mapstructure:"supplier_id" json:"supplierId"`
	Username    string     `mapstructure:"username" json:"-"`
	Password    string     `mapstructure:"password" json:"-"`
	GoldCardURL string     `mapstructure:"gold_card_url" json:"-"`
	Activities  []Activity `mapstructure:"activities" json:"activities"`
}

// FindActivity looks an activity up by slug.
func (s *Supplier) FindActivity(slug string) (*Activity, bool) {
	for i := range s.Activities {
		if s.Activities[i].Slug == slug {
			return &s.Activities[i], true
		}
	}
	return nil, false
}

// HasTimeslot reports whether id is one of the activity's configured departures.
func (a *Activity) HasTimeslot(id int64) bool {
	for _, t := range a.TimeslotIDs {
		if t == id {
			return true
		}
	}
	return false
}
