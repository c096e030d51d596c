package services

import (
	"errors"
	"fmt"

	"booking-server/models"
)

var (
	ErrUnknownSupplier = errors.New("unknown supplier")
	ErrUnknownActivity = errors.New("unknown activity")
)

// SupplierRegistry resolves supplier and activity slugs to their configuration.
type SupplierRegistry struct {
	suppliers       map[string]*models.Supplier
	order           []string
	defaultSupplier string
	defaultActivity string
}

// NewSupplierRegistry indexes the configured suppliers by slug.
func NewSupplierRegistry(suppliers []models.Supplier, defaultSupplier, defaultActivity string) *SupplierRegistry {
	r := &SupplierRegistry{
		suppliers:       make(map[string]*models.Supplier, len(suppliers)),
		defaultSupplier: defaultSupplier,
		defaultActivity: defaultActivity,
	}
	for i := range suppliers {
		s := suppliers[i]
		r.suppliers[s.Slug] = &s
		r.order = append(r.order, s.Slug)
	}
	if r.defaultSupplier == "" && len(r.order) == 1 {
		r.defaultSupplier = r.order[0]
	}
	return r
}

// Resolve looks up a supplier and one of its activities. Empty slugs fall
// back to the configured defaults, or to the only entry when there is one.
func (r *SupplierRegistry) Resolve(supplierSlug, activitySlug string) (*models.Supplier, *models.Activity, error) {
	if supplierSlug == "" {
		supplierSlug = r.defaultSupplier
	}
	supplier, ok := r.suppliers[supplierSlug]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSupplier, supplierSlug)
	}

	if activitySlug == "" {
		activitySlug = r.defaultActivity
		if activitySlug == "" && len(supplier.Activities) == 1 {
			activitySlug = supplier.Activities[0].Slug
		}
	}
	activity, ok := supplier.FindActivity(activitySlug)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q for supplier %q", ErrUnknownActivity, activitySlug, supplierSlug)
	}
	return supplier, activity, nil
}

// All returns the suppliers in configuration order.
func (r *SupplierRegistry) All() []*models.Supplier {
	out := make([]*models.Supplier, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.suppliers[slug])
	}
	return out
}

// Supplier looks a supplier up by slug, falling back to the default one.
func (r *SupplierRegistry) Supplier(slug string) (*models.Supplier, error) {
	if slug == "" {
		slug = r.defaultSupplier
	}
	supplier, ok := r.suppliers[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSupplier, slug)
	}
	return supplier, nil
}
