package equipment

import (
	"SiteSim/internal/model"
	"SiteSim/internal/timeline"
)

func merge(acc, cur model.Equipment) model.Equipment {
	if cur.Status != "" {
		acc.Status = cur.Status
	}
	if cur.Delivery != "" {
		acc.Delivery = cur.Delivery
	}
	return acc
}

// Registry holds the delivery state machine of every equipment type.
// Each type has its own timeline of patches folded with a field-wise merge.
type Registry struct {
	types     []model.EquipmentType
	specs     map[model.EquipmentType]model.EquipmentSpec
	timelines map[model.EquipmentType]*timeline.Timeline[model.Equipment]
}

// NewRegistry creates a registry where every equipment type starts unordered.
func NewRegistry(specs []model.EquipmentSpec) *Registry {
	r := &Registry{
		specs:     make(map[model.EquipmentType]model.EquipmentSpec, len(specs)),
		timelines: make(map[model.EquipmentType]*timeline.Timeline[model.Equipment], len(specs)),
	}
	for _, s := range specs {
		r.types = append(r.types, s.Type)
		r.specs[s.Type] = s
		r.timelines[s.Type] = timeline.New(model.Equipment{}, merge, model.Equipment{Status: model.StatusUnordered})
	}
	return r
}

// Types returns the equipment types in configuration order.
func (r *Registry) Types() []model.EquipmentType {
	return r.types
}

// Spec returns the configuration of an equipment type.
func (r *Registry) Spec(t model.EquipmentType) (model.EquipmentSpec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// Status returns the state of t as of week.
func (r *Registry) Status(t model.EquipmentType, week int) model.Equipment {
	tl, ok := r.timelines[t]
	if !ok {
		return model.Equipment{Status: model.StatusUnordered}
	}
	return tl.Reduced(week)
}

// AtWeek returns the state of every equipment type as of week.
func (r *Registry) AtWeek(week int) map[model.EquipmentType]model.Equipment {
	out := make(map[model.EquipmentType]model.Equipment, len(r.types))
	for _, t := range r.types {
		out[t] = r.Status(t, week)
	}
	return out
}

// Order moves t from unordered to ordered at week. It reports whether the
// order was accepted.
func (r *Registry) Order(week int, t model.EquipmentType, delivery model.DeliveryType) bool {
	tl, ok := r.timelines[t]
	if !ok || week < 0 || !delivery.Valid() {
		return false
	}
	if r.Status(t, week).Status != model.StatusUnordered {
		return false
	}
	tl.Set(week, model.Equipment{Status: model.StatusOrdered, Delivery: delivery})
	return true
}

// Cancel reverts an order placed during week. Orders from earlier weeks
// cannot be cancelled.
func (r *Registry) Cancel(week int, t model.EquipmentType) bool {
	tl, ok := r.timelines[t]
	if !ok {
		return false
	}
	if r.Status(t, week-1).Status != model.StatusUnordered || r.Status(t, week).Status != model.StatusOrdered {
		return false
	}
	tl.Set(week, model.Equipment{})
	return true
}

// Deliver completes an outstanding order at week.
func (r *Registry) Deliver(week int, t model.EquipmentType) bool {
	tl, ok := r.timelines[t]
	if !ok {
		return false
	}
	if r.Status(t, week).Status != model.StatusOrdered {
		return false
	}
	tl.Add(week, model.Equipment{Status: model.StatusDelivered})
	return true
}

// NewlyOrdered lists the types whose order was placed during week.
func (r *Registry) NewlyOrdered(week int) []model.EquipmentType {
	var out []model.EquipmentType
	for _, t := range r.types {
		if r.Status(t, week).Status == model.StatusOrdered && r.Status(t, week-1).Status != model.StatusOrdered {
			out = append(out, t)
		}
	}
	return out
}
