package model

import "encoding/json"

// Operation values recognized in listings and user text.
const (
	OperacionVenta      = "venta"
	OperacionAlquiler   = "alquiler"
	OperacionTemporario = "temporario"
)

// Filters represents structured search constraints. A field is present only
// when positively detected or explicitly supplied; nil means "no constraint",
// never "exclude".
type Filters struct {
	Neighborhood *string  `json:"neighborhood,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinRooms     *int     `json:"min_rooms,omitempty"`
	Operacion    *string  `json:"operacion,omitempty"`
	Tipo         *string  `json:"tipo,omitempty"`
	MinSqm       *float64 `json:"min_sqm,omitempty"`
	MaxSqm       *float64 `json:"max_sqm,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f *Filters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Neighborhood == nil && f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinRooms == nil && f.Operacion == nil && f.Tipo == nil &&
		f.MinSqm == nil && f.MaxSqm == nil
}

// Merge fills fields not already set on f from detected. Caller-supplied
// values win; detected values only cover the gaps.
func (f *Filters) Merge(detected *Filters) *Filters {
	merged := &Filters{}
	if f != nil {
		*merged = *f
	}
	if detected != nil {
		if merged.Neighborhood == nil && detected.Neighborhood != nil {
			merged.Neighborhood = detected.Neighborhood
		}
		if merged.MinPrice == nil && detected.MinPrice != nil {
			merged.MinPrice = detected.MinPrice
		}
		if merged.MaxPrice == nil && detected.MaxPrice != nil {
			merged.MaxPrice = detected.MaxPrice
		}
		if merged.MinRooms == nil && detected.MinRooms != nil {
			merged.MinRooms = detected.MinRooms
		}
		if merged.Operacion == nil && detected.Operacion != nil {
			merged.Operacion = detected.Operacion
		}
		if merged.Tipo == nil && detected.Tipo != nil {
			merged.Tipo = detected.Tipo
		}
		if merged.MinSqm == nil && detected.MinSqm != nil {
			merged.MinSqm = detected.MinSqm
		}
		if merged.MaxSqm == nil && detected.MaxSqm != nil {
			merged.MaxSqm = detected.MaxSqm
		}
	}
	return merged
}

// CacheKey returns the canonical serialization of the filter set. Set fields
// are marshalled as a map so keys come out sorted, making the key stable for
// identical filters.
func (f *Filters) CacheKey() string {
	m := map[string]interface{}{}
	if f != nil {
		if f.Neighborhood != nil {
			m["neighborhood"] = *f.Neighborhood
		}
		if f.MinPrice != nil {
			m["min_price"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			m["max_price"] = *f.MaxPrice
		}
		if f.MinRooms != nil {
			m["min_rooms"] = *f.MinRooms
		}
		if f.Operacion != nil {
			m["operacion"] = *f.Operacion
		}
		if f.Tipo != nil {
			m["tipo"] = *f.Tipo
		}
		if f.MinSqm != nil {
			m["min_sqm"] = *f.MinSqm
		}
		if f.MaxSqm != nil {
			m["max_sqm"] = *f.MaxSqm
		}
	}
	key, _ := json.Marshal(m)
	return string(key)
}
