// Package model is the catalogue of chat models a draft can be written with
// and their per-million-token prices.
//
// The client picks a provider's default when no model is configured, and
// the metrics accumulator prices each call by model id:
//
//	if m, ok := model.Lookup(gen.Model); ok {
//	    cost += m.Cost(gen.Usage)
//	}
//
// Prices last checked December 2025.
package model
