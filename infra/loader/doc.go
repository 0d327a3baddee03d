// Package loader reads the AGES dashboard CSV exports and serves them
// through the core dataset contracts. Case counts arrive as cumulative
// totals per (day, region, age group) and are differenced into daily new
// cases; occupancy arrives as daily bed counts per region and bed type.
package loader
