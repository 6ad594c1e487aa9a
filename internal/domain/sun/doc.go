// Package sun contains core domain types for day/night synchronization.
//
// It defines State (the two-valued Up/Down classification that drives visual
// mode) and Coordinate (a geographic position parsed from "lat,lon" input).
package sun
