// Package solar classifies the current moment as day (Up) or night (Down)
// for a geographic coordinate by fetching today's sunrise and sunset from a
// sunrise-sunset.org-style HTTP endpoint.
package solar
