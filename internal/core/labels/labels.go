// Package labels formats the human names printed on shipments and boxes
package labels

import "fmt"

// Shipment renders warehouse-date-NNN, the per day number zero padded to three digits
func Shipment(warehouse, date string, numberInDay int) string {
	return fmt.Sprintf("%s-%s-%03d", warehouse, date, numberInDay)
}

// Box renders "Box N", or "no box" for rows scanned outside any box
func Box(ordinal int) string {
	if ordinal <= 0 {
		return "no box"
	}
	return fmt.Sprintf("Box %d", ordinal)
}
