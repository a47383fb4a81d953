package catalog

import "errors"

// Domain errors for the catalog package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, catalog.ErrSlotNotFound) {
//	    // device has never been seen
//	}
var (
	// ErrSlotNotFound is returned when a serial has no slot assignment.
	ErrSlotNotFound = errors.New("catalog: slot not found")

	// ErrInvalidSerial is returned when a serial number is empty.
	ErrInvalidSerial = errors.New("catalog: serial cannot be empty")

	// ErrInvalidClass is returned when a device class is empty.
	ErrInvalidClass = errors.New("catalog: class cannot be empty")
)
