// Package model contains the domain types shared across the engine.
package model

// ListRecord is one parsed entry of the remote blocklist.
type ListRecord struct {
	DisplayName string
	ExternalID  string
}
