package models

import "testing"

func TestIsRequestedBy(t *testing.T) {
	requester := "12345"
	item := &MediaItem{RequestedByPlexID: &requester}

	if !item.IsRequestedBy("12345") {
		t.Error("IsRequestedBy() = false for the requester")
	}
	if item.IsRequestedBy("99999") {
		t.Error("IsRequestedBy() = true for a different user")
	}

	orphan := &MediaItem{}
	if orphan.IsRequestedBy("12345") {
		t.Error("IsRequestedBy() = true with no requester on record")
	}
}
