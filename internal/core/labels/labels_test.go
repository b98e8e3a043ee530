package labels

import "testing"

func TestShipment(t *testing.T) {
	tests := []struct {
		wh, date string
		n        int
		want     string
	}{
		{"Коледино", "2025-03-01", 1, "Коледино-2025-03-01-001"},
		{"Тула", "2025-12-31", 42, "Тула-2025-12-31-042"},
		{"Казань", "2025-01-02", 1234, "Казань-2025-01-02-1234"},
	}
	for _, tt := range tests {
		if got := Shipment(tt.wh, tt.date, tt.n); got != tt.want {
			t.Fatalf("Shipment(%q,%q,%d) = %q, want %q", tt.wh, tt.date, tt.n, got, tt.want)
		}
	}
}

func TestBox(t *testing.T) {
	if Box(3) != "Box 3" {
		t.Fatalf("Box(3) = %q", Box(3))
	}
	if Box(0) != "no box" {
		t.Fatalf("Box(0) = %q", Box(0))
	}
}
