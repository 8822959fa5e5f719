package server

import "testing"

func TestNodeFromSubject(t *testing.T) {
	tests := []struct {
		subject string
		nodeID  uint8
		wantErr bool
	}{
		{"zwave.node.12.rx", 12, false},
		{"zwave.node.255.rx", 255, false},
		{"zwave.node.0.rx", 0, false},
		{"zwave.node.256.rx", 0, true},
		{"zwave.node.abc.rx", 0, true},
		{"zwave.node.rx", 0, true},
		{"zwave.node.12.extra.rx", 0, true},
	}

	for _, tt := range tests {
		nodeID, err := nodeFromSubject(tt.subject)
		if tt.wantErr {
			if err == nil {
				t.Errorf("nodeFromSubject(%q) expected error, got node %d", tt.subject, nodeID)
			}
			continue
		}
		if err != nil {
			t.Errorf("nodeFromSubject(%q) unexpected error: %v", tt.subject, err)
			continue
		}
		if nodeID != tt.nodeID {
			t.Errorf("nodeFromSubject(%q) = %d, want %d", tt.subject, nodeID, tt.nodeID)
		}
	}
}
