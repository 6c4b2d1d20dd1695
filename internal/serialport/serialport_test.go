package serialport

import (
	"reflect"
	"testing"
)

func TestCandidates(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{
			name:  "prefers usb serial devices",
			names: []string{"/dev/ttyS0", "/dev/ttyACM0", "/dev/ttyUSB1", "/dev/ttyS1"},
			want:  []string{"/dev/ttyACM0", "/dev/ttyUSB1"},
		},
		{
			name:  "no candidates",
			names: []string{"/dev/ttyS0", "/dev/ttyS1"},
			want:  nil,
		},
		{
			name:  "empty list",
			names: nil,
			want:  nil,
		},
		{
			name:  "keeps list order",
			names: []string{"/dev/ttyUSB0", "/dev/ttyACM0"},
			want:  []string{"/dev/ttyUSB0", "/dev/ttyACM0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidates(tt.names); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("candidates(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}
