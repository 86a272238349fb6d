package utils

import (
	"reflect"
	"testing"
)

func TestParseHostNoPort(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:8765": "127.0.0.1",
		"[::1]:8765":     "::1",
		"10.0.0.1":       "10.0.0.1",
		"":               "",
	}
	for in, want := range tests {
		if got := ParseHostNoPort(in); got != want {
			t.Errorf("ParseHostNoPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"127.0.0.1", " ::1 ", "192.168.1.0/24", "not-an-ip"})

	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"192.168.1.42", true},
		{"192.168.2.1", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if m.IsEmpty() {
		t.Error("matcher should not be empty")
	}
	if !NewIPMatcher([]string{"", "nope"}).IsEmpty() {
		t.Error("matcher with no valid entries should be empty")
	}
}

func TestInvalid(t *testing.T) {
	got := Invalid([]string{"127.0.0.1", "10.0.0.0/8", "localhost", " ", "300.1.1.1"})
	want := []string{"localhost", "300.1.1.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Invalid() = %v, want %v", got, want)
	}
}
