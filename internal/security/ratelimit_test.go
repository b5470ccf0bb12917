package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over budget allowed, want denied")
	}

	// other clients have their own budget
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh client denied, want allowed")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request allowed before refill")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("request denied after window elapsed, want allowed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{"x-forwarded-for wins", "198.51.100.1", "198.51.100.2", "127.0.0.1:1234", "198.51.100.1"},
		{"x-real-ip next", "", "198.51.100.2", "127.0.0.1:1234", "198.51.100.2"},
		{"remote addr fallback", "", "", "127.0.0.1:1234", "127.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
