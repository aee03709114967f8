package proctor

import "testing"

func TestPhoneFlag(t *testing.T) {
	person := NewRectFromCorners(5, 5, 105, 205)
	// Person center (55, 105), threshold 0.4*200 = 80
	cases := []struct {
		name   string
		phones []Rectangle
		want   bool
	}{
		{"no phones", nil, false},
		{"phone near center", []Rectangle{NewRectFromCorners(10, 10, 60, 260)}, true},
		{"phone far away", []Rectangle{NewRectFromCorners(500, 500, 520, 540)}, false},
		{"far then near", []Rectangle{NewRectFromCorners(500, 500, 520, 540), NewRectFromCorners(50, 100, 60, 110)}, true},
		// Center at (55, 185): distance exactly 80 must not count
		{"exactly on threshold", []Rectangle{NewRectFromCorners(50, 180, 60, 190)}, false},
	}
	for _, tc := range cases {
		if got := PhoneFlag(person, tc.phones, 0.4); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
