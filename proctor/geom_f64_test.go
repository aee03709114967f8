package proctor

import (
	"encoding/json"
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correnctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correnctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correnctAnswer)
	}
}

func TestRectFromCorners(t *testing.T) {
	rect := NewRectFromCorners(10, 20, 110, 220)
	if rect.Width != 100 || rect.Height != 200 {
		t.Errorf("Expected 100x200, got %vx%v", rect.Width, rect.Height)
	}
	center := rect.Center()
	if center != (Point{X: 60, Y: 120}) {
		t.Errorf("Wrong center: %v", center)
	}
	if rect.Area() != 20000 {
		t.Errorf("Wrong area: %v", rect.Area())
	}
	x1, y1, x2, y2 := rect.Corners()
	if x1 != 10 || y1 != 20 || x2 != 110 || y2 != 220 {
		t.Errorf("Wrong corners: %v %v %v %v", x1, y1, x2, y2)
	}
}

func TestSizeRatio(t *testing.T) {
	a := NewRectFromCorners(0, 0, 100, 200)
	b := NewRectFromCorners(0, 0, 100, 100)
	if ratio := sizeRatio(a, b); math.Abs(ratio-0.5) > eps {
		t.Errorf("Wrong ratio: %v, correct answer: 0.5", ratio)
	}
	// Degenerate boxes must not divide by zero
	zero := NewRect(5, 5, 0, 0)
	if ratio := sizeRatio(zero, zero); ratio != 0 {
		t.Errorf("Wrong ratio for zero-area boxes: %v", ratio)
	}
	tiny := NewRect(0, 0, 0.5, 1)
	if ratio := sizeRatio(zero, tiny); math.Abs(ratio-0.5) > eps {
		t.Errorf("Wrong ratio with divisor floor: %v, correct answer: 0.5", ratio)
	}
}

func TestRectangleJSON(t *testing.T) {
	rect := NewRectFromCorners(1, 2, 3, 5)
	data, err := json.Marshal(rect)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1,2,3,5]" {
		t.Errorf("Wrong wire format: %s", data)
	}
	var decoded Rectangle
	if err := json.Unmarshal([]byte("[0,0,100,200]"), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != NewRect(0, 0, 100, 200) {
		t.Errorf("Wrong decoded rectangle: %v", decoded)
	}
	if err := json.Unmarshal([]byte(`{"x":1}`), &decoded); err == nil {
		t.Error("Expected error for object-shaped box")
	}
}
