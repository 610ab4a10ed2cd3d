package buffer

import (
	"encoding/binary"
	"math"
	"slices"
	"testing"
)

func TestDynamicGrowthInvariant(t *testing.T) {
	d := NewDynamic[float32](1)
	for i := 0; i < 1000; i++ {
		d.Push(float32(i))
		if d.Len() > d.Cap() {
			t.Fatalf("Len %d > Cap %d", d.Len(), d.Cap())
		}
	}
	if d.Cap() != 1024 {
		t.Errorf("Cap() = %d, want 1024", d.Cap())
	}
	if d.Grows() != 10 {
		t.Errorf("Grows() = %d, want 10", d.Grows())
	}

	capBefore := d.Cap()
	d.Clear()
	if d.Len() != 0 || d.Cap() != capBefore {
		t.Errorf("after Clear Len=%d Cap=%d, want 0, %d", d.Len(), d.Cap(), capBefore)
	}
}

func TestDynamicZeroCapacity(t *testing.T) {
	var d Dynamic[uint16]
	d.Push(7)
	d.PushN(1, 2, 3)
	if !slices.Equal(d.ViewAll(), []uint16{7, 1, 2, 3}) {
		t.Errorf("ViewAll() = %v", d.ViewAll())
	}
	if d.Cap() != 4 {
		t.Errorf("Cap() = %d, want 4", d.Cap())
	}
}

func TestDynamicResize(t *testing.T) {
	d := NewDynamic[uint32](4)
	d.Push(1)
	d.Resize(10)
	if d.Cap() != 16 {
		t.Errorf("Cap() = %d, want 16", d.Cap())
	}
	if d.Len() != 1 {
		t.Errorf("Resize changed Len to %d", d.Len())
	}
	grows := d.Grows()
	d.PushN(make([]uint32, 10)...)
	if d.Grows() != grows {
		t.Error("push after Resize reallocated")
	}
}

func TestDynamicPopAndView(t *testing.T) {
	d := NewDynamic[float32](8)
	d.PushN(0, 1, 2, 3, 4, 5)
	d.Pop(2)
	if d.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", d.Len())
	}

	tests := []struct {
		name       string
		begin, end int
		want       []float32
	}{
		{"middle", 1, 3, []float32{1, 2}},
		{"clamped end", 2, 100, []float32{2, 3}},
		{"negative begin", -5, 1, []float32{0}},
		{"inverted", 3, 1, []float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.View(tt.begin, tt.end); !slices.Equal(got, tt.want) {
				t.Errorf("View(%d, %d) = %v, want %v", tt.begin, tt.end, got, tt.want)
			}
		})
	}

	d.Pop(100)
	if d.Len() != 0 {
		t.Errorf("Pop past zero left Len = %d", d.Len())
	}
}

func TestDynamicBytes(t *testing.T) {
	f := NewDynamic[float32](2)
	f.PushN(1.5, -2)
	b := f.Bytes()
	if len(b) != 8 || math.Float32frombits(binary.LittleEndian.Uint32(b[4:])) != -2 {
		t.Errorf("float32 Bytes() = %v", b)
	}

	u := NewDynamic[uint16](2)
	u.PushN(0x0102, 0x0304)
	if got := u.Bytes(); !slices.Equal(got, []byte{2, 1, 4, 3}) {
		t.Errorf("uint16 Bytes() = %v", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		got  Kind
		want Kind
		size int
	}{
		{NewDynamic[float32](0).Kind(), Float32, 4},
		{NewDynamic[uint16](0).Kind(), Uint16, 2},
		{NewDynamic[uint32](0).Kind(), Uint32, 4},
	}
	for _, tt := range tests {
		if tt.got != tt.want || tt.got.Size() != tt.size {
			t.Errorf("Kind = %v (size %d), want %v (size %d)", tt.got, tt.got.Size(), tt.want, tt.size)
		}
	}
}
