package plain

import (
	"reflect"
	"testing"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		a       []uint64
		b       []uint64
		t       uint64
		want    []uint64
		wantErr bool
	}{
		{
			name: "no wrap",
			a:    []uint64{1, 2, 3, 4},
			b:    []uint64{10, 20, 30, 40},
			t:    97,
			want: []uint64{11, 22, 33, 44},
		},
		{
			name: "wraps modulo t",
			a:    []uint64{90, 96},
			b:    []uint64{10, 96},
			t:    97,
			want: []uint64{3, 95},
		},
		{
			name: "inputs above t are reduced",
			a:    []uint64{200},
			b:    []uint64{0},
			t:    97,
			want: []uint64{6},
		},
		{
			name:    "length mismatch",
			a:       []uint64{1, 2},
			b:       []uint64{1},
			t:       97,
			wantErr: true,
		},
		{
			name:    "zero modulus",
			a:       []uint64{1},
			b:       []uint64{1},
			t:       0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.a, tt.b, tt.t)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Add() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	got, err := Subtract([]uint64{5, 0}, []uint64{7, 1}, 97)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if want := []uint64{95, 96}; !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract() = %v, want %v", got, want)
	}

	if _, err = Subtract([]uint64{1}, nil, 97); err == nil {
		t.Error("Subtract() expected error for length mismatch")
	}
}

func TestMultiply(t *testing.T) {
	// (2^40)^2 overflows 64 bits before the reduction.
	big := uint64(1) << 40
	const q = 1152921504606584833 // 60-bit modulus

	got, err := Multiply([]uint64{3, big}, []uint64{5, big}, q)
	if err != nil {
		t.Fatalf("Multiply() error = %v", err)
	}
	if got[0] != 15 {
		t.Errorf("Multiply()[0] = %d, want 15", got[0])
	}
	if want := mulMod(big, big, q); got[1] != want || got[1] >= q {
		t.Errorf("Multiply()[1] = %d, want %d", got[1], want)
	}

	if _, err = Multiply([]uint64{1}, []uint64{1, 2}, q); err == nil {
		t.Error("Multiply() expected error for length mismatch")
	}
}

func TestScalarMultiply(t *testing.T) {
	got, err := ScalarMultiply([]uint64{1, 2, 50}, 2, 97)
	if err != nil {
		t.Fatalf("ScalarMultiply() error = %v", err)
	}
	if want := []uint64{2, 4, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ScalarMultiply() = %v, want %v", got, want)
	}
}

func TestRotateColumns(t *testing.T) {
	a := []uint64{1, 2, 3, 4, 5, 6, 7, 8}

	tests := []struct {
		k    int
		want []uint64
	}{
		{k: 0, want: []uint64{1, 2, 3, 4, 5, 6, 7, 8}},
		{k: 1, want: []uint64{2, 3, 4, 1, 6, 7, 8, 5}},
		{k: -1, want: []uint64{4, 1, 2, 3, 8, 5, 6, 7}},
		{k: 5, want: []uint64{2, 3, 4, 1, 6, 7, 8, 5}},
	}
	for _, tt := range tests {
		got, err := RotateColumns(a, tt.k)
		if err != nil {
			t.Fatalf("RotateColumns(%d) error = %v", tt.k, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("RotateColumns(%d) = %v, want %v", tt.k, got, tt.want)
		}
	}

	if _, err := RotateColumns([]uint64{1, 2, 3}, 1); err == nil {
		t.Error("RotateColumns() expected error for odd length")
	}
}

func TestRotateRows(t *testing.T) {
	got, err := RotateRows([]uint64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("RotateRows() error = %v", err)
	}
	if want := []uint64{3, 4, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("RotateRows() = %v, want %v", got, want)
	}
}

func TestInnerSum(t *testing.T) {
	a := []uint64{1, 2, 3, 4, 10, 20, 30, 40}

	got, err := InnerSum(a, 2, 97)
	if err != nil {
		t.Fatalf("InnerSum() error = %v", err)
	}
	if want := []uint64{3, 5, 7, 5, 30, 50, 70, 50}; !reflect.DeepEqual(got, want) {
		t.Errorf("InnerSum(n=2) = %v, want %v", got, want)
	}

	got, err = InnerSum(a, 4, 97)
	if err != nil {
		t.Fatalf("InnerSum() error = %v", err)
	}
	if got[0] != 10 || got[4] != 100%97 {
		t.Errorf("InnerSum(n=4) = %v, want slot 0 = 10 and slot 4 = 3", got)
	}

	if _, err = InnerSum(a, 5, 97); err == nil {
		t.Error("InnerSum() expected error for window larger than a row")
	}
}

func TestPad(t *testing.T) {
	if got, want := Pad([]uint64{1, 2}, 4), []uint64{1, 2, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("Pad() = %v, want %v", got, want)
	}
	if got, want := Pad([]uint64{1, 2, 3}, 2), []uint64{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Pad() = %v, want %v", got, want)
	}
}
