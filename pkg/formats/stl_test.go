package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildBinarySTL constructs a binary STL payload from triangles.
func buildBinarySTL(t *testing.T, tris []STLTriangle) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(tris))); err != nil {
		t.Fatalf("writing count: %v", err)
	}
	for _, tri := range tris {
		if err := binary.Write(&buf, binary.LittleEndian, tri.Normal); err != nil {
			t.Fatalf("writing normal: %v", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, tri.Vertices); err != nil {
			t.Fatalf("writing vertices: %v", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint16(0)); err != nil {
			t.Fatalf("writing attributes: %v", err)
		}
	}
	return buf.Bytes()
}

// unitRightTriangle lies in the XY plane with area 0.5.
var unitRightTriangle = STLTriangle{
	Normal: [3]float32{0, 0, 1},
	Vertices: [3][3]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
	},
}

func TestParseBinarySTL(t *testing.T) {
	second := unitRightTriangle
	second.Vertices[0] = [3]float32{0, 0, 2}

	data := buildBinarySTL(t, []STLTriangle{unitRightTriangle, second})

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("failed to parse binary STL: %v", err)
	}

	if stl.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", stl.TriangleCount())
	}
	if stl.Name != "" {
		t.Errorf("expected empty name for binary STL, got %q", stl.Name)
	}
	if stl.Triangles[0].Vertices[1] != [3]float32{1, 0, 0} {
		t.Errorf("unexpected vertex: %v", stl.Triangles[0].Vertices[1])
	}

	bbMin, bbMax := stl.Bounds()
	if bbMin != [3]float32{0, 0, 0} {
		t.Errorf("unexpected min bound: %v", bbMin)
	}
	if bbMax != [3]float32{1, 1, 2} {
		t.Errorf("unexpected max bound: %v", bbMax)
	}
}

func TestParseBinarySTLTruncated(t *testing.T) {
	data := buildBinarySTL(t, []STLTriangle{unitRightTriangle})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", data[:80]},
		{"missing body", data[:90]},
		{"partial triangle", data[:len(data)-10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL(tt.data)
			if !errors.Is(err, ErrTruncatedSTLData) {
				t.Errorf("expected ErrTruncatedSTLData, got %v", err)
			}
		})
	}
}

func TestParseBinarySTLZeroTriangles(t *testing.T) {
	data := buildBinarySTL(t, nil)
	if _, err := ParseSTL(data); !errors.Is(err, ErrEmptySTLModel) {
		t.Errorf("expected ErrEmptySTLModel, got %v", err)
	}
}

func TestParseASCIISTL(t *testing.T) {
	ascii := `solid cube_corner
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 1 0 0
    endloop
  endfacet
endsolid cube_corner
`

	stl, err := ParseSTL([]byte(ascii))
	if err != nil {
		t.Fatalf("failed to parse ASCII STL: %v", err)
	}

	if stl.Name != "cube_corner" {
		t.Errorf("expected name cube_corner, got %q", stl.Name)
	}
	if stl.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", stl.TriangleCount())
	}
	if stl.Triangles[0].Normal != [3]float32{0, 0, 1} {
		t.Errorf("unexpected normal: %v", stl.Triangles[0].Normal)
	}
	if stl.Triangles[1].Vertices[2] != [3]float32{1, 0, 0} {
		t.Errorf("unexpected vertex: %v", stl.Triangles[1].Vertices[2])
	}
}

func TestParseASCIISTLInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "garbage token",
			input: "solid x\nfacet normal 0 0 1\nouter loop\nblorp\nendloop\nendfacet\nendsolid",
		},
		{
			name:  "missing vertex",
			input: "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid",
		},
		{
			name:  "non-numeric coordinate",
			input: "solid x\nfacet normal 0 0 one\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL([]byte(tt.input))
			if !errors.Is(err, ErrInvalidSTLSyntax) {
				t.Errorf("expected ErrInvalidSTLSyntax, got %v", err)
			}
		})
	}
}

func TestBinaryWithSolidHeader(t *testing.T) {
	// Some exporters write "solid" into the binary header. Without a
	// "facet" keyword the file must still be treated as binary.
	data := buildBinarySTL(t, []STLTriangle{unitRightTriangle})
	copy(data[0:], "solid binary_export")

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("misdetected binary STL as ASCII: %v", err)
	}
	if stl.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", stl.TriangleCount())
	}
}

func TestSurfaceArea(t *testing.T) {
	stl := &STL{Triangles: []STLTriangle{unitRightTriangle, unitRightTriangle}}
	if area := stl.SurfaceArea(); math.Abs(area-1.0) > 1e-9 {
		t.Errorf("expected surface area 1.0, got %f", area)
	}
}

func TestDimensions(t *testing.T) {
	tri := unitRightTriangle
	tri.Vertices[2] = [3]float32{0, 4, 3}
	stl := &STL{Triangles: []STLTriangle{tri}}

	dims := stl.Dimensions()
	if dims != [3]float32{1, 4, 3} {
		t.Errorf("unexpected dimensions: %v", dims)
	}
}

func TestParseSTLFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tri.stl")

	data := buildBinarySTL(t, []STLTriangle{unitRightTriangle})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	stl, err := ParseSTLFile(path)
	if err != nil {
		t.Fatalf("failed to parse file: %v", err)
	}
	if stl.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", stl.TriangleCount())
	}

	if _, err := ParseSTLFile(filepath.Join(tmpDir, "missing.stl")); err == nil {
		t.Error("expected error for missing file")
	}
}
