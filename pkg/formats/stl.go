// Package formats provides parsers for 3D model file formats.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTLSyntax = errors.New("invalid ASCII STL syntax")
	ErrEmptySTLModel    = errors.New("STL model contains no triangles")
)

// binaryHeaderSize is the fixed header of a binary STL file.
// The header is followed by a uint32 triangle count.
const binaryHeaderSize = 80

// triangleRecordSize is the on-disk size of one binary triangle:
// normal + 3 vertices (12 float32) plus a 2-byte attribute word.
const triangleRecordSize = 50

// STLTriangle is a single facet: three vertices and a normal.
type STLTriangle struct {
	Normal   [3]float32
	Vertices [3][3]float32
}

// Area returns the surface area of the triangle.
func (t *STLTriangle) Area() float64 {
	ux := float64(t.Vertices[1][0] - t.Vertices[0][0])
	uy := float64(t.Vertices[1][1] - t.Vertices[0][1])
	uz := float64(t.Vertices[1][2] - t.Vertices[0][2])
	vx := float64(t.Vertices[2][0] - t.Vertices[0][0])
	vy := float64(t.Vertices[2][1] - t.Vertices[0][1])
	vz := float64(t.Vertices[2][2] - t.Vertices[0][2])

	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx

	return math.Sqrt(cx*cx+cy*cy+cz*cz) / 2.0
}

// STL represents a parsed STL model.
type STL struct {
	// Name is the solid name from an ASCII file, empty for binary files.
	Name      string
	Triangles []STLTriangle
}

// TriangleCount returns the number of facets in the model.
func (s *STL) TriangleCount() int {
	return len(s.Triangles)
}

// Bounds returns the axis-aligned bounding box as (min, max) corners.
func (s *STL) Bounds() (bbMin, bbMax [3]float32) {
	if len(s.Triangles) == 0 {
		return
	}

	bbMin = s.Triangles[0].Vertices[0]
	bbMax = bbMin
	for ti := range s.Triangles {
		for _, v := range s.Triangles[ti].Vertices {
			for i := 0; i < 3; i++ {
				if v[i] < bbMin[i] {
					bbMin[i] = v[i]
				}
				if v[i] > bbMax[i] {
					bbMax[i] = v[i]
				}
			}
		}
	}
	return
}

// Dimensions returns the bounding box extent along each axis.
func (s *STL) Dimensions() [3]float32 {
	bbMin, bbMax := s.Bounds()
	return [3]float32{bbMax[0] - bbMin[0], bbMax[1] - bbMin[1], bbMax[2] - bbMin[2]}
}

// SurfaceArea returns the total surface area of all facets.
func (s *STL) SurfaceArea() float64 {
	total := 0.0
	for i := range s.Triangles {
		total += s.Triangles[i].Area()
	}
	return total
}

// ParseSTL parses an STL model from raw bytes.
// Binary and ASCII variants are detected automatically.
func ParseSTL(data []byte) (*STL, error) {
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// ParseSTLFile parses an STL model from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// isASCIISTL reports whether the data looks like an ASCII STL file.
// A "solid" prefix alone is not enough: some binary exporters write
// "solid" into the 80-byte header, so require a "facet" keyword too.
func isASCIISTL(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("solid")) && bytes.Contains(head, []byte("facet"))
}

func parseBinarySTL(data []byte) (*STL, error) {
	if len(data) < binaryHeaderSize+4 {
		return nil, ErrTruncatedSTLData
	}

	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	if count == 0 {
		return nil, ErrEmptySTLModel
	}

	body := data[binaryHeaderSize+4:]
	if len(body) < int(count)*triangleRecordSize {
		return nil, fmt.Errorf("%w: header declares %d triangles", ErrTruncatedSTLData, count)
	}

	stl := &STL{Triangles: make([]STLTriangle, count)}
	r := bytes.NewReader(body)

	for i := 0; i < int(count); i++ {
		var tri STLTriangle
		if err := binary.Read(r, binary.LittleEndian, &tri.Normal); err != nil {
			return nil, fmt.Errorf("%w: reading normal %d", ErrTruncatedSTLData, i)
		}
		if err := binary.Read(r, binary.LittleEndian, &tri.Vertices); err != nil {
			return nil, fmt.Errorf("%w: reading vertices %d", ErrTruncatedSTLData, i)
		}
		// Skip the attribute byte count
		var attr uint16
		if err := binary.Read(r, binary.LittleEndian, &attr); err != nil {
			return nil, fmt.Errorf("%w: reading attributes %d", ErrTruncatedSTLData, i)
		}
		stl.Triangles[i] = tri
	}

	return stl, nil
}

func parseASCIISTL(data []byte) (*STL, error) {
	stl := &STL{}

	var (
		tri       STLTriangle
		vertexIdx int
		inFacet   bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				stl.Name = fields[1]
			}
		case "facet":
			// "facet normal nx ny nz"
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: malformed facet", ErrInvalidSTLSyntax, lineNo)
			}
			n, err := parseFloatTriple(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTLSyntax, lineNo, err)
			}
			tri = STLTriangle{Normal: n}
			vertexIdx = 0
			inFacet = true
		case "vertex":
			if !inFacet || vertexIdx >= 3 {
				return nil, fmt.Errorf("%w: line %d: vertex outside facet", ErrInvalidSTLSyntax, lineNo)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: malformed vertex", ErrInvalidSTLSyntax, lineNo)
			}
			v, err := parseFloatTriple(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTLSyntax, lineNo, err)
			}
			tri.Vertices[vertexIdx] = v
			vertexIdx++
		case "endfacet":
			if !inFacet || vertexIdx != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrInvalidSTLSyntax, lineNo, vertexIdx)
			}
			stl.Triangles = append(stl.Triangles, tri)
			inFacet = false
		case "outer", "endloop", "endsolid":
			// Structural keywords with no payload
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected token %q", ErrInvalidSTLSyntax, lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ASCII STL: %w", err)
	}

	if len(stl.Triangles) == 0 {
		return nil, ErrEmptySTLModel
	}

	return stl, nil
}

func parseFloatTriple(fields []string) ([3]float32, error) {
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return out, fmt.Errorf("parsing %q: %w", f, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}
