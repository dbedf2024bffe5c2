// Package wavefront reads Wavefront OBJ geometry.
//
// Object format: http://paulbourke.net/dataformats/obj/
package wavefront

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

type Vec2 [2]float32
type Vec3 [3]float32

// Vertex references attributes by zero-based index; -1 means absent
type Vertex struct {
	Position int
	Texcoord int
	Normal   int
}

// Triangle is a face after fan triangulation
type Triangle [3]Vertex

// Mesh holds the geometry of a single OBJ file
type Mesh struct {
	Positions []Vec3
	Texcoords []Vec2
	Normals   []Vec3
	Triangles []Triangle

	Objects      []string // o
	Groups       []string // g
	MaterialLibs []string // mtllib
	Materials    []string // usemtl, in order of first use
}

// ParseError represents a malformed statement
type ParseError struct {
	Line    int
	Field   string
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s - %s", e.Line, e.Field, e.Message)
}

// Parse reads an OBJ stream. Unsupported statements (s, l, p, curves) are skipped.
func Parse(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	seenMaterial := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		keyword := strings.ToLower(fields[0])
		args := fields[1:]

		switch keyword {
		case "v": // geometric vertices: x, y, z, [w]
			v, err := parseVec3(args, lineNum, keyword)
			if err != nil {
				return nil, err
			}
			m.Positions = append(m.Positions, v)

		case "vn": // vertex normals: i, j, k
			v, err := parseVec3(args, lineNum, keyword)
			if err != nil {
				return nil, err
			}
			m.Normals = append(m.Normals, v)

		case "vt": // texture vertices: u, [v], [w]
			if len(args) < 1 {
				return nil, ParseError{Line: lineNum, Field: keyword, Message: "expected at least 1 component"}
			}
			var uv Vec2
			for i := 0; i < 2 && i < len(args); i++ {
				f, err := strconv.ParseFloat(args[i], 32)
				if err != nil {
					return nil, ParseError{Line: lineNum, Field: keyword, Message: err.Error()}
				}
				uv[i] = float32(f)
			}
			m.Texcoords = append(m.Texcoords, uv)

		case "f":
			if len(args) < 3 {
				return nil, ParseError{Line: lineNum, Field: keyword, Message: fmt.Sprintf("face needs at least 3 vertices, got %d", len(args))}
			}
			verts := make([]Vertex, len(args))
			for i, a := range args {
				v, err := m.parseVertex(a)
				if err != nil {
					return nil, ParseError{Line: lineNum, Field: keyword, Message: err.Error()}
				}
				verts[i] = v
			}
			for i := 1; i < len(verts)-1; i++ {
				m.Triangles = append(m.Triangles, Triangle{verts[0], verts[i], verts[i+1]})
			}

		case "o":
			m.Objects = append(m.Objects, strings.Join(args, " "))

		case "g":
			m.Groups = append(m.Groups, args...)

		case "mtllib":
			m.MaterialLibs = append(m.MaterialLibs, args...)

		case "usemtl":
			if len(args) == 0 {
				return nil, ParseError{Line: lineNum, Field: keyword, Message: "missing material name"}
			}
			if !seenMaterial[args[0]] {
				seenMaterial[args[0]] = true
				m.Materials = append(m.Materials, args[0])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj: %w", err)
	}

	return m, nil
}

func parseVec3(args []string, line int, field string) (Vec3, error) {
	var v Vec3
	if len(args) < 3 {
		return v, ParseError{Line: line, Field: field, Message: fmt.Sprintf("expected 3 components, got %d", len(args))}
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return v, ParseError{Line: line, Field: field, Message: err.Error()}
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseVertex reads v, v/t, v//n or v/t/n against the attributes defined so far
func (m *Mesh) parseVertex(s string) (Vertex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return Vertex{}, fmt.Errorf("malformed vertex %q", s)
	}

	v := Vertex{Position: -1, Texcoord: -1, Normal: -1}
	var err error

	if v.Position, err = resolveIndex(parts[0], len(m.Positions)); err != nil {
		return v, fmt.Errorf("position in %q: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if v.Texcoord, err = resolveIndex(parts[1], len(m.Texcoords)); err != nil {
			return v, fmt.Errorf("texcoord in %q: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if v.Normal, err = resolveIndex(parts[2], len(m.Normals)); err != nil {
			return v, fmt.Errorf("normal in %q: %w", s, err)
		}
	}
	return v, nil
}

// resolveIndex converts a one-based or negative (relative) index to zero-based
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("invalid index %q", s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return -1, fmt.Errorf("index %d out of range (have %d)", n, count)
	}
	return idx, nil
}

// Bounds returns the axis-aligned box around all positions. An empty mesh has
// zero bounds.
func (m *Mesh) Bounds() (lo, hi Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo = Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi = Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, p := range m.Positions {
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], p[i])
			hi[i] = math32.Max(hi[i], p[i])
		}
	}
	return lo, hi
}

// Radius returns the radius of the sphere centered on the bounds that
// encloses every position
func (m *Mesh) Radius() float32 {
	if len(m.Positions) == 0 {
		return 0
	}
	lo, hi := m.Bounds()
	var center Vec3
	for i := 0; i < 3; i++ {
		center[i] = (lo[i] + hi[i]) / 2
	}
	var r2 float32
	for _, p := range m.Positions {
		dx, dy, dz := p[0]-center[0], p[1]-center[1], p[2]-center[2]
		r2 = math32.Max(r2, dx*dx+dy*dy+dz*dz)
	}
	return math32.Sqrt(r2)
}
