package wavefront

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const cube = `# unit quad pair
mtllib cube.mtl
o Cube
v -1 -1 0
v  1 -1 0
v  1  1 0
v -1  1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
g front
usemtl steel
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl steel
f -4//1 -3//1 -2//1
`

func TestParse_Quad(t *testing.T) {
	m, err := Parse(strings.NewReader(cube))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(m.Positions))
	}
	if len(m.Texcoords) != 4 {
		t.Errorf("expected 4 texcoords, got %d", len(m.Texcoords))
	}
	if len(m.Normals) != 1 {
		t.Errorf("expected 1 normal, got %d", len(m.Normals))
	}

	// quad fans into two triangles, plus the relative-index triangle
	if len(m.Triangles) != 3 {
		t.Fatalf("expected 3 triangles, got %d", len(m.Triangles))
	}

	want := Triangle{
		{Position: 0, Texcoord: 0, Normal: 0},
		{Position: 2, Texcoord: 2, Normal: 0},
		{Position: 3, Texcoord: 3, Normal: 0},
	}
	if diff := cmp.Diff(want, m.Triangles[1]); diff != "" {
		t.Errorf("second triangle mismatch (-want +got):\n%s", diff)
	}

	rel := Triangle{
		{Position: 0, Texcoord: -1, Normal: 0},
		{Position: 1, Texcoord: -1, Normal: 0},
		{Position: 2, Texcoord: -1, Normal: 0},
	}
	if diff := cmp.Diff(rel, m.Triangles[2]); diff != "" {
		t.Errorf("relative triangle mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"steel"}, m.Materials); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Cube"}, m.Objects); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cube.mtl"}, m.MaterialLibs); diff != "" {
		t.Errorf("mtllib mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		field string
	}{
		{"short vertex", "v 1 2\n", 1, "v"},
		{"bad float", "v 1 x 3\n", 1, "v"},
		{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3, "f"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4, "f"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4, "f"},
		{"texcoord before definition", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", 4, "f"},
		{"usemtl without name", "usemtl\n", 1, "usemtl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var pe ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}
			if pe.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, pe.Line)
			}
			if pe.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, pe.Field)
			}
		})
	}
}

func TestParse_IgnoresUnsupported(t *testing.T) {
	input := "s off\nl 1 2\nvp 0.5\nv 0 0 0 # trailing comment\n"
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Positions) != 1 {
		t.Errorf("expected 1 position, got %d", len(m.Positions))
	}
}

func TestBoundsAndRadius(t *testing.T) {
	m, err := Parse(strings.NewReader("v -1 -2 -3\nv 1 2 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lo, hi := m.Bounds()
	if diff := cmp.Diff(Vec3{-1, -2, -3}, lo); diff != "" {
		t.Errorf("min mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Vec3{1, 2, 3}, hi); diff != "" {
		t.Errorf("max mismatch (-want +got):\n%s", diff)
	}

	// sqrt(1 + 4 + 9)
	r := m.Radius()
	if r < 3.7416 || r > 3.7417 {
		t.Errorf("expected radius ~3.7417, got %f", r)
	}

	empty := &Mesh{}
	if empty.Radius() != 0 {
		t.Errorf("expected zero radius for empty mesh, got %f", empty.Radius())
	}
}
