package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func unitNode(mesh int) *gltf.Node {
	n := &gltf.Node{Mesh: gltf.Index(mesh)}
	n.Rotation[3] = 1
	n.Scale[0], n.Scale[1], n.Scale[2] = 1, 1, 1
	return n
}

// triangleDoc is one triangle named "water" on a node moved to z=2.
func triangleDoc() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{Name: "water", Primitives: []*gltf.Primitive{{
		Indices:    gltf.Index(idx),
		Attributes: map[string]int{"POSITION": pos},
	}}}}
	n := unitNode(0)
	n.Translation[2] = 2
	doc.Nodes = []*gltf.Node{n}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func triangleGLB(t *testing.T) []byte {
	t.Helper()
	name := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDoc(), name); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSceneGeometriesNodeTransform(t *testing.T) {
	geos, err := sceneGeometries(triangleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if len(geos) != 1 || geos[0].name != "water" || len(geos[0].indices) != 3 {
		t.Fatalf("geometries=%+v", geos)
	}
	if p := geos[0].positions[1]; p != [3]float32{1, 0, 2} {
		t.Fatalf("position=%v, want (1,0,2)", p)
	}
	if geos[0].baseColor != [4]float32{1, 1, 1, 1} || geos[0].doubleSided {
		t.Fatal("default material not applied")
	}
}

func TestSceneGeometriesMaterial(t *testing.T) {
	doc := triangleDoc()
	doc.Materials = []*gltf.Material{{
		DoubleSided:          true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
	}}
	doc.Materials[0].PBRMetallicRoughness.BaseColorFactor = &[4]float64{1, 0, 0, 0.5}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)
	geos, err := sceneGeometries(doc)
	if err != nil {
		t.Fatal(err)
	}
	if geos[0].baseColor != [4]float32{1, 0, 0, 0.5} || !geos[0].doubleSided {
		t.Fatalf("material=%v double=%v", geos[0].baseColor, geos[0].doubleSided)
	}
}

func TestSceneGeometriesBadIndex(t *testing.T) {
	doc := triangleDoc()
	doc.Scenes[0].Nodes = []int{5}
	if _, err := sceneGeometries(doc); err == nil {
		t.Fatal("invalid node index accepted")
	}
}

func TestTriangulate(t *testing.T) {
	strip := triangulate([]uint32{0, 1, 2, 3}, gltf.PrimitiveTriangleStrip)
	if len(strip) != 6 || strip[3] != 2 || strip[4] != 1 {
		t.Fatalf("strip=%v", strip)
	}
	fan := triangulate([]uint32{0, 1, 2, 3}, gltf.PrimitiveTriangleFan)
	if len(fan) != 6 || fan[3] != 0 || fan[5] != 3 {
		t.Fatalf("fan=%v", fan)
	}
	if list := triangulate([]uint32{0, 1, 2, 3}, gltf.PrimitiveTriangles); len(list) != 3 {
		t.Fatalf("list=%v", list)
	}
}

func TestNodeMatrixRotation(t *testing.T) {
	// Quarter turn about Z maps +X to +Y.
	s := math.Sqrt(0.5)
	n := unitNode(0)
	n.Rotation[2], n.Rotation[3] = s, s
	p := nodeMatrix(n).point([3]float32{1, 0, 0})
	if math.Abs(float64(p[0])) > 1e-5 || math.Abs(float64(p[1]-1)) > 1e-5 {
		t.Fatalf("rotated=%v, want (0,1,0)", p)
	}
}

func TestAssetDir(t *testing.T) {
	for in, want := range map[string]string{"assets/models/": "assets/models", "": ".", "/x": "x"} {
		if got := assetDir(in); got != want {
			t.Fatalf("assetDir(%q)=%q, want %q", in, got, want)
		}
	}
}
