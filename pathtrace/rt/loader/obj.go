package loader

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// objVertexKey identifies a position/normal pair; normal is -1 when the face gave none.
type objVertexKey struct {
	position int
	normal   int
}

type objReader struct {
	name      string
	positions []mgl32.Vec3
	normals   []mgl32.Vec3

	models []*core.Mesh
	cur    *core.Mesh
	remap  map[objVertexKey]uint32
	// vertices whose normal is accumulated from face normals
	smooth map[uint32]bool
}

// LoadOBJ reads every model of a Wavefront OBJ file.
func LoadOBJ(path string) ([]*core.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening obj")
	}
	defer f.Close()
	return ParseOBJ(f, path)
}

// ParseOBJ splits the stream into one mesh per 'o'/'g' block. Polygons are
// fan-triangulated and positions/normals are merged into a single index space.
func ParseOBJ(r io.Reader, name string) ([]*core.Mesh, error) {
	p := &objReader{name: name}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		var err error
		switch tokens[0] {
		case "v":
			var v mgl32.Vec3
			v, err = parseVec3(tokens)
			p.positions = append(p.positions, v)
		case "vn":
			var v mgl32.Vec3
			v, err = parseVec3(tokens)
			p.normals = append(p.normals, v)
		case "o", "g":
			modelName := "default"
			if len(tokens) > 1 {
				modelName = strings.Join(tokens[1:], " ")
			}
			p.startModel(modelName)
		case "f":
			err = p.parseFace(tokens)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}

	p.finishModel()
	return p.models, nil
}

func (p *objReader) startModel(name string) {
	p.finishModel()
	p.cur = &core.Mesh{Name: name}
	p.remap = make(map[objVertexKey]uint32)
	p.smooth = make(map[uint32]bool)
}

// finishModel normalizes accumulated normals and keeps the model if it has faces.
func (p *objReader) finishModel() {
	if p.cur == nil {
		return
	}
	for idx := range p.smooth {
		n := p.cur.Vertices[idx].Normal
		if n.Len() > 0 {
			p.cur.Vertices[idx].Normal = n.Normalize()
		}
	}
	if len(p.cur.Faces) > 0 {
		p.models = append(p.models, p.cur)
	}
	p.cur = nil
}

func (p *objReader) parseFace(tokens []string) error {
	if len(tokens) < 4 {
		return errors.Errorf("unsupported syntax for 'f'; expected at least 3 vertices; got %d", len(tokens)-1)
	}
	if p.cur == nil {
		p.startModel("default")
	}

	corners := make([]uint32, 0, len(tokens)-1)
	for arg, tok := range tokens[1:] {
		parts := strings.Split(tok, "/")
		if parts[0] == "" {
			return errors.Errorf("face argument %d does not include a vertex index", arg)
		}
		key := objVertexKey{normal: -1}

		var err error
		key.position, err = selectFaceCoordIndex(parts[0], len(p.positions))
		if err != nil {
			return errors.Wrapf(err, "could not parse vertex coord for face argument %d", arg)
		}
		if len(parts) == 3 && parts[2] != "" {
			key.normal, err = selectFaceCoordIndex(parts[2], len(p.normals))
			if err != nil {
				return errors.Wrapf(err, "could not parse normal coord for face argument %d", arg)
			}
		}
		corners = append(corners, p.vertex(key))
	}

	for i := 1; i+1 < len(corners); i++ {
		face := [3]uint32{corners[0], corners[i], corners[i+1]}
		p.cur.Faces = append(p.cur.Faces, face)
		p.accumulateNormal(face)
	}
	return nil
}

// vertex returns the model-local index for key, adding it on first use.
func (p *objReader) vertex(key objVertexKey) uint32 {
	if idx, ok := p.remap[key]; ok {
		return idx
	}
	v := core.MeshVertex{Position: p.positions[key.position]}
	idx := uint32(len(p.cur.Vertices))
	if key.normal >= 0 {
		v.Normal = p.normals[key.normal]
	} else {
		p.smooth[idx] = true
	}
	p.cur.Vertices = append(p.cur.Vertices, v)
	p.remap[key] = idx
	return idx
}

func (p *objReader) accumulateNormal(face [3]uint32) {
	v := p.cur.Vertices
	e1 := v[face[1]].Position.Sub(v[face[0]].Position)
	e2 := v[face[2]].Position.Sub(v[face[0]].Position)
	n := e1.Cross(e2)
	for _, idx := range face {
		if p.smooth[idx] {
			v[idx].Normal = v[idx].Normal.Add(n)
		}
	}
}

// selectFaceCoordIndex resolves a 1-based or negative (relative) OBJ index.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, errors.Errorf("index %d out of bounds", index)
	}
	return offset, nil
}

func parseVec3(tokens []string) (mgl32.Vec3, error) {
	if len(tokens) < 4 {
		return mgl32.Vec3{}, errors.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", tokens[0], len(tokens)-1)
	}

	var v mgl32.Vec3
	for i := 1; i <= 3; i++ {
		c, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return v, errors.Wrapf(err, "parsing '%s'", tokens[0])
		}
		v[i-1] = float32(c)
	}
	return v, nil
}
