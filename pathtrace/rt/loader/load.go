package loader

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gekko3d/pathtracer"
	"github.com/gekko3d/pathtracer/pathtrace/rt/bvh"
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"
	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

type Options struct {
	// BVH supplies defaults for keys missing from the scene's "bvh" block.
	BVH      bvh.Options
	Capacity uniforms.Capacity
	Logger   pathtracer.Logger
}

func DefaultOptions() Options {
	return Options{
		BVH:      bvh.DefaultOptions(),
		Capacity: uniforms.DefaultCapacity(),
		Logger:   pathtracer.NewNopLogger(),
	}
}

// Scene is a fully assembled scene ready for upload.
type Scene struct {
	ID       uuid.UUID
	Path     string
	Output   OutputConfig
	Uniform  *uniforms.SceneUniform
	Variable uniforms.VariableUniform

	BVH           bvh.Options
	Stats         bvh.Stats
	BuildTime     time.Duration
	TriangleCount int
	ObjectCount   int
}

// Load reads the JSON scene at path together with the meshes it references.
// Table overflows panic with *uniforms.CapacityError.
func Load(path string, opts Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scene")
	}
	var desc sceneDesc
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	l := &sceneLoader{path: path, opts: opts, log: opts.Logger}
	if l.log == nil {
		l.log = pathtracer.NewNopLogger()
	}
	return l.load(&desc)
}

type sceneLoader struct {
	path string
	opts Options
	log  pathtracer.Logger

	// meshes[file][model]
	meshes        [][]*core.Mesh
	vertexOffsets map[*core.Mesh]uint32
}

func (l *sceneLoader) load(desc *sceneDesc) (*Scene, error) {
	if desc.Output == nil {
		return nil, missing("top", "output")
	}
	output, err := desc.Output.config()
	if err != nil {
		return nil, err
	}
	if desc.MaxDepth == nil {
		return nil, missing("top", "max_depth")
	}
	if desc.Camera == nil {
		return nil, missing("top", "camera")
	}
	camera, err := desc.Camera.camera()
	if err != nil {
		return nil, err
	}
	if desc.Materials == nil {
		return nil, missing("top", "materials")
	}
	materials := make([]core.Material, 0, len(desc.Materials))
	for i := range desc.Materials {
		m, err := desc.Materials[i].material()
		if err != nil {
			return nil, errors.Wrapf(err, "materials[%d]", i)
		}
		materials = append(materials, m)
	}
	if desc.Meshes == nil {
		return nil, missing("top", "meshes")
	}
	if err := l.loadMeshes(desc.Meshes); err != nil {
		return nil, err
	}
	if desc.Lights == nil {
		return nil, missing("top", "lights")
	}
	lights := make([]core.Light, 0, len(desc.Lights))
	for i := range desc.Lights {
		lt, err := desc.Lights[i].light()
		if err != nil {
			return nil, errors.Wrapf(err, "lights[%d]", i)
		}
		lights = append(lights, lt)
	}
	if desc.Objects == nil {
		return nil, missing("top", "objects")
	}
	triangles, models, err := l.loadObjects(desc.Objects, len(materials))
	if err != nil {
		return nil, err
	}

	bvhOpts := l.opts.BVH
	if desc.BVH != nil {
		if desc.BVH.MaxLeafSize != nil {
			bvhOpts.MaxLeafSize = *desc.BVH.MaxLeafSize
		}
		if desc.BVH.BucketNumber != nil {
			bvhOpts.BucketCount = *desc.BVH.BucketNumber
		}
	}

	start := time.Now()
	tree, err := bvh.Build(triangles, bvhOpts)
	if err != nil {
		return nil, errors.Wrap(err, "building bvh")
	}
	buildTime := time.Since(start)
	stats := tree.Stats()
	l.log.Infof("built bvh over %d triangles in %d ms", len(triangles), buildTime.Milliseconds())
	l.log.Debugf("bvh: %d nodes, %d leaves, max depth %d, largest leaf %d",
		stats.Nodes, stats.Leaves, stats.MaxDepth, stats.MaxLeafSize)

	u := uniforms.NewSceneUniform(l.opts.Capacity)
	u.MaxDepth = *desc.MaxDepth
	if tree == nil {
		// No geometry: slot 0 becomes a leaf over nothing so traversal stops at the root.
		uniforms.Check("bvh nodes", 0, len(u.BVHNodes))
		u.BVHNodes[0] = uniforms.BVHNode{Left: -1, Right: -1, Box: uniforms.NewBBox(core.EmptyBBox())}
	}
	tree.Flatten(u.BVHNodes)
	l.fillVertices(u)
	for i, tri := range triangles {
		u.SetTriangle(i, uniforms.NewTriangle(tri))
	}
	for i, m := range models {
		u.SetObject(i, uniforms.NewSceneObject(m))
	}
	for i, m := range materials {
		u.SetMaterial(i, uniforms.NewMaterial(m))
	}
	u.LightsCount = uint32(len(lights))
	for i, lt := range lights {
		u.SetLight(i, uniforms.NewLight(lt))
	}

	return &Scene{
		ID:      uuid.New(),
		Path:    l.path,
		Output:  output,
		Uniform: u,
		Variable: uniforms.VariableUniform{
			Camera:         uniforms.NewCamera(camera),
			CurrLightIndex: 0,
		},
		BVH:           bvhOpts,
		Stats:         stats,
		BuildTime:     buildTime,
		TriangleCount: len(triangles),
		ObjectCount:   len(models),
	}, nil
}

// loadMeshes resolves every mesh file next to the scene file and assigns
// each model its offset in the scene vertex table.
func (l *sceneLoader) loadMeshes(files []string) error {
	dir := filepath.Dir(l.path)
	l.vertexOffsets = make(map[*core.Mesh]uint32)

	offset := uint32(0)
	for _, file := range files {
		models, err := LoadOBJ(filepath.Join(dir, file))
		if err != nil {
			return errors.Wrapf(err, "meshes: loading %s", file)
		}
		for _, m := range models {
			l.vertexOffsets[m] = offset
			offset += uint32(len(m.Vertices))
			l.log.Debugf("mesh %s/%s: %d vertices, %d faces, bounds %v",
				file, m.Name, len(m.Vertices), len(m.Faces), m.Bounds())
		}
		l.meshes = append(l.meshes, models)
	}
	return nil
}

func (l *sceneLoader) loadObjects(objects []objectDesc, materialCount int) ([]core.Triangle, []mgl32.Mat4, error) {
	var triangles []core.Triangle
	models := make([]mgl32.Mat4, 0, len(objects))

	for objIndex, obj := range objects {
		t, err := obj.Transform.transform("object")
		if err != nil {
			return nil, nil, errors.Wrapf(err, "objects[%d]", objIndex)
		}
		model := t.ObjectToWorld()
		if !t.Invertible() {
			l.log.Warnf("objects[%d]: singular transform matrix found", objIndex)
		}

		if obj.Material == nil {
			return nil, nil, errors.Wrapf(missing("object", "material"), "objects[%d]", objIndex)
		}
		if int(*obj.Material) >= materialCount {
			return nil, nil, errors.Errorf("objects[%d]: material %d out of range (%d materials)",
				objIndex, *obj.Material, materialCount)
		}
		mesh, err := l.mesh(obj.Mesh)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "objects[%d]", objIndex)
		}

		offset := l.vertexOffsets[mesh]
		for face := range mesh.Faces {
			triangles = append(triangles,
				core.NewTriangle(mesh, face, model, offset, *obj.Material, uint32(objIndex)))
		}
		models = append(models, model)
	}
	return triangles, models, nil
}

func (l *sceneLoader) mesh(ref []int) (*core.Mesh, error) {
	if ref == nil {
		return nil, missing("object", "mesh")
	}
	if len(ref) != 2 {
		return nil, errors.New("object: 'mesh' should be an array with 2 ints")
	}
	file, model := ref[0], ref[1]
	if file < 0 || file >= len(l.meshes) {
		return nil, errors.Errorf("object: mesh file %d out of range (%d files)", file, len(l.meshes))
	}
	if model < 0 || model >= len(l.meshes[file]) {
		return nil, errors.Errorf("object: model %d out of range (%d models in file %d)",
			model, len(l.meshes[file]), file)
	}
	return l.meshes[file][model], nil
}

func (l *sceneLoader) fillVertices(u *uniforms.SceneUniform) {
	for _, models := range l.meshes {
		for _, m := range models {
			base := int(l.vertexOffsets[m])
			for i, v := range m.Vertices {
				u.SetVertex(base+i, uniforms.NewVertex(v))
			}
		}
	}
}
