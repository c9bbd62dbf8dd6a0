package loader

import (
	"strconv"
	"strings"

	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Scene file layout. Pointer and slice fields distinguish a missing key from a zero value.

type sceneDesc struct {
	Output    *outputDesc    `json:"output"`
	MaxDepth  *uint32        `json:"max_depth"`
	Camera    *cameraDesc    `json:"camera"`
	Materials []materialDesc `json:"materials"`
	Meshes    []string       `json:"meshes"`
	Lights    []lightDesc    `json:"lights"`
	Objects   []objectDesc   `json:"objects"`
	BVH       *bvhDesc       `json:"bvh"`
}

type outputDesc struct {
	File   *string `json:"file"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
	Scale  *int    `json:"scale"`
}

type cameraDesc struct {
	Eye     []float32 `json:"eye"`
	Forward []float32 `json:"forward"`
	Up      []float32 `json:"up"`
	FOV     *float32  `json:"fov"`
}

type materialDesc struct {
	IOR           *float32  `json:"ior"`
	Albedo        []float32 `json:"albedo"`
	Roughness     *float32  `json:"roughness"`
	Metallic      *float32  `json:"metallic"`
	IsTranslucent *bool     `json:"is_translucent"`
}

type lightDesc struct {
	Type      *string   `json:"type"`
	Position  []float32 `json:"position"`
	Direction []float32 `json:"direction"`
	Strength  []float32 `json:"strength"`
}

type objectDesc struct {
	Transform *transformDesc `json:"transform"`
	Material  *uint32        `json:"material"`
	Mesh      []int          `json:"mesh"`
}

type transformDesc struct {
	Matrix    []float32 `json:"matrix"`
	Scale     []float32 `json:"scale"`
	Rotate    []float32 `json:"rotate"`
	Translate []float32 `json:"translate"`
}

type bvhDesc struct {
	MaxLeafSize  *int `json:"max_leaf_size"`
	BucketNumber *int `json:"bucket_number"`
}

// OutputConfig describes the image written by a capture.
type OutputConfig struct {
	File   string
	Width  int
	Height int
	Scale  int
}

const DefaultOutputFile = "pt_{}.jpg"

// FileName substitutes n for the first "{}" in File.
func (o OutputConfig) FileName(n int) string {
	return strings.Replace(o.File, "{}", strconv.Itoa(n), 1)
}

func missing(env, field string) error {
	return errors.Errorf("%s: no '%s' field", env, field)
}

func vec3Field(v []float32, env, field string) (mgl32.Vec3, error) {
	if v == nil {
		return mgl32.Vec3{}, missing(env, field)
	}
	if len(v) != 3 {
		return mgl32.Vec3{}, errors.Errorf("%s: '%s' should be an array with 3 floats", env, field)
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

func (d *outputDesc) config() (OutputConfig, error) {
	out := OutputConfig{File: DefaultOutputFile, Scale: 1}
	if d.File != nil {
		out.File = *d.File
	}
	if d.Width == nil {
		return out, missing("output", "width")
	}
	if d.Height == nil {
		return out, missing("output", "height")
	}
	out.Width, out.Height = *d.Width, *d.Height
	if d.Scale != nil {
		out.Scale = *d.Scale
	}
	if out.Width <= 0 || out.Height <= 0 || out.Scale <= 0 {
		return out, errors.Errorf("output: width, height and scale must be positive, got %dx%d scale %d",
			out.Width, out.Height, out.Scale)
	}
	return out, nil
}

func (d *cameraDesc) camera() (core.Camera, error) {
	const env = "camera-perspective"
	eye, err := vec3Field(d.Eye, env, "eye")
	if err != nil {
		return core.Camera{}, err
	}
	forward, err := vec3Field(d.Forward, env, "forward")
	if err != nil {
		return core.Camera{}, err
	}
	up, err := vec3Field(d.Up, env, "up")
	if err != nil {
		return core.Camera{}, err
	}
	if d.FOV == nil {
		return core.Camera{}, missing(env, "fov")
	}
	return core.NewCamera(eye, forward, up, *d.FOV), nil
}

func (d *materialDesc) material() (core.Material, error) {
	const env = "material"
	if d.IOR == nil {
		return core.Material{}, missing(env, "ior")
	}
	albedo, err := vec3Field(d.Albedo, env, "albedo")
	if err != nil {
		return core.Material{}, err
	}
	if d.Roughness == nil {
		return core.Material{}, missing(env, "roughness")
	}
	if d.Metallic == nil {
		return core.Material{}, missing(env, "metallic")
	}
	if d.IsTranslucent == nil {
		return core.Material{}, missing(env, "is_translucent")
	}
	return core.NewMaterial(albedo, *d.IOR, *d.Roughness, *d.Metallic, *d.IsTranslucent), nil
}

func (d *lightDesc) light() (core.Light, error) {
	if d.Type == nil {
		return core.Light{}, missing("light", "type")
	}
	switch *d.Type {
	case "point":
		pos, err := vec3Field(d.Position, "light-point", "position")
		if err != nil {
			return core.Light{}, err
		}
		strength, err := vec3Field(d.Strength, "light-point", "strength")
		if err != nil {
			return core.Light{}, err
		}
		return core.NewPointLight(pos, strength), nil
	case "directional":
		dir, err := vec3Field(d.Direction, "light-directional", "direction")
		if err != nil {
			return core.Light{}, err
		}
		strength, err := vec3Field(d.Strength, "light-directional", "strength")
		if err != nil {
			return core.Light{}, err
		}
		return core.NewDirectionalLight(dir, strength), nil
	}
	return core.Light{}, errors.Errorf("light: unknown type '%s'", *d.Type)
}

// transform composes the object's matrix. A missing transform is the identity.
func (d *transformDesc) transform(env string) (*core.Transform, error) {
	t := core.NewTransform()
	if d == nil {
		return t, nil
	}
	var err error
	if d.Matrix != nil {
		if len(d.Matrix) != 16 {
			return nil, errors.Errorf("%s: 'matrix' should be an array with 16 floats", env)
		}
		copy(t.Matrix[:], d.Matrix)
	}
	if d.Scale != nil {
		if t.Scale, err = vec3Field(d.Scale, env, "scale"); err != nil {
			return nil, err
		}
	}
	if d.Rotate != nil {
		if t.Rotate, err = vec3Field(d.Rotate, env, "rotate"); err != nil {
			return nil, err
		}
	}
	if d.Translate != nil {
		if t.Translate, err = vec3Field(d.Translate, env, "translate"); err != nil {
			return nil, err
		}
	}
	return t, nil
}
