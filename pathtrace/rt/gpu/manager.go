package gpu

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/loader"
	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSceneTooLarge is returned when the scene tables exceed uniforms.MaxSceneUniformBytes.
var ErrSceneTooLarge = errors.New("scene uniform too large")

type GpuBufferManager struct {
	Device *wgpu.Device

	VariableBuf *wgpu.Buffer
	ParamsBuf   *wgpu.Buffer

	BVHNodesBuf  *wgpu.Buffer
	VerticesBuf  *wgpu.Buffer
	TrianglesBuf *wgpu.Buffer
	ObjectsBuf   *wgpu.Buffer
	MaterialsBuf *wgpu.Buffer
	LightsBuf    *wgpu.Buffer

	BindGroup0 *wgpu.BindGroup

	// Frame capture
	ReadbackBuffer *wgpu.Buffer
	ReadbackWidth  uint32
	ReadbackHeight uint32

	// Scene whose tables are currently in the storage buffers.
	Resident uuid.UUID
}

func NewGpuBufferManager(device *wgpu.Device) *GpuBufferManager {
	return &GpuBufferManager{Device: device}
}

// ensureBuffer creates or grows buf to hold data and writes data into it.
// Reports whether the buffer was recreated, in which case bind groups are stale.
func (m *GpuBufferManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) bool {
	neededSize := uint64(len(data))
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	recreated := false
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}
		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf
		recreated = true
	}

	if len(data) > 0 {
		m.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return recreated
}

// UploadScene writes every scene table to its storage buffer. A scene that is
// already resident is not uploaded again.
func (m *GpuBufferManager) UploadScene(scene *loader.Scene) (bool, error) {
	if scene.ID == m.Resident {
		return false, nil
	}
	u := scene.Uniform
	if size := u.Size(); size >= uniforms.MaxSceneUniformBytes {
		return false, errors.Wrapf(ErrSceneTooLarge, "%d bytes", size)
	}

	recreated := false
	if m.ensureBuffer("BVHNodesBuf", &m.BVHNodesBuf, u.BVHNodeBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("VerticesBuf", &m.VerticesBuf, u.VertexBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("TrianglesBuf", &m.TrianglesBuf, u.TriangleBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("ObjectsBuf", &m.ObjectsBuf, u.ObjectBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("MaterialsBuf", &m.MaterialsBuf, u.MaterialBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("LightsBuf", &m.LightsBuf, u.LightBytes(), wgpu.BufferUsageStorage) {
		recreated = true
	}
	if m.ensureBuffer("ParamsBuf", &m.ParamsBuf, u.ParamsBytes(), wgpu.BufferUsageUniform) {
		recreated = true
	}
	if m.UpdateVariable(scene.Variable) {
		recreated = true
	}

	m.Resident = scene.ID
	return recreated, nil
}

// UpdateVariable writes the per-frame camera and light index.
func (m *GpuBufferManager) UpdateVariable(v uniforms.VariableUniform) bool {
	return m.ensureBuffer("VariableBuf", &m.VariableBuf, v.ToBytes(), wgpu.BufferUsageUniform)
}

// CreateBindGroups builds group 0 of the trace pipeline: uniforms first, then the scene tables.
func (m *GpuBufferManager) CreateBindGroups(pipeline *wgpu.ComputePipeline) error {
	if m.BindGroup0 != nil {
		m.BindGroup0.Release()
	}
	var err error
	m.BindGroup0, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Scene BG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.VariableBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.ParamsBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.BVHNodesBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: m.VerticesBuf, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: m.TrianglesBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: m.ObjectsBuf, Size: wgpu.WholeSize},
			{Binding: 6, Buffer: m.MaterialsBuf, Size: wgpu.WholeSize},
			{Binding: 7, Buffer: m.LightsBuf, Size: wgpu.WholeSize},
		},
	})
	return errors.Wrap(err, "creating scene bind group")
}

func (m *GpuBufferManager) Release() {
	for _, b := range []**wgpu.Buffer{
		&m.VariableBuf, &m.ParamsBuf, &m.BVHNodesBuf, &m.VerticesBuf,
		&m.TrianglesBuf, &m.ObjectsBuf, &m.MaterialsBuf, &m.LightsBuf, &m.ReadbackBuffer,
	} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	if m.BindGroup0 != nil {
		m.BindGroup0.Release()
		m.BindGroup0 = nil
	}
	m.Resident = uuid.Nil
}
