package uniforms

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// entry is anything with a fixed-size std430 encoding.
type entry interface {
	Put(buf []byte)
}

// encodeTable writes every item back to back with the given stride.
func encodeTable[T entry](items []T, stride int) []byte {
	buf := make([]byte, len(items)*stride)
	for i := range items {
		items[i].Put(buf[i*stride : (i+1)*stride])
	}
	return buf
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func putI32(buf []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(buf[off:], uint32(v))
}

func putVec4(buf []byte, off int, v [4]float32) {
	for i, c := range v {
		putF32(buf, off+i*4, c)
	}
}

// putMat4 writes m column-major, which is both mgl32's and WGSL's order.
func putMat4(buf []byte, off int, m mgl32.Mat4) {
	for i, c := range m {
		putF32(buf, off+i*4, c)
	}
}

func vec4(v mgl32.Vec3, w float32) [4]float32 {
	return [4]float32{v.X(), v.Y(), v.Z(), w}
}
