package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLB         = errors.New("invalid GLB container")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorRange      = errors.New("accessor reads past the end of its buffer")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir  string
	document *gltfDocument
	binChunk []byte
}

// gltfParser loads a glTF or GLB document and decodes typed accessor data from it.
type gltfParser interface {
	// Parse loads a .gltf or .glb file. GLB is detected by extension or by its magic number.
	//
	// Parameters:
	//   - path: the file to parse
	//
	// Returns:
	//   - error: error if the file cannot be read or is malformed
	Parse(path string) error

	// ParseReader parses a document from a stream. External buffer URIs resolve against the
	// working directory.
	//
	// Parameters:
	//   - r: the stream
	//   - isGLB: true for the binary container
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltfDocument

	// ReadFloats decodes an accessor into a flat float slice. Integer components are converted
	// to float, normalized when the accessor says so.
	//
	// Parameters:
	//   - accessorIndex: the accessor to read
	//
	// Returns:
	//   - []float32: Count * components values
	//   - int: the number of components per element
	//   - error: error if the accessor is out of range or unsupported
	ReadFloats(accessorIndex int) ([]float32, int, error)

	// ReadVec3Accessor reads a VEC3 accessor.
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ReadScalarAccessor reads a SCALAR accessor as floats.
	ReadScalarAccessor(accessorIndex int) ([]float32, error)

	// ReadIndicesAccessor reads an unsigned integer SCALAR accessor as uint32 indices.
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic)
	return p.parse(data, isGLB)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	return p.parse(data, isGLB)
}

func (p *gltfParserImpl) parse(data []byte, isGLB bool) error {
	jsonData := data
	if isGLB {
		var err error
		jsonData, p.binChunk, err = splitGLB(data)
		if err != nil {
			return err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// splitGLB walks the chunks of a GLB container and returns the JSON and BIN payloads.
func splitGLB(data []byte) ([]byte, []byte, error) {
	if len(data) < gltfGLBHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is smaller than the header", errInvalidGLB, len(data))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != gltfGLBMagic {
		return nil, nil, fmt.Errorf("%w: bad magic", errInvalidGLB)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != gltfGLBVersion {
		return nil, nil, fmt.Errorf("%w: version %d", errInvalidGLB, v)
	}

	var jsonData, binData []byte
	for off := gltfGLBHeaderSize; off+gltfGLBChunkHead <= len(data); {
		length := int(binary.LittleEndian.Uint32(data[off : off+4]))
		kind := binary.LittleEndian.Uint32(data[off+4 : off+8])
		start := off + gltfGLBChunkHead
		if length < 0 || start+length > len(data) {
			return nil, nil, fmt.Errorf("%w: chunk at %d overruns the file", errInvalidGLB, off)
		}
		switch kind {
		case gltfGLBChunkJSON:
			jsonData = data[start : start+length]
		case gltfGLBChunkBIN:
			binData = data[start : start+length]
		}
		off = start + length
	}

	if jsonData == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonData, binData, nil
}

// loadBuffers resolves every buffer from its URI or, for the first URI-less buffer of a GLB,
// from the binary chunk.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.binChunk != nil:
			buf.Data = p.binChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := p.loadBufferURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		// data:[<mediatype>][;base64],<data>
		header, payload, ok := strings.Cut(uri[len("data:"):], ",")
		if !ok {
			return nil, errInvalidBufferURI
		}
		if !strings.HasSuffix(header, ";base64") && header != "base64" {
			return nil, fmt.Errorf("%w: unsupported encoding %q", errInvalidBufferURI, header)
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}
	return data, nil
}

func (p *gltfParserImpl) accessor(index int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return &p.document.Accessors[index], nil
}

// elements locates the bytes of an accessor. data is nil for an accessor without a buffer
// view, which reads as zeros.
func (p *gltfParserImpl) elements(acc *gltfAccessor) (data []byte, base, stride, size int, err error) {
	if acc.Sparse != nil {
		return nil, 0, 0, 0, errors.New("sparse accessors not supported")
	}
	comps := gltfAccessorTypeComponentCount(acc.Type)
	size = gltfComponentTypeSize(acc.ComponentType)
	if comps == 0 || size == 0 {
		return nil, 0, 0, 0, fmt.Errorf("unsupported accessor layout: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return nil, 0, 0, size, nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, 0, 0, 0, fmt.Errorf("buffer view %d out of range", *acc.BufferView)
	}
	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, 0, 0, 0, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data = p.document.Buffers[bv.Buffer].Data

	elem := comps * size
	stride = elem
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	base = bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && base+(acc.Count-1)*stride+elem > len(data) {
		return nil, 0, 0, 0, errAccessorRange
	}
	return data, base, stride, size, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex int) ([]float32, int, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, 0, err
	}
	data, base, stride, size, err := p.elements(acc)
	if err != nil {
		return nil, 0, err
	}

	comps := gltfAccessorTypeComponentCount(acc.Type)
	out := make([]float32, acc.Count*comps)
	if data == nil {
		return out, comps, nil
	}
	for i := 0; i < acc.Count; i++ {
		at := base + i*stride
		for c := 0; c < comps; c++ {
			out[i*comps+c] = decodeComponent(data[at+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, comps, nil
}

// decodeComponent reads one little-endian component and converts it to float32.
func decodeComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		if normalized {
			return float32(b[0]) / 255
		}
		return float32(b[0])
	case gltfComponentTypeByte:
		if normalized {
			return max(float32(int8(b[0]))/127, -1)
		}
		return float32(int8(b[0]))
	case gltfComponentTypeUnsignedShort:
		v := binary.LittleEndian.Uint16(b)
		if normalized {
			return float32(v) / 65535
		}
		return float32(v)
	case gltfComponentTypeShort:
		v := int16(binary.LittleEndian.Uint16(b))
		if normalized {
			return max(float32(v)/32767, -1)
		}
		return float32(v)
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	flat, comps, err := p.ReadFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	if comps != 3 {
		return nil, fmt.Errorf("accessor %d is not VEC3", accessorIndex)
	}
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadScalarAccessor(accessorIndex int) ([]float32, error) {
	flat, comps, err := p.ReadFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	if comps != 1 {
		return nil, fmt.Errorf("accessor %d is not SCALAR", accessorIndex)
	}
	return flat, nil
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}
	data, base, stride, _, err := p.elements(acc)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := range out {
		b := data[base+i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(b[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
		}
	}
	return out, nil
}

func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	}
	return 0
}

func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	}
	return 0
}
