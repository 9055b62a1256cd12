package rbxl

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// pendingProp is a decoded value waiting to be attached once every chunk
// has been read, so properties can be restored in their original order.
type pendingProp struct {
	ordinal uint32
	name    string
	wire    string
	typ     rbxfile.PropertyType
	value   rbxfile.Value
	ref     int32
}

type decoder struct {
	registry *rbxfile.Registry
	logger   *slog.Logger
	shared   *rbxfile.SharedStringTable
	comp     compressor

	classes   map[uint32]string
	instances []*rbxfile.Instance
	props     map[int32][]pendingProp
	linked    []bool
	roots     []*rbxfile.Instance

	// lastRef is the target index read by the most recent Ref decode.
	lastRef int32
}

// Decode reads a binary file and returns its top-level instances.
// Properties that cannot be read are logged and skipped; malformed
// structure is an error wrapping ErrCorrupt, ErrChecksum or ErrNotRBXL.
func Decode(r io.Reader, opts ...Option) ([]*rbxfile.Instance, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return DecodeBytes(data, opts...)
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte, opts ...Option) ([]*rbxfile.Instance, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := binpkg.NewBytesReader(data, binpkg.DefaultConfig())
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	// Every instance costs at least its referent in an INST chunk.
	if int64(h.InstanceCount)*4 > r.Remaining() {
		return nil, fmt.Errorf("%w: header claims %d instances", ErrCorrupt, h.InstanceCount)
	}

	d := &decoder{
		registry:  o.registry,
		logger:    o.logger,
		shared:    rbxfile.NewSharedStringTable(),
		classes:   make(map[uint32]string),
		instances: make([]*rbxfile.Instance, h.InstanceCount),
		props:     make(map[int32][]pendingProp),
		linked:    make([]bool, h.InstanceCount),
	}
	defer func() {
		if d.comp != nil {
			d.comp.Close()
		}
	}()

	if err := d.readChunks(r); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return d.roots, nil
}

func (d *decoder) compressor() (compressor, error) {
	if d.comp == nil {
		c, err := newZstd()
		if err != nil {
			return nil, err
		}
		d.comp = c
	}
	return d.comp, nil
}

func (d *decoder) readChunks(r *binpkg.Reader) error {
	for {
		c, err := readChunk(r, d.compressor)
		if err != nil {
			return err
		}
		cr := binpkg.NewBytesReader(c.data, binpkg.DefaultConfig())
		switch c.name {
		case chunkSharedStrings:
			err = d.readSharedStrings(cr)
		case chunkInstances:
			err = d.readInstances(cr)
		case chunkProperties:
			err = d.readProperties(cr)
		case chunkParents:
			err = d.readParents(cr)
		case chunkEnd:
			return nil
		default:
			d.logger.Warn("skipping unknown chunk", "chunk", c.name, "length", len(c.data))
		}
		if err != nil {
			return fmt.Errorf("%s chunk: %w", c.name, err)
		}
	}
}

func (d *decoder) readSharedStrings(r *binpkg.Reader) error {
	if _, err := r.ReadUint32(); err != nil {
		return corrupt(err)
	}
	n, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return corrupt(err)
		}
		data, err := r.ReadBlob()
		if err != nil {
			return corrupt(err)
		}
		d.shared.Put(key, data)
	}
	return nil
}

func (d *decoder) readInstances(r *binpkg.Reader) error {
	classIndex, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	class, err := r.ReadString()
	if err != nil {
		return corrupt(err)
	}
	if _, dup := d.classes[classIndex]; dup {
		return fmt.Errorf("%w: class index %d used twice", ErrCorrupt, classIndex)
	}
	d.classes[classIndex] = class

	n, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	for i := uint32(0); i < n; i++ {
		ref, err := r.ReadInt32()
		if err != nil {
			return corrupt(err)
		}
		if ref < 0 || int(ref) >= len(d.instances) {
			return fmt.Errorf("%w: referent %d out of range", ErrCorrupt, ref)
		}
		if d.instances[ref] != nil {
			return fmt.Errorf("%w: referent %d used twice", ErrCorrupt, ref)
		}
		inst := d.registry.New(class, "")
		// Keep the file's property order; Name comes back with the rest.
		inst.RemoveProperty("Name")
		d.instances[ref] = inst
	}
	return nil
}

func (d *decoder) readProperties(r *binpkg.Reader) error {
	classIndex, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	name, err := r.ReadString()
	if err != nil {
		return corrupt(err)
	}
	wire, err := r.ReadString()
	if err != nil {
		return corrupt(err)
	}
	typeID, err := r.ReadUint8()
	if err != nil {
		return corrupt(err)
	}
	class, ok := d.classes[classIndex]
	if !ok {
		return fmt.Errorf("%w: property %s refers to unknown class index %d", ErrCorrupt, name, classIndex)
	}

	vc, ok := valueCodecs[wire]
	if !ok {
		d.logger.Warn("skipping property with unknown type",
			"class", class, "property", name, "wire_type", wire, "err", rbxfile.ErrMissingHandler)
		return nil
	}
	if rbxfile.PropertyType(typeID) != vc.typ {
		return fmt.Errorf("%w: property %s.%s has type %s, %s needs %s",
			ErrCorrupt, class, name, rbxfile.PropertyType(typeID), wire, vc.typ)
	}

	n, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	for i := uint32(0); i < n; i++ {
		ref, err := r.ReadInt32()
		if err != nil {
			return corrupt(err)
		}
		ordinal, err := r.ReadUint32()
		if err != nil {
			return corrupt(err)
		}
		blob, err := r.ReadBlob()
		if err != nil {
			return corrupt(err)
		}
		inst, err := d.instance(ref)
		if err != nil {
			return err
		}
		if inst.ClassName() != class {
			return fmt.Errorf("%w: referent %d is a %s, not a %s", ErrCorrupt, ref, inst.ClassName(), class)
		}

		d.lastRef = -1
		v, err := vc.decode(binpkg.NewBytesReader(blob, binpkg.DefaultConfig()), d)
		if err != nil {
			d.logger.Warn("skipping unreadable property",
				"instance", inst.ClassName(), "property", name, "wire_type", wire, "err", err)
			continue
		}
		if d.lastRef >= int32(len(d.instances)) || d.lastRef < -1 {
			return fmt.Errorf("%w: property %s refers to referent %d", ErrCorrupt, name, d.lastRef)
		}
		d.props[ref] = append(d.props[ref], pendingProp{
			ordinal: ordinal,
			name:    name,
			wire:    wire,
			typ:     vc.typ,
			value:   v,
			ref:     d.lastRef,
		})
	}
	return nil
}

func (d *decoder) readParents(r *binpkg.Reader) error {
	if _, err := r.ReadUint8(); err != nil {
		return corrupt(err)
	}
	n, err := r.ReadUint32()
	if err != nil {
		return corrupt(err)
	}
	for i := uint32(0); i < n; i++ {
		childRef, err := r.ReadInt32()
		if err != nil {
			return corrupt(err)
		}
		parentRef, err := r.ReadInt32()
		if err != nil {
			return corrupt(err)
		}
		child, err := d.instance(childRef)
		if err != nil {
			return err
		}
		if d.linked[childRef] {
			return fmt.Errorf("%w: referent %d linked twice", ErrCorrupt, childRef)
		}
		d.linked[childRef] = true

		if parentRef == -1 {
			d.roots = append(d.roots, child)
			continue
		}
		parent, err := d.instance(parentRef)
		if err != nil {
			return err
		}
		if err := child.SetParent(parent); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return nil
}

// finish attaches properties in their original order and resolves Ref
// values now that every instance exists.
func (d *decoder) finish() error {
	for i, inst := range d.instances {
		if inst == nil {
			return fmt.Errorf("%w: instance %d never declared", ErrCorrupt, i)
		}
		if !d.linked[i] {
			return fmt.Errorf("%w: instance %d has no parent link", ErrCorrupt, i)
		}
	}

	for i, inst := range d.instances {
		pending := d.props[int32(i)]
		sort.SliceStable(pending, func(a, b int) bool { return pending[a].ordinal < pending[b].ordinal })
		for _, pp := range pending {
			p := rbxfile.NewProperty(pp.name, pp.typ)
			inst.AddProperty(p)
			v := pp.value
			if pp.typ == rbxfile.TypeRef && pp.ref >= 0 {
				v = rbxfile.Ref{Target: d.instances[pp.ref]}
			}
			if err := p.SetValue(v); err != nil {
				d.logger.Warn("skipping property", "instance", inst.FullName(), "property", pp.name, "err", err)
				inst.RemoveProperty(pp.name)
				continue
			}
			if p.WireTypeName() != pp.wire {
				p.WireName = pp.wire
			}
		}
	}
	return nil
}

func (d *decoder) instance(ref int32) (*rbxfile.Instance, error) {
	if ref < 0 || int(ref) >= len(d.instances) || d.instances[ref] == nil {
		return nil, fmt.Errorf("%w: unknown referent %d", ErrCorrupt, ref)
	}
	return d.instances[ref], nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}
