package packstream

import "github.com/pkg/errors"

// The structure signatures of §3. Message signatures live in a disjoint
// byte range understood only by the message package's own Registry.
const (
	SigNode                 byte = 0x4E
	SigRelationship         byte = 0x52
	SigUnboundRelationship  byte = 0x72
	SigPath                 byte = 0x50
	SigDate                 byte = 0x44
	SigTime                 byte = 0x54
	SigLocalTime            byte = 0x74
	SigDateTimeOffset       byte = 0x46
	SigDateTimeZoneId       byte = 0x66
	SigLocalDateTime        byte = 0x64
	SigDuration             byte = 0x45
	SigPoint2D              byte = 0x58
	SigPoint3D              byte = 0x59
)

func init() {
	DefaultRegistry.Register(SigNode, StructDef{Arity: 3, New: newNodeFromFields})
	DefaultRegistry.Register(SigRelationship, StructDef{Arity: 5, New: newRelationshipFromFields})
	DefaultRegistry.Register(SigUnboundRelationship, StructDef{Arity: 3, New: newUnboundRelationshipFromFields})
	DefaultRegistry.Register(SigPath, StructDef{Arity: 3, New: newPathFromFields})
	DefaultRegistry.Register(SigDate, StructDef{Arity: 1, New: newDateFromFields})
	DefaultRegistry.Register(SigTime, StructDef{Arity: 2, New: newTimeFromFields})
	DefaultRegistry.Register(SigLocalTime, StructDef{Arity: 1, New: newLocalTimeFromFields})
	DefaultRegistry.Register(SigDateTimeOffset, StructDef{Arity: 3, New: newDateTimeOffsetFromFields})
	DefaultRegistry.Register(SigDateTimeZoneId, StructDef{Arity: 3, New: newDateTimeZoneIdFromFields})
	DefaultRegistry.Register(SigLocalDateTime, StructDef{Arity: 2, New: newLocalDateTimeFromFields})
	DefaultRegistry.Register(SigDuration, StructDef{Arity: 4, New: newDurationFromFields})
	DefaultRegistry.Register(SigPoint2D, StructDef{Arity: 3, New: newPoint2DFromFields})
	DefaultRegistry.Register(SigPoint3D, StructDef{Arity: 4, New: newPoint3DFromFields})
}

func asInt(v Value, what string) (Int, error) {
	i, ok := v.(Int)
	if !ok {
		return 0, errors.WithStack(&InvalidStructureError{Reason: what + " field is not an Integer"})
	}
	return i, nil
}

func asString(v Value, what string) (String, error) {
	s, ok := v.(String)
	if !ok {
		return "", errors.WithStack(&InvalidStructureError{Reason: what + " field is not a String"})
	}
	return s, nil
}

func asMap(v Value, what string) (*Map, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, errors.WithStack(&InvalidStructureError{Reason: what + " field is not a Map"})
	}
	return m, nil
}

func asList(v Value, what string) (List, error) {
	l, ok := v.(List)
	if !ok {
		return nil, errors.WithStack(&InvalidStructureError{Reason: what + " field is not a List"})
	}
	return l, nil
}

func asFloat(v Value, what string) (Float, error) {
	f, ok := v.(Float)
	if !ok {
		return 0, errors.WithStack(&InvalidStructureError{Reason: what + " field is not a Float"})
	}
	return f, nil
}

// ---- Node ----

// Node is a graph node: an identity, a set of labels, and a property map.
type Node struct {
	Identity   Int
	Labels     []String
	Properties *Map
}

func newNodeFromFields(f []Value) (Structure, error) {
	id, err := asInt(f[0], "Node.identity")
	if err != nil {
		return nil, err
	}
	labelsList, err := asList(f[1], "Node.labels")
	if err != nil {
		return nil, err
	}
	labels := make([]String, 0, len(labelsList))
	for _, lv := range labelsList {
		s, err := asString(lv, "Node.labels[]")
		if err != nil {
			return nil, err
		}
		labels = append(labels, s)
	}
	props, err := asMap(f[2], "Node.properties")
	if err != nil {
		return nil, err
	}
	return &Node{Identity: id, Labels: labels, Properties: props}, nil
}

func (v *Node) Signature() byte { return SigNode }

func (v *Node) Fields() []Value {
	labels := make(List, len(v.Labels))
	for i, l := range v.Labels {
		labels[i] = l
	}
	return []Value{v.Identity, labels, v.Properties}
}

func (v *Node) Size() int                        { return structureSize(v) }
func (v *Node) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Relationship ----

// Relationship is a bound graph relationship between two nodes.
type Relationship struct {
	Identity   Int
	StartID    Int
	EndID      Int
	Type       String
	Properties *Map
}

func newRelationshipFromFields(f []Value) (Structure, error) {
	id, err := asInt(f[0], "Relationship.identity")
	if err != nil {
		return nil, err
	}
	start, err := asInt(f[1], "Relationship.start_id")
	if err != nil {
		return nil, err
	}
	end, err := asInt(f[2], "Relationship.end_id")
	if err != nil {
		return nil, err
	}
	typ, err := asString(f[3], "Relationship.type")
	if err != nil {
		return nil, err
	}
	props, err := asMap(f[4], "Relationship.properties")
	if err != nil {
		return nil, err
	}
	return &Relationship{Identity: id, StartID: start, EndID: end, Type: typ, Properties: props}, nil
}

func (v *Relationship) Signature() byte { return SigRelationship }
func (v *Relationship) Fields() []Value {
	return []Value{v.Identity, v.StartID, v.EndID, v.Type, v.Properties}
}
func (v *Relationship) Size() int                        { return structureSize(v) }
func (v *Relationship) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- UnboundRelationship ----

// UnboundRelationship is a Relationship as it appears within a Path, without
// its endpoint identities.
type UnboundRelationship struct {
	Identity   Int
	Type       String
	Properties *Map
}

func newUnboundRelationshipFromFields(f []Value) (Structure, error) {
	id, err := asInt(f[0], "UnboundRelationship.identity")
	if err != nil {
		return nil, err
	}
	typ, err := asString(f[1], "UnboundRelationship.type")
	if err != nil {
		return nil, err
	}
	props, err := asMap(f[2], "UnboundRelationship.properties")
	if err != nil {
		return nil, err
	}
	return &UnboundRelationship{Identity: id, Type: typ, Properties: props}, nil
}

func (v *UnboundRelationship) Signature() byte { return SigUnboundRelationship }
func (v *UnboundRelationship) Fields() []Value {
	return []Value{v.Identity, v.Type, v.Properties}
}
func (v *UnboundRelationship) Size() int                        { return structureSize(v) }
func (v *UnboundRelationship) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Path ----

// Path is a walk over nodes and unbound relationships, encoded as the two
// lists plus an index sequence (never pointers, see §9).
type Path struct {
	Nodes         []*Node
	Relationships []*UnboundRelationship
	Sequence      []Int
}

func newPathFromFields(f []Value) (Structure, error) {
	nodesList, err := asList(f[0], "Path.nodes")
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(nodesList))
	for _, nv := range nodesList {
		n, ok := nv.(*Node)
		if !ok {
			return nil, errors.WithStack(&InvalidStructureError{Reason: "Path.nodes[] is not a Node"})
		}
		nodes = append(nodes, n)
	}

	relsList, err := asList(f[1], "Path.rels")
	if err != nil {
		return nil, err
	}
	rels := make([]*UnboundRelationship, 0, len(relsList))
	for _, rv := range relsList {
		r, ok := rv.(*UnboundRelationship)
		if !ok {
			return nil, errors.WithStack(&InvalidStructureError{Reason: "Path.rels[] is not an UnboundRelationship"})
		}
		rels = append(rels, r)
	}

	seqList, err := asList(f[2], "Path.sequence")
	if err != nil {
		return nil, err
	}
	seq := make([]Int, 0, len(seqList))
	for _, sv := range seqList {
		i, err := asInt(sv, "Path.sequence[]")
		if err != nil {
			return nil, err
		}
		seq = append(seq, i)
	}

	return &Path{Nodes: nodes, Relationships: rels, Sequence: seq}, nil
}

func (v *Path) Signature() byte { return SigPath }
func (v *Path) Fields() []Value {
	nodes := make(List, len(v.Nodes))
	for i, n := range v.Nodes {
		nodes[i] = n
	}
	rels := make(List, len(v.Relationships))
	for i, r := range v.Relationships {
		rels[i] = r
	}
	seq := make(List, len(v.Sequence))
	for i, s := range v.Sequence {
		seq[i] = s
	}
	return []Value{nodes, rels, seq}
}
func (v *Path) Size() int                        { return structureSize(v) }
func (v *Path) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Date ----

// Date is a day count since the Unix epoch.
type Date struct {
	DaysSinceEpoch Int
}

func newDateFromFields(f []Value) (Structure, error) {
	d, err := asInt(f[0], "Date.days_since_epoch")
	if err != nil {
		return nil, err
	}
	return &Date{DaysSinceEpoch: d}, nil
}

func (v *Date) Signature() byte                   { return SigDate }
func (v *Date) Fields() []Value                   { return []Value{v.DaysSinceEpoch} }
func (v *Date) Size() int                         { return structureSize(v) }
func (v *Date) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Time (with UTC offset) ----

type Time struct {
	NanosSinceMidnight Int
	TZOffsetSeconds    Int
}

func newTimeFromFields(f []Value) (Structure, error) {
	n, err := asInt(f[0], "Time.nanos_since_midnight")
	if err != nil {
		return nil, err
	}
	off, err := asInt(f[1], "Time.tz_offset_sec")
	if err != nil {
		return nil, err
	}
	return &Time{NanosSinceMidnight: n, TZOffsetSeconds: off}, nil
}

func (v *Time) Signature() byte { return SigTime }
func (v *Time) Fields() []Value { return []Value{v.NanosSinceMidnight, v.TZOffsetSeconds} }
func (v *Time) Size() int                         { return structureSize(v) }
func (v *Time) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- LocalTime ----

type LocalTime struct {
	NanosSinceMidnight Int
}

func newLocalTimeFromFields(f []Value) (Structure, error) {
	n, err := asInt(f[0], "LocalTime.nanos_since_midnight")
	if err != nil {
		return nil, err
	}
	return &LocalTime{NanosSinceMidnight: n}, nil
}

func (v *LocalTime) Signature() byte                   { return SigLocalTime }
func (v *LocalTime) Fields() []Value                   { return []Value{v.NanosSinceMidnight} }
func (v *LocalTime) Size() int                         { return structureSize(v) }
func (v *LocalTime) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- DateTimeOffset ----

type DateTimeOffset struct {
	Seconds         Int
	Nanos           Int
	TZOffsetSeconds Int
}

func newDateTimeOffsetFromFields(f []Value) (Structure, error) {
	s, err := asInt(f[0], "DateTimeOffset.secs")
	if err != nil {
		return nil, err
	}
	n, err := asInt(f[1], "DateTimeOffset.nanos")
	if err != nil {
		return nil, err
	}
	off, err := asInt(f[2], "DateTimeOffset.tz_offset_sec")
	if err != nil {
		return nil, err
	}
	return &DateTimeOffset{Seconds: s, Nanos: n, TZOffsetSeconds: off}, nil
}

func (v *DateTimeOffset) Signature() byte { return SigDateTimeOffset }
func (v *DateTimeOffset) Fields() []Value {
	return []Value{v.Seconds, v.Nanos, v.TZOffsetSeconds}
}
func (v *DateTimeOffset) Size() int                         { return structureSize(v) }
func (v *DateTimeOffset) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- DateTimeZoneId ----

type DateTimeZoneId struct {
	Seconds Int
	Nanos   Int
	TZName  String
}

func newDateTimeZoneIdFromFields(f []Value) (Structure, error) {
	s, err := asInt(f[0], "DateTimeZoneId.secs")
	if err != nil {
		return nil, err
	}
	n, err := asInt(f[1], "DateTimeZoneId.nanos")
	if err != nil {
		return nil, err
	}
	name, err := asString(f[2], "DateTimeZoneId.tz_name")
	if err != nil {
		return nil, err
	}
	return &DateTimeZoneId{Seconds: s, Nanos: n, TZName: name}, nil
}

func (v *DateTimeZoneId) Signature() byte { return SigDateTimeZoneId }
func (v *DateTimeZoneId) Fields() []Value {
	return []Value{v.Seconds, v.Nanos, v.TZName}
}
func (v *DateTimeZoneId) Size() int                         { return structureSize(v) }
func (v *DateTimeZoneId) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- LocalDateTime ----

type LocalDateTime struct {
	Seconds Int
	Nanos   Int
}

func newLocalDateTimeFromFields(f []Value) (Structure, error) {
	s, err := asInt(f[0], "LocalDateTime.secs")
	if err != nil {
		return nil, err
	}
	n, err := asInt(f[1], "LocalDateTime.nanos")
	if err != nil {
		return nil, err
	}
	return &LocalDateTime{Seconds: s, Nanos: n}, nil
}

func (v *LocalDateTime) Signature() byte                   { return SigLocalDateTime }
func (v *LocalDateTime) Fields() []Value                   { return []Value{v.Seconds, v.Nanos} }
func (v *LocalDateTime) Size() int                         { return structureSize(v) }
func (v *LocalDateTime) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Duration ----

type Duration struct {
	Months  Int
	Days    Int
	Seconds Int
	Nanos   Int
}

func newDurationFromFields(f []Value) (Structure, error) {
	months, err := asInt(f[0], "Duration.months")
	if err != nil {
		return nil, err
	}
	days, err := asInt(f[1], "Duration.days")
	if err != nil {
		return nil, err
	}
	secs, err := asInt(f[2], "Duration.seconds")
	if err != nil {
		return nil, err
	}
	nanos, err := asInt(f[3], "Duration.nanos")
	if err != nil {
		return nil, err
	}
	return &Duration{Months: months, Days: days, Seconds: secs, Nanos: nanos}, nil
}

func (v *Duration) Signature() byte { return SigDuration }
func (v *Duration) Fields() []Value {
	return []Value{v.Months, v.Days, v.Seconds, v.Nanos}
}
func (v *Duration) Size() int                         { return structureSize(v) }
func (v *Duration) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Point2D ----

type Point2D struct {
	SRID Int
	X, Y Float
}

func newPoint2DFromFields(f []Value) (Structure, error) {
	srid, err := asInt(f[0], "Point2D.srid")
	if err != nil {
		return nil, err
	}
	x, err := asFloat(f[1], "Point2D.x")
	if err != nil {
		return nil, err
	}
	y, err := asFloat(f[2], "Point2D.y")
	if err != nil {
		return nil, err
	}
	return &Point2D{SRID: srid, X: x, Y: y}, nil
}

func (v *Point2D) Signature() byte                   { return SigPoint2D }
func (v *Point2D) Fields() []Value                   { return []Value{v.SRID, v.X, v.Y} }
func (v *Point2D) Size() int                         { return structureSize(v) }
func (v *Point2D) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }

// ---- Point3D ----

type Point3D struct {
	SRID  Int
	X, Y, Z Float
}

func newPoint3DFromFields(f []Value) (Structure, error) {
	srid, err := asInt(f[0], "Point3D.srid")
	if err != nil {
		return nil, err
	}
	x, err := asFloat(f[1], "Point3D.x")
	if err != nil {
		return nil, err
	}
	y, err := asFloat(f[2], "Point3D.y")
	if err != nil {
		return nil, err
	}
	z, err := asFloat(f[3], "Point3D.z")
	if err != nil {
		return nil, err
	}
	return &Point3D{SRID: srid, X: x, Y: y, Z: z}, nil
}

func (v *Point3D) Signature() byte { return SigPoint3D }
func (v *Point3D) Fields() []Value {
	return []Value{v.SRID, v.X, v.Y, v.Z}
}
func (v *Point3D) Size() int                         { return structureSize(v) }
func (v *Point3D) MarshalPS(buf []byte) ([]byte, error) { return encodeStructure(v, buf) }
