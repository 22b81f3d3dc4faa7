package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// MetadataRequest is "Metadata" (key 3). A nil or empty Topics list asks
// the broker for every topic (spec §4.2).
type MetadataRequest struct {
	version int16

	Topics []string
}

func (r *MetadataRequest) Key() int16         { return KeyMetadata }
func (r *MetadataRequest) Version() int16     { return r.version }
func (r *MetadataRequest) SetVersion(v int16) { r.version = v }
func (r *MetadataRequest) NewResponse() Response {
	return &MetadataResponse{version: r.version}
}

func (r *MetadataRequest) AppendBody(w *kbin.Writer) {
	w.ArrayLen(len(r.Topics))
	for _, t := range r.Topics {
		w.String(t)
	}
}

// MetadataBroker mirrors spec §3 Broker.
type MetadataBroker struct {
	NodeID int32
	Host   string
	Port   int32
}

// MetadataPartition mirrors spec §3 Partition.
type MetadataPartition struct {
	ErrorCode       int16
	PartitionID     int32
	Leader          int32
	Replicas        []int32
	ISR             []int32
	IsElectingLeader bool // derived: true when ErrorCode names an in-progress election
}

// MetadataTopic mirrors spec §3 Topic.
type MetadataTopic struct {
	ErrorCode  int16
	Topic      string
	Partitions []MetadataPartition
}

// MetadataResponse is the decoded reply to a MetadataRequest.
type MetadataResponse struct {
	version int16

	Brokers []MetadataBroker
	Topics  []MetadataTopic
}

func (r *MetadataResponse) Key() int16         { return KeyMetadata }
func (r *MetadataResponse) Version() int16     { return r.version }
func (r *MetadataResponse) SetVersion(v int16) { r.version = v }

func (r *MetadataResponse) ReadBody(reader *kbin.Reader) error {
	bn := reader.ArrayLen()
	r.Brokers = make([]MetadataBroker, 0, bn)
	for i := int32(0); i < bn; i++ {
		var b MetadataBroker
		b.NodeID = reader.Int32()
		b.Host = reader.String()
		b.Port = reader.Int32()
		r.Brokers = append(r.Brokers, b)
	}

	tn := reader.ArrayLen()
	r.Topics = make([]MetadataTopic, 0, tn)
	for i := int32(0); i < tn; i++ {
		var t MetadataTopic
		t.ErrorCode = reader.Int16()
		t.Topic = reader.String()
		pn := reader.ArrayLen()
		t.Partitions = make([]MetadataPartition, 0, pn)
		for j := int32(0); j < pn; j++ {
			var p MetadataPartition
			p.ErrorCode = reader.Int16()
			p.PartitionID = reader.Int32()
			p.Leader = reader.Int32()

			rn := reader.ArrayLen()
			p.Replicas = make([]int32, rn)
			for k := range p.Replicas {
				p.Replicas[k] = reader.Int32()
			}
			isrn := reader.ArrayLen()
			p.ISR = make([]int32, isrn)
			for k := range p.ISR {
				p.ISR[k] = reader.Int32()
			}
			p.IsElectingLeader = p.ErrorCode == errCodeLeaderNotAvailable
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return reader.Err()
}

// errCodeLeaderNotAvailable mirrors kerr's LeaderNotAvailable code (5);
// kept local because kerr does not export its numeric code constants.
const errCodeLeaderNotAvailable int16 = 5
