package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// OffsetPartitionRequest is one partition entry in an OffsetRequest
// (ListOffsets, key 2).
type OffsetPartitionRequest struct {
	Partition     int32
	Timestamp     int64 // -1 latest, -2 earliest, or an exact ms timestamp
	MaxNumOffsets int32
}

// OffsetTopicRequest groups partitions under their topic.
type OffsetTopicRequest struct {
	Topic      string
	Partitions []OffsetPartitionRequest
}

// OffsetRequest is "Offset" (key 2), used to discover valid offset
// boundaries for a partition.
type OffsetRequest struct {
	version int16

	Topics []OffsetTopicRequest
}

func (r *OffsetRequest) Key() int16         { return KeyOffset }
func (r *OffsetRequest) Version() int16     { return r.version }
func (r *OffsetRequest) SetVersion(v int16) { r.version = v }
func (r *OffsetRequest) NewResponse() Response {
	return &OffsetResponse{version: r.version}
}

func (r *OffsetRequest) AppendBody(w *kbin.Writer) {
	w.Int32(-1) // replica_id
	w.ArrayLen(len(r.Topics))
	for _, t := range r.Topics {
		w.String(t.Topic)
		w.ArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.Int32(p.Partition)
			w.Int64(p.Timestamp)
			w.Int32(p.MaxNumOffsets)
		}
	}
}

// OffsetPartitionResult is one partition's result within OffsetResponse.
type OffsetPartitionResult struct {
	Partition int32
	ErrorCode int16
	Offsets   []int64
}

// OffsetTopicResult groups partition results under their topic.
type OffsetTopicResult struct {
	Topic      string
	Partitions []OffsetPartitionResult
}

// OffsetResponse is the decoded reply to an OffsetRequest.
type OffsetResponse struct {
	version int16

	Topics []OffsetTopicResult
}

func (r *OffsetResponse) Key() int16         { return KeyOffset }
func (r *OffsetResponse) Version() int16     { return r.version }
func (r *OffsetResponse) SetVersion(v int16) { r.version = v }

func (r *OffsetResponse) ReadBody(reader *kbin.Reader) error {
	tn := reader.ArrayLen()
	r.Topics = make([]OffsetTopicResult, 0, tn)
	for i := int32(0); i < tn; i++ {
		var t OffsetTopicResult
		t.Topic = reader.String()
		pn := reader.ArrayLen()
		t.Partitions = make([]OffsetPartitionResult, 0, pn)
		for j := int32(0); j < pn; j++ {
			var p OffsetPartitionResult
			p.Partition = reader.Int32()
			p.ErrorCode = reader.Int16()
			on := reader.ArrayLen()
			p.Offsets = make([]int64, on)
			for k := range p.Offsets {
				p.Offsets[k] = reader.Int64()
			}
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return reader.Err()
}
