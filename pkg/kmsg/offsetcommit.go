package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// OffsetCommitPartitionRequest is one partition commit entry.
type OffsetCommitPartitionRequest struct {
	Partition int32
	Offset    int64
	Metadata  *string
}

// OffsetCommitTopicRequest groups partitions under their topic.
type OffsetCommitTopicRequest struct {
	Topic      string
	Partitions []OffsetCommitPartitionRequest
}

// OffsetCommitRequest is "OffsetCommit" (key 8). Versions 0/1/2 differ:
// v>=1 adds GenerationID + MemberID, v>=2 adds RetentionMillis (spec §4.2).
type OffsetCommitRequest struct {
	version int16

	GroupID         string
	GenerationID    int32 // v>=1
	MemberID        string // v>=1
	RetentionMillis int64 // v>=2
	Topics          []OffsetCommitTopicRequest
}

func (r *OffsetCommitRequest) Key() int16         { return KeyOffsetCommit }
func (r *OffsetCommitRequest) Version() int16     { return r.version }
func (r *OffsetCommitRequest) SetVersion(v int16) { r.version = v }
func (r *OffsetCommitRequest) NewResponse() Response {
	return &OffsetCommitResponse{version: r.version}
}

func (r *OffsetCommitRequest) AppendBody(w *kbin.Writer) {
	w.String(r.GroupID)
	if r.version >= 1 {
		w.Int32(r.GenerationID)
		w.String(r.MemberID)
	}
	if r.version >= 2 {
		w.Int64(r.RetentionMillis)
	}
	w.ArrayLen(len(r.Topics))
	for _, t := range r.Topics {
		w.String(t.Topic)
		w.ArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.Int32(p.Partition)
			w.Int64(p.Offset)
			w.NullableString(p.Metadata)
		}
	}
}

// OffsetCommitPartitionResult is one partition's commit result.
type OffsetCommitPartitionResult struct {
	Partition int32
	ErrorCode int16
}

// OffsetCommitTopicResult groups partition results under their topic.
type OffsetCommitTopicResult struct {
	Topic      string
	Partitions []OffsetCommitPartitionResult
}

// OffsetCommitResponse is the decoded reply to an OffsetCommitRequest.
type OffsetCommitResponse struct {
	version int16

	Topics []OffsetCommitTopicResult
}

func (r *OffsetCommitResponse) Key() int16         { return KeyOffsetCommit }
func (r *OffsetCommitResponse) Version() int16     { return r.version }
func (r *OffsetCommitResponse) SetVersion(v int16) { r.version = v }

func (r *OffsetCommitResponse) ReadBody(reader *kbin.Reader) error {
	tn := reader.ArrayLen()
	r.Topics = make([]OffsetCommitTopicResult, 0, tn)
	for i := int32(0); i < tn; i++ {
		var t OffsetCommitTopicResult
		t.Topic = reader.String()
		pn := reader.ArrayLen()
		t.Partitions = make([]OffsetCommitPartitionResult, 0, pn)
		for j := int32(0); j < pn; j++ {
			var p OffsetCommitPartitionResult
			p.Partition = reader.Int32()
			p.ErrorCode = reader.Int16()
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return reader.Err()
}
