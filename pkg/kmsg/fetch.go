package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// FetchPartitionRequest is one partition entry in a FetchRequest.
type FetchPartitionRequest struct {
	Partition int32
	Offset    int64
	MaxBytes  int32
}

// FetchTopicRequest groups partitions under their topic.
type FetchTopicRequest struct {
	Topic      string
	Partitions []FetchPartitionRequest
}

// FetchRequest is "Fetch" (key 1). ReplicaID is always -1 for a regular
// consumer client (spec §4.2).
type FetchRequest struct {
	version int16

	MaxWaitMillis int32
	MinBytes      int32
	Topics        []FetchTopicRequest
}

func (r *FetchRequest) Key() int16         { return KeyFetch }
func (r *FetchRequest) Version() int16     { return r.version }
func (r *FetchRequest) SetVersion(v int16) { r.version = v }
func (r *FetchRequest) NewResponse() Response {
	return &FetchResponse{version: r.version}
}

func (r *FetchRequest) AppendBody(w *kbin.Writer) {
	w.Int32(-1) // replica_id
	w.Int32(r.MaxWaitMillis)
	w.Int32(r.MinBytes)
	w.ArrayLen(len(r.Topics))
	for _, t := range r.Topics {
		w.String(t.Topic)
		w.ArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.Int32(p.Partition)
			w.Int64(p.Offset)
			w.Int32(p.MaxBytes)
		}
	}
}

// FetchPartitionResult is one partition's fetched data.
type FetchPartitionResult struct {
	Partition      int32
	ErrorCode      int16
	HighWaterMark  int64
	MessageSet     MessageSet
}

// FetchTopicResult groups partition results under their topic.
type FetchTopicResult struct {
	Topic      string
	Partitions []FetchPartitionResult
}

// FetchResponse is the decoded reply to a FetchRequest.
type FetchResponse struct {
	version int16

	ThrottleMillis int32 // only set at api_version >= 1
	Topics         []FetchTopicResult
}

func (r *FetchResponse) Key() int16                 { return KeyFetch }
func (r *FetchResponse) Version() int16             { return r.version }
func (r *FetchResponse) SetVersion(v int16)         { r.version = v }
func (r *FetchResponse) ThrottleTimeMillis() int32 { return r.ThrottleMillis }

func (r *FetchResponse) ReadBody(reader *kbin.Reader) error {
	if r.version >= 1 {
		r.ThrottleMillis = reader.Int32()
	}
	n := reader.ArrayLen()
	r.Topics = make([]FetchTopicResult, 0, n)
	for i := int32(0); i < n; i++ {
		var t FetchTopicResult
		t.Topic = reader.String()
		pn := reader.ArrayLen()
		t.Partitions = make([]FetchPartitionResult, 0, pn)
		for j := int32(0); j < pn; j++ {
			var p FetchPartitionResult
			p.Partition = reader.Int32()
			p.ErrorCode = reader.Int16()
			p.HighWaterMark = reader.Int64()
			msgSetBytes := reader.NullableBytes()
			if reader.Err() != nil {
				return reader.Err()
			}
			if msgSetBytes != nil {
				ms, err := DecodeMessageSet(msgSetBytes, decodeFetchTolerant)
				if err != nil {
					return err
				}
				p.MessageSet = ms
			}
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return reader.Err()
}
