package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// ProduceRecords is one (topic, partition, codec) group of messages to
// send in a single ProduceRequest partition entry. Per spec.md Design
// Notes ("the partition-count field... but only one partition is ever
// written per group; the correct value is 1"), a group always maps to
// exactly one partition entry -- callers group their records by
// (topic, partition, codec) before building a ProduceRequest, and this
// codec never emits more than one partition count per group.
type ProduceRecords struct {
	Topic     string
	Partition int32
	Codec     int8 // codecNone or codecGZIP
	Messages  []Message
}

// ProduceRequest is "Produce" (key 0). acks/timeout_ms precede the grouped
// topic/partition/message_set bodies (spec §4.2).
type ProduceRequest struct {
	version int16

	Acks          int16
	TimeoutMillis int32
	Records       []ProduceRecords
}

func (r *ProduceRequest) Key() int16        { return KeyProduce }
func (r *ProduceRequest) Version() int16    { return r.version }
func (r *ProduceRequest) SetVersion(v int16) { r.version = v }
func (r *ProduceRequest) NewResponse() Response {
	return &ProduceResponse{version: r.version}
}

// byTopic groups Records (each already a single-partition group) under
// their topic, preserving the wire shape `[ topic | [ partition | ... ] ]`.
func (r *ProduceRequest) byTopic() []string {
	seen := map[string]bool{}
	var order []string
	for _, rec := range r.Records {
		if !seen[rec.Topic] {
			seen[rec.Topic] = true
			order = append(order, rec.Topic)
		}
	}
	return order
}

func (r *ProduceRequest) AppendBody(w *kbin.Writer) {
	w.Int16(r.Acks)
	w.Int32(r.TimeoutMillis)

	topics := r.byTopic()
	w.ArrayLen(len(topics))
	for _, topic := range topics {
		w.String(topic)

		var group []ProduceRecords
		for _, rec := range r.Records {
			if rec.Topic == topic {
				group = append(group, rec)
			}
		}
		w.ArrayLen(len(group)) // one partition entry per group, per Design Notes
		for _, rec := range group {
			w.Int32(rec.Partition)
			w.LengthPrefixed(func() {
				appendProducePayload(w, rec)
			})
		}
	}
}

func appendProducePayload(w *kbin.Writer, rec ProduceRecords) {
	if rec.Codec == int8(codecGZIP) {
		outer, err := CompressGZIP(rec.Messages)
		if err != nil {
			// AppendBody has no error return, so a GZIP failure here
			// drops this record group silently (gzip.Writer over a
			// bytes.Buffer essentially never errors in practice).
			return
		}
		AppendMessage(w, outer)
		return
	}
	AppendMessageSet(w, MessageSet{Messages: rec.Messages})
}

// ProducePartitionResult is one partition's result within ProduceResponse.
type ProducePartitionResult struct {
	Partition int32
	ErrorCode int16
	Offset    int64
	// Timestamp is only populated at api_version >= 2.
	Timestamp *int64
}

// ProduceTopicResult groups partition results under their topic.
type ProduceTopicResult struct {
	Topic      string
	Partitions []ProducePartitionResult
}

// ProduceResponse is the decoded reply to a ProduceRequest.
type ProduceResponse struct {
	version int16

	Topics        []ProduceTopicResult
	ThrottleMillis int32 // only set at api_version >= 1
}

func (r *ProduceResponse) Key() int16         { return KeyProduce }
func (r *ProduceResponse) Version() int16     { return r.version }
func (r *ProduceResponse) SetVersion(v int16) { r.version = v }
func (r *ProduceResponse) ThrottleTimeMillis() int32 { return r.ThrottleMillis }

func (r *ProduceResponse) ReadBody(reader *kbin.Reader) error {
	n := reader.ArrayLen()
	r.Topics = make([]ProduceTopicResult, 0, n)
	for i := int32(0); i < n; i++ {
		var topic ProduceTopicResult
		topic.Topic = reader.String()
		pn := reader.ArrayLen()
		topic.Partitions = make([]ProducePartitionResult, 0, pn)
		for j := int32(0); j < pn; j++ {
			var p ProducePartitionResult
			p.Partition = reader.Int32()
			p.ErrorCode = reader.Int16()
			p.Offset = reader.Int64()
			if r.version >= 2 {
				ts := reader.Int64()
				p.Timestamp = &ts
			}
			topic.Partitions = append(topic.Partitions, p)
		}
		r.Topics = append(r.Topics, topic)
	}
	if r.version >= 1 {
		r.ThrottleMillis = reader.Int32()
	}
	return reader.Err()
}
