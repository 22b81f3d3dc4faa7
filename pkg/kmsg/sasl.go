package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// SaslHandshakeRequest is "SaslHandshake" (key 17): it negotiates which
// SASL mechanism the subsequent raw-bytes authentication exchange will
// use. This module only encodes the handshake itself; the exchange that
// follows it is opaque raw bytes on the wire, outside the request/
// response framing, and lives in package sasl.
type SaslHandshakeRequest struct {
	version int16

	Mechanism string
}

func (r *SaslHandshakeRequest) Key() int16         { return KeySaslHandshake }
func (r *SaslHandshakeRequest) Version() int16     { return r.version }
func (r *SaslHandshakeRequest) SetVersion(v int16) { r.version = v }
func (r *SaslHandshakeRequest) NewResponse() Response {
	return &SaslHandshakeResponse{version: r.version}
}
func (r *SaslHandshakeRequest) AppendBody(w *kbin.Writer) { w.String(r.Mechanism) }

// SaslHandshakeResponse is the decoded reply to a SaslHandshakeRequest.
// EnabledMechanisms is only meaningful when ErrorCode signals an
// unsupported mechanism was requested.
type SaslHandshakeResponse struct {
	version int16

	ErrorCode         int16
	EnabledMechanisms []string
}

func (r *SaslHandshakeResponse) Key() int16         { return KeySaslHandshake }
func (r *SaslHandshakeResponse) Version() int16     { return r.version }
func (r *SaslHandshakeResponse) SetVersion(v int16) { r.version = v }
func (r *SaslHandshakeResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	n := reader.ArrayLen()
	r.EnabledMechanisms = make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		r.EnabledMechanisms = append(r.EnabledMechanisms, reader.String())
	}
	return reader.Err()
}

// ApiVersionsRequest is "ApiVersions" (key 18): it carries no body and is
// used to discover what (key, min, max) triples a broker supports before
// committing to a request version (spec §4.2, "server capability
// discovery").
type ApiVersionsRequest struct{ version int16 }

func (r *ApiVersionsRequest) Key() int16             { return KeyApiVersions }
func (r *ApiVersionsRequest) Version() int16         { return r.version }
func (r *ApiVersionsRequest) SetVersion(v int16)     { r.version = v }
func (r *ApiVersionsRequest) AppendBody(*kbin.Writer) {}
func (r *ApiVersionsRequest) NewResponse() Response {
	return &ApiVersionsResponse{version: r.version}
}

// ApiVersionRange is one API key's supported version span as reported by
// a broker.
type ApiVersionRange struct {
	ApiKey     int16
	MinVersion int16
	MaxVersion int16
}

// ApiVersionsResponse is the decoded reply to an ApiVersionsRequest.
type ApiVersionsResponse struct {
	version int16

	ErrorCode  int16
	ApiKeys    []ApiVersionRange
}

func (r *ApiVersionsResponse) Key() int16         { return KeyApiVersions }
func (r *ApiVersionsResponse) Version() int16     { return r.version }
func (r *ApiVersionsResponse) SetVersion(v int16) { r.version = v }
func (r *ApiVersionsResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	n := reader.ArrayLen()
	r.ApiKeys = make([]ApiVersionRange, 0, n)
	for i := int32(0); i < n; i++ {
		var v ApiVersionRange
		v.ApiKey = reader.Int16()
		v.MinVersion = reader.Int16()
		v.MaxVersion = reader.Int16()
		r.ApiKeys = append(r.ApiKeys, v)
	}
	return reader.Err()
}

// Supports reports whether this response's broker advertises support for
// the given api key at the given version.
func (r *ApiVersionsResponse) Supports(apiKey, version int16) bool {
	for _, v := range r.ApiKeys {
		if v.ApiKey == apiKey {
			return version >= v.MinVersion && version <= v.MaxVersion
		}
	}
	return false
}

// StopReplicaRequest is "StopReplica" (key 5). It is included for
// completeness (spec §4.2) -- it is a controller-to-broker administrative
// request that an ordinary client never issues, but it is part of the
// closed tagged union of supported kinds.
type StopReplicaRequest struct {
	version int16

	ControllerID    int32
	ControllerEpoch int32
	DeletePartitions bool
	Partitions      []StopReplicaPartition
}

// StopReplicaPartition names one (topic, partition) pair to stop.
type StopReplicaPartition struct {
	Topic     string
	Partition int32
}

func (r *StopReplicaRequest) Key() int16         { return KeyStopReplica }
func (r *StopReplicaRequest) Version() int16     { return r.version }
func (r *StopReplicaRequest) SetVersion(v int16) { r.version = v }
func (r *StopReplicaRequest) NewResponse() Response {
	return &StopReplicaResponse{version: r.version}
}
func (r *StopReplicaRequest) AppendBody(w *kbin.Writer) {
	w.Int32(r.ControllerID)
	w.Int32(r.ControllerEpoch)
	w.Bool(r.DeletePartitions)
	w.ArrayLen(len(r.Partitions))
	for _, p := range r.Partitions {
		w.String(p.Topic)
		w.Int32(p.Partition)
	}
}

// StopReplicaPartitionError is one partition's error result.
type StopReplicaPartitionError struct {
	Topic     string
	Partition int32
	ErrorCode int16
}

// StopReplicaResponse is the decoded reply to a StopReplicaRequest.
type StopReplicaResponse struct {
	version int16

	ErrorCode        int16
	PartitionErrors  []StopReplicaPartitionError
}

func (r *StopReplicaResponse) Key() int16         { return KeyStopReplica }
func (r *StopReplicaResponse) Version() int16     { return r.version }
func (r *StopReplicaResponse) SetVersion(v int16) { r.version = v }
func (r *StopReplicaResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	n := reader.ArrayLen()
	r.PartitionErrors = make([]StopReplicaPartitionError, 0, n)
	for i := int32(0); i < n; i++ {
		var p StopReplicaPartitionError
		p.Topic = reader.String()
		p.Partition = reader.Int32()
		p.ErrorCode = reader.Int16()
		r.PartitionErrors = append(r.PartitionErrors, p)
	}
	return reader.Err()
}
