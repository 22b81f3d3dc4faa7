// Package kerr holds the Kafka protocol's numeric error codes and the
// retryability classification that drives the Router's retry and
// stale-metadata-refresh decisions (spec §4.5, §7).
package kerr

import "fmt"

// Error is a decoded protocol error code (spec.md §7, kind "Request").
// Error codes are preserved exactly as the protocol defines them.
type Error struct {
	Code    int16
	Name    string
	Message string

	retriable        bool
	fromStaleMetadata bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("kafka: %s (%d): %s", e.Name, e.Code, e.Message)
}

// IsRetriable reports whether the broker-side retryability table (§4.5
// "Retryable-from-broker") flags this code as safe to retry. Codes that
// also need a metadata refresh first (e.g. NotLeaderForPartition) are
// flagged by IsFromStaleMetadata as well.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if as(err, &e) {
		return e.retriable
	}
	return false
}

// IsFromStaleMetadata reports whether this code is in the
// "Stale-metadata-inferred" set (§4.5), meaning the next attempt should
// force a metadata refresh before resending.
func IsFromStaleMetadata(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if as(err, &e) {
		return e.fromStaleMetadata
	}
	return false
}

// as is a tiny errors.As shim kept local so this package has zero imports
// beyond fmt; it only ever needs to unwrap *Error itself since ErrorForCode
// never wraps.
func as(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}

// Well-known numeric codes, matching the assignments Kafka has used since
// the original wire protocol (cross-checked against
// _examples/Stars1233-sarama usage, which targets the same protocol
// generation this spec describes).
const (
	codeNoError                       int16 = 0
	codeUnknown                       int16 = -1
	codeOffsetOutOfRange              int16 = 1
	codeInvalidMessage                int16 = 2
	codeUnknownTopicOrPartition       int16 = 3
	codeInvalidMessageSize            int16 = 4
	codeLeaderNotAvailable            int16 = 5
	codeNotLeaderForPartition         int16 = 6
	codeRequestTimedOut               int16 = 7
	codeBrokerNotAvailable            int16 = 8
	codeReplicaNotAvailable           int16 = 9
	codeMessageSizeTooLarge           int16 = 10
	codeStaleControllerEpoch          int16 = 11
	codeOffsetMetadataTooLarge        int16 = 12
	codeNetworkException              int16 = 13
	codeOffsetsLoadInProgress          int16 = 14
	codeConsumerCoordinatorNotAvailable int16 = 15
	codeNotCoordinatorForConsumer      int16 = 16
	codeInvalidTopic                   int16 = 17
	codeRecordListTooLarge             int16 = 18
	codeNotEnoughReplicas              int16 = 19
	codeNotEnoughReplicasAfterAppend   int16 = 20
	codeInvalidRequiredAcks            int16 = 21
	codeIllegalGeneration              int16 = 22
	codeInconsistentGroupProtocol      int16 = 23
	codeInvalidGroupID                 int16 = 24
	codeUnknownMemberID                int16 = 25
	codeInvalidSessionTimeout          int16 = 26
	codeRebalanceInProgress            int16 = 27
	codeInvalidCommitOffsetSize        int16 = 28
	codeTopicAuthorizationFailed       int16 = 29
	codeGroupAuthorizationFailed       int16 = 30
	codeClusterAuthorizationFailed     int16 = 31
	codeUnsupportedSaslMechanism       int16 = 33
	codeIllegalSaslState               int16 = 34
	codeUnsupportedVersion             int16 = 35
)

var table map[int16]*Error

func register(code int16, name, msg string, retriable, staleMeta bool) {
	if table == nil {
		table = make(map[int16]*Error)
	}
	table[code] = &Error{Code: code, Name: name, Message: msg, retriable: retriable, fromStaleMetadata: staleMeta}
}

func init() {
	register(codeUnknown, "Unknown", "an unexpected server error occurred", false, false)
	register(codeOffsetOutOfRange, "OffsetOutOfRange", "the requested offset is outside the range of offsets maintained by the server", true, true)
	register(codeInvalidMessage, "InvalidMessage", "the message contents does not match its CRC", false, false)
	register(codeUnknownTopicOrPartition, "UnknownTopicOrPartition", "the request is for a topic or partition that does not exist on this broker", true, true)
	register(codeInvalidMessageSize, "InvalidMessageSize", "the message has a negative size", false, false)
	register(codeLeaderNotAvailable, "LeaderNotAvailable", "the cluster is in the middle of a leadership election and there is no leader for this partition", true, true)
	register(codeNotLeaderForPartition, "NotLeaderForPartition", "the client sent a request to a broker that is not the leader for the partition", true, true)
	register(codeRequestTimedOut, "RequestTimedOut", "the request timed out", true, false)
	register(codeBrokerNotAvailable, "BrokerNotAvailable", "broker is not available", true, false)
	register(codeReplicaNotAvailable, "ReplicaNotAvailable", "a replica is expected on a broker, but is not", true, false)
	register(codeMessageSizeTooLarge, "MessageSizeTooLarge", "the message is larger than the maximum allowed size", false, false)
	register(codeStaleControllerEpoch, "StaleControllerEpoch", "the controller moved to another broker", false, false)
	register(codeOffsetMetadataTooLarge, "OffsetMetadataTooLarge", "the metadata field of the offset request was too large", false, false)
	register(codeNetworkException, "NetworkException", "the server disconnected before a response was received", true, false)
	register(codeOffsetsLoadInProgress, "OffsetsLoadInProgress", "the coordinator is loading offsets and cannot currently process requests", true, false)
	register(codeConsumerCoordinatorNotAvailable, "ConsumerCoordinatorNotAvailable", "the coordinator is not available", true, false)
	register(codeNotCoordinatorForConsumer, "NotCoordinatorForConsumer", "the request was sent to a broker that is not the coordinator for this group", true, true)
	register(codeInvalidTopic, "InvalidTopic", "the request attempted to perform an operation on an invalid topic", false, false)
	register(codeRecordListTooLarge, "RecordListTooLarge", "the request included message batch larger than the configured segment size", false, false)
	register(codeNotEnoughReplicas, "NotEnoughReplicas", "messages are rejected since there are fewer in-sync replicas than required", true, false)
	register(codeNotEnoughReplicasAfterAppend, "NotEnoughReplicasAfterAppend", "messages are written to the log, but to fewer in-sync replicas than required", true, false)
	register(codeInvalidRequiredAcks, "InvalidRequiredAcks", "produce request specified an invalid value for required acks", false, false)
	register(codeIllegalGeneration, "IllegalGeneration", "the provided generation id does not match the current generation", false, false)
	register(codeInconsistentGroupProtocol, "InconsistentGroupProtocol", "the provider group protocol type is incompatible with the other members", false, false)
	register(codeInvalidGroupID, "InvalidGroupId", "the configured groupId is invalid", false, false)
	register(codeUnknownMemberID, "UnknownMemberId", "the coordinator is not aware of this member", false, false)
	register(codeInvalidSessionTimeout, "InvalidSessionTimeout", "the session timeout is not within an acceptable range", false, false)
	register(codeRebalanceInProgress, "RebalanceInProgress", "the group is rebalancing, so a rejoin is needed", true, false)
	register(codeInvalidCommitOffsetSize, "InvalidCommitOffsetSize", "the committing offset data size is not valid", false, false)
	register(codeTopicAuthorizationFailed, "TopicAuthorizationFailed", "not authorized to access topics", false, false)
	register(codeGroupAuthorizationFailed, "GroupAuthorizationFailed", "not authorized to access group", false, false)
	register(codeClusterAuthorizationFailed, "ClusterAuthorizationFailed", "cluster authorization failed", false, false)
	register(codeUnsupportedSaslMechanism, "UnsupportedSaslMechanism", "the broker does not support the requested SASL mechanism", false, false)
	register(codeIllegalSaslState, "IllegalSaslState", "request is not valid given the current SASL state", false, false)
	register(codeUnsupportedVersion, "UnsupportedVersion", "the version of API is not supported", false, false)
}

// ErrorForCode returns nil for code 0 (NoError), the registered *Error for
// a known non-zero code, or a generic *Error for an unrecognized code (the
// protocol table is open-ended across broker versions; an unknown code is
// treated conservatively as fatal).
func ErrorForCode(code int16) error {
	if code == codeNoError {
		return nil
	}
	if e, ok := table[code]; ok {
		return e
	}
	return &Error{Code: code, Name: "Unmapped", Message: "unrecognized error code"}
}
