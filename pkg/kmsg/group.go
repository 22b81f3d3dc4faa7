package kmsg

import "github.com/gigya/kafka-net/pkg/kbin"

// GroupCoordinatorRequest is "GroupCoordinator" (key 10).
type GroupCoordinatorRequest struct {
	version int16
	GroupID string
}

func (r *GroupCoordinatorRequest) Key() int16         { return KeyGroupCoordinator }
func (r *GroupCoordinatorRequest) Version() int16     { return r.version }
func (r *GroupCoordinatorRequest) SetVersion(v int16) { r.version = v }
func (r *GroupCoordinatorRequest) NewResponse() Response {
	return &GroupCoordinatorResponse{version: r.version}
}
func (r *GroupCoordinatorRequest) AppendBody(w *kbin.Writer) { w.String(r.GroupID) }

// GroupCoordinatorResponse names the broker coordinating a group.
type GroupCoordinatorResponse struct {
	version int16

	ErrorCode       int16
	CoordinatorID   int32
	CoordinatorHost string
	CoordinatorPort int32
}

func (r *GroupCoordinatorResponse) Key() int16         { return KeyGroupCoordinator }
func (r *GroupCoordinatorResponse) Version() int16     { return r.version }
func (r *GroupCoordinatorResponse) SetVersion(v int16) { r.version = v }
func (r *GroupCoordinatorResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	r.CoordinatorID = reader.Int32()
	r.CoordinatorHost = reader.String()
	r.CoordinatorPort = reader.Int32()
	return reader.Err()
}

// GroupProtocol is one (name, opaque metadata) entry a member offers in
// JoinGroup. Metadata is an opaque byte slab produced by a ProtocolEncoder
// (spec §4.2); this codec never looks inside it.
type GroupProtocol struct {
	Name     string
	Metadata []byte
}

// JoinGroupRequest is "JoinGroup" (key 11).
type JoinGroupRequest struct {
	version int16

	GroupID        string
	SessionTimeout int32
	MemberID       string
	ProtocolType   string
	Protocols      []GroupProtocol
}

func (r *JoinGroupRequest) Key() int16         { return KeyJoinGroup }
func (r *JoinGroupRequest) Version() int16     { return r.version }
func (r *JoinGroupRequest) SetVersion(v int16) { r.version = v }
func (r *JoinGroupRequest) NewResponse() Response {
	return &JoinGroupResponse{version: r.version}
}
func (r *JoinGroupRequest) AppendBody(w *kbin.Writer) {
	w.String(r.GroupID)
	w.Int32(r.SessionTimeout)
	w.String(r.MemberID)
	w.String(r.ProtocolType)
	w.ArrayLen(len(r.Protocols))
	for _, p := range r.Protocols {
		w.String(p.Name)
		w.NullableBytes(p.Metadata)
	}
}

// JoinGroupMember is one group member as seen by the elected leader.
type JoinGroupMember struct {
	MemberID string
	Metadata []byte
}

// JoinGroupResponse is the decoded reply to a JoinGroupRequest. Members is
// only populated for the member elected group leader.
type JoinGroupResponse struct {
	version int16

	ErrorCode    int16
	GenerationID int32
	GroupProtocol string
	LeaderID     string
	MemberID     string
	Members      []JoinGroupMember
}

func (r *JoinGroupResponse) Key() int16         { return KeyJoinGroup }
func (r *JoinGroupResponse) Version() int16     { return r.version }
func (r *JoinGroupResponse) SetVersion(v int16) { r.version = v }
func (r *JoinGroupResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	r.GenerationID = reader.Int32()
	r.GroupProtocol = reader.String()
	r.LeaderID = reader.String()
	r.MemberID = reader.String()
	n := reader.ArrayLen()
	r.Members = make([]JoinGroupMember, 0, n)
	for i := int32(0); i < n; i++ {
		var m JoinGroupMember
		m.MemberID = reader.String()
		m.Metadata = reader.NullableBytes()
		r.Members = append(r.Members, m)
	}
	return reader.Err()
}

// GroupAssignment is one member's opaque assignment payload, set by the
// group leader in SyncGroupRequest.
type GroupAssignment struct {
	MemberID   string
	Assignment []byte
}

// SyncGroupRequest is "SyncGroup" (key 14). Assignments is only populated
// by the member that was elected leader in JoinGroup.
type SyncGroupRequest struct {
	version int16

	GroupID      string
	GenerationID int32
	MemberID     string
	Assignments  []GroupAssignment
}

func (r *SyncGroupRequest) Key() int16         { return KeySyncGroup }
func (r *SyncGroupRequest) Version() int16     { return r.version }
func (r *SyncGroupRequest) SetVersion(v int16) { r.version = v }
func (r *SyncGroupRequest) NewResponse() Response {
	return &SyncGroupResponse{version: r.version}
}
func (r *SyncGroupRequest) AppendBody(w *kbin.Writer) {
	w.String(r.GroupID)
	w.Int32(r.GenerationID)
	w.String(r.MemberID)
	w.ArrayLen(len(r.Assignments))
	for _, a := range r.Assignments {
		w.String(a.MemberID)
		w.NullableBytes(a.Assignment)
	}
}

// SyncGroupResponse carries this member's own opaque assignment.
type SyncGroupResponse struct {
	version int16

	ErrorCode  int16
	Assignment []byte
}

func (r *SyncGroupResponse) Key() int16         { return KeySyncGroup }
func (r *SyncGroupResponse) Version() int16     { return r.version }
func (r *SyncGroupResponse) SetVersion(v int16) { r.version = v }
func (r *SyncGroupResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	r.Assignment = reader.NullableBytes()
	return reader.Err()
}

// HeartbeatRequest is "Heartbeat" (key 12).
type HeartbeatRequest struct {
	version int16

	GroupID      string
	GenerationID int32
	MemberID     string
}

func (r *HeartbeatRequest) Key() int16         { return KeyHeartbeat }
func (r *HeartbeatRequest) Version() int16     { return r.version }
func (r *HeartbeatRequest) SetVersion(v int16) { r.version = v }
func (r *HeartbeatRequest) NewResponse() Response {
	return &HeartbeatResponse{version: r.version}
}
func (r *HeartbeatRequest) AppendBody(w *kbin.Writer) {
	w.String(r.GroupID)
	w.Int32(r.GenerationID)
	w.String(r.MemberID)
}

// HeartbeatResponse is the decoded reply to a HeartbeatRequest.
type HeartbeatResponse struct {
	version   int16
	ErrorCode int16
}

func (r *HeartbeatResponse) Key() int16         { return KeyHeartbeat }
func (r *HeartbeatResponse) Version() int16     { return r.version }
func (r *HeartbeatResponse) SetVersion(v int16) { r.version = v }
func (r *HeartbeatResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	return reader.Err()
}

// LeaveGroupRequest is "LeaveGroup" (key 13).
type LeaveGroupRequest struct {
	version int16

	GroupID  string
	MemberID string
}

func (r *LeaveGroupRequest) Key() int16         { return KeyLeaveGroup }
func (r *LeaveGroupRequest) Version() int16     { return r.version }
func (r *LeaveGroupRequest) SetVersion(v int16) { r.version = v }
func (r *LeaveGroupRequest) NewResponse() Response {
	return &LeaveGroupResponse{version: r.version}
}
func (r *LeaveGroupRequest) AppendBody(w *kbin.Writer) {
	w.String(r.GroupID)
	w.String(r.MemberID)
}

// LeaveGroupResponse is the decoded reply to a LeaveGroupRequest.
type LeaveGroupResponse struct {
	version   int16
	ErrorCode int16
}

func (r *LeaveGroupResponse) Key() int16         { return KeyLeaveGroup }
func (r *LeaveGroupResponse) Version() int16     { return r.version }
func (r *LeaveGroupResponse) SetVersion(v int16) { r.version = v }
func (r *LeaveGroupResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	return reader.Err()
}

// DescribeGroupsRequest is "DescribeGroups" (key 15).
type DescribeGroupsRequest struct {
	version int16
	Groups  []string
}

func (r *DescribeGroupsRequest) Key() int16         { return KeyDescribeGroups }
func (r *DescribeGroupsRequest) Version() int16     { return r.version }
func (r *DescribeGroupsRequest) SetVersion(v int16) { r.version = v }
func (r *DescribeGroupsRequest) NewResponse() Response {
	return &DescribeGroupsResponse{version: r.version}
}
func (r *DescribeGroupsRequest) AppendBody(w *kbin.Writer) {
	w.ArrayLen(len(r.Groups))
	for _, g := range r.Groups {
		w.String(g)
	}
}

// DescribeGroupsMember is one member of a described group.
type DescribeGroupsMember struct {
	MemberID   string
	ClientID   string
	ClientHost string
	Metadata   []byte
	Assignment []byte
}

// DescribeGroupsGroup is one described group.
type DescribeGroupsGroup struct {
	ErrorCode    int16
	GroupID      string
	State        string
	ProtocolType string
	Protocol     string
	Members      []DescribeGroupsMember
}

// DescribeGroupsResponse is the decoded reply to a DescribeGroupsRequest.
type DescribeGroupsResponse struct {
	version int16
	Groups  []DescribeGroupsGroup
}

func (r *DescribeGroupsResponse) Key() int16         { return KeyDescribeGroups }
func (r *DescribeGroupsResponse) Version() int16     { return r.version }
func (r *DescribeGroupsResponse) SetVersion(v int16) { r.version = v }
func (r *DescribeGroupsResponse) ReadBody(reader *kbin.Reader) error {
	n := reader.ArrayLen()
	r.Groups = make([]DescribeGroupsGroup, 0, n)
	for i := int32(0); i < n; i++ {
		var g DescribeGroupsGroup
		g.ErrorCode = reader.Int16()
		g.GroupID = reader.String()
		g.State = reader.String()
		g.ProtocolType = reader.String()
		g.Protocol = reader.String()
		mn := reader.ArrayLen()
		g.Members = make([]DescribeGroupsMember, 0, mn)
		for j := int32(0); j < mn; j++ {
			var m DescribeGroupsMember
			m.MemberID = reader.String()
			m.ClientID = reader.String()
			m.ClientHost = reader.String()
			m.Metadata = reader.NullableBytes()
			m.Assignment = reader.NullableBytes()
			g.Members = append(g.Members, m)
		}
		r.Groups = append(r.Groups, g)
	}
	return reader.Err()
}

// ListGroupsRequest is "ListGroups" (key 16); it carries no body.
type ListGroupsRequest struct{ version int16 }

func (r *ListGroupsRequest) Key() int16           { return KeyListGroups }
func (r *ListGroupsRequest) Version() int16       { return r.version }
func (r *ListGroupsRequest) SetVersion(v int16)   { r.version = v }
func (r *ListGroupsRequest) AppendBody(*kbin.Writer) {}
func (r *ListGroupsRequest) NewResponse() Response {
	return &ListGroupsResponse{version: r.version}
}

// ListGroupsGroup is one group summary.
type ListGroupsGroup struct {
	GroupID      string
	ProtocolType string
}

// ListGroupsResponse is the decoded reply to a ListGroupsRequest.
type ListGroupsResponse struct {
	version int16

	ErrorCode int16
	Groups    []ListGroupsGroup
}

func (r *ListGroupsResponse) Key() int16         { return KeyListGroups }
func (r *ListGroupsResponse) Version() int16     { return r.version }
func (r *ListGroupsResponse) SetVersion(v int16) { r.version = v }
func (r *ListGroupsResponse) ReadBody(reader *kbin.Reader) error {
	r.ErrorCode = reader.Int16()
	n := reader.ArrayLen()
	r.Groups = make([]ListGroupsGroup, 0, n)
	for i := int32(0); i < n; i++ {
		var g ListGroupsGroup
		g.GroupID = reader.String()
		g.ProtocolType = reader.String()
		r.Groups = append(r.Groups, g)
	}
	return reader.Err()
}
